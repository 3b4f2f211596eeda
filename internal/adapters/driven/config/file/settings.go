package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

// envPrefix namespaces all environment overrides.
const envPrefix = "GSUITE_"

// Backend selectors for the token store.
const (
	BackendSQLite        = "sqlite"
	BackendSecretManager = "secretmanager"
	BackendMemory        = "memory"
)

// Settings is the full configuration surface of the gsuite CLI.
// Zero values mean "use the default"; Load fills defaults in after
// merging the TOML file and the environment.
type Settings struct {
	// CredentialsFile points at the Google OAuth client JSON (installed
	// app) or a service account key file.
	CredentialsFile string `toml:"credentials_file"`

	// ClientID and ClientSecret configure the OAuth client inline as an
	// alternative to CredentialsFile.
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// AccountKey identifies the stored token record, normally the
	// account's email address.
	AccountKey string `toml:"account_key"`

	// Subject is the user to impersonate when using a service account
	// with domain-wide delegation. Empty means no impersonation.
	Subject string `toml:"subject"`

	// Scopes requested at consent time. Empty means the gmail+calendar
	// default bundle.
	Scopes []string `toml:"scopes"`

	// TokenBackend selects where tokens are persisted:
	// sqlite (default), secretmanager, or memory.
	TokenBackend string `toml:"token_backend"`

	// TokenDBPath is the SQLite database file for the sqlite backend.
	TokenDBPath string `toml:"token_db_path"`

	// ProjectID is the GCP project for the secretmanager backend.
	ProjectID string `toml:"project_id"`

	// SecretPrefix namespaces secrets created by the secretmanager
	// backend within the project.
	SecretPrefix string `toml:"secret_prefix"`

	// CallbackPort fixes the loopback port for the consent flow.
	// 0 picks a free port.
	CallbackPort int `toml:"callback_port"`
}

// DefaultConfigDir returns ~/.gsuite, creating it if needed.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(home, ".gsuite")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads settings from configDir/config.toml (if present), applies
// environment overrides, and fills defaults. If configDir is empty the
// default config directory is used.
func Load(configDir string) (*Settings, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	s := &Settings{}

	path := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file yet - environment and defaults only.
	default:
		return nil, err
	}

	s.applyEnv()
	s.applyDefaults(configDir)

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings to configDir/config.toml with restricted
// permissions.
func (s *Settings) Save(configDir string) error {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, "config.toml"), data, 0600)
}

// applyEnv overlays GSUITE_* environment variables onto the settings.
func (s *Settings) applyEnv() {
	if v := os.Getenv(envPrefix + "CREDENTIALS_FILE"); v != "" {
		s.CredentialsFile = v
	}
	if v := os.Getenv(envPrefix + "CLIENT_ID"); v != "" {
		s.ClientID = v
	}
	if v := os.Getenv(envPrefix + "CLIENT_SECRET"); v != "" {
		s.ClientSecret = v
	}
	if v := os.Getenv(envPrefix + "ACCOUNT"); v != "" {
		s.AccountKey = v
	}
	if v := os.Getenv(envPrefix + "SUBJECT"); v != "" {
		s.Subject = v
	}
	if v := os.Getenv(envPrefix + "SCOPES"); v != "" {
		s.Scopes = splitList(v)
	}
	if v := os.Getenv(envPrefix + "TOKEN_BACKEND"); v != "" {
		s.TokenBackend = v
	}
	if v := os.Getenv(envPrefix + "TOKEN_DB_PATH"); v != "" {
		s.TokenDBPath = v
	}
	if v := os.Getenv(envPrefix + "PROJECT_ID"); v != "" {
		s.ProjectID = v
	}
	if v := os.Getenv(envPrefix + "SECRET_PREFIX"); v != "" {
		s.SecretPrefix = v
	}
}

// applyDefaults fills unset fields after file and environment merging.
func (s *Settings) applyDefaults(configDir string) {
	if s.TokenBackend == "" {
		s.TokenBackend = BackendSQLite
	}
	if s.TokenDBPath == "" {
		s.TokenDBPath = filepath.Join(configDir, "tokens.db")
	}
	if s.SecretPrefix == "" {
		s.SecretPrefix = "gsuite-token"
	}
	if len(s.Scopes) == 0 {
		s.Scopes = domain.DefaultScopes()
	}
}

func (s *Settings) validate() error {
	switch s.TokenBackend {
	case BackendSQLite, BackendSecretManager, BackendMemory:
	default:
		return fmt.Errorf("unknown token backend %q: %w", s.TokenBackend, domain.ErrInvalidInput)
	}
	if s.TokenBackend == BackendSecretManager && s.ProjectID == "" {
		return fmt.Errorf("secretmanager backend requires a project id: %w", domain.ErrInvalidInput)
	}
	return nil
}

// splitList parses a comma- or space-separated environment value.
func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
