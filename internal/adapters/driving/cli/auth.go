package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	oauth2google "golang.org/x/oauth2/google"

	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/auth"
	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/config/file"
	oauthclient "github.com/PabloAlaniz/google-suite/internal/adapters/driven/oauth"
	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/storage/memory"
	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/storage/secretmanager"
	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/storage/sqlite"
	oauthflow "github.com/PabloAlaniz/google-suite/internal/adapters/driving/oauth"
	"github.com/PabloAlaniz/google-suite/internal/connectors/google"
	"github.com/PabloAlaniz/google-suite/internal/core/domain"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driven"
	"github.com/PabloAlaniz/google-suite/internal/core/services"
	"github.com/PabloAlaniz/google-suite/internal/logger"
)

// defaultAccountKey names the stored record when no account is configured
// for the interactive flow.
const defaultAccountKey = "default"

// resolveEmail asks Google who the access token belongs to, so interactive
// logins without a configured account still report the real identity.
// Package-level for test substitution.
var resolveEmail = func(ctx context.Context, accessToken string) (string, error) {
	info, err := google.GetUserInfo(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return info.Email, nil
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google Workspace authentication",
	Long: `Authenticate against Google, inspect token status, force a refresh,
or revoke the stored credential.

Examples:
  # Run the browser consent flow and store the token
  gsuite auth login

  # Check whether the stored token is still usable
  gsuite auth status

  # Force a refresh before a burst of API calls
  gsuite auth refresh

  # Delete the stored token
  gsuite auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the credential",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential's state",
	RunE:  runAuthStatus,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a token refresh",
	RunE:  runAuthRefresh,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the stored credential",
	RunE:  runAuthLogout,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

// buildAuthService assembles the auth service from settings: token store
// backend, credential source, and refresher. The returned closer releases
// the store.
func buildAuthService(ctx context.Context) (*services.AuthService, io.Closer, error) {
	settings, err := file.Load(configDir)
	if err != nil {
		return nil, nil, err
	}

	store, closer, err := buildStore(ctx, settings)
	if err != nil {
		return nil, nil, err
	}

	source, refresher, err := buildSource(settings)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}

	svc, err := services.NewAuthService(services.AuthConfig{
		Store:      store,
		Source:     source,
		Refresher:  refresher,
		AccountKey: settings.AccountKey,
		Scopes:     settings.Scopes,
	})
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	return svc, closer, nil
}

func buildStore(ctx context.Context, settings *file.Settings) (driven.TokenStore, io.Closer, error) {
	switch settings.TokenBackend {
	case file.BackendSQLite:
		store, err := sqlite.NewStore(settings.TokenDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case file.BackendSecretManager:
		store, err := secretmanager.NewStore(ctx, settings.ProjectID, settings.SecretPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case file.BackendMemory:
		return memory.NewTokenStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown token backend %q: %w", settings.TokenBackend, domain.ErrInvalidInput)
	}
}

func buildSource(settings *file.Settings) (driven.CredentialSource, driven.TokenRefresher, error) {
	accountKey := settings.AccountKey
	if accountKey == "" {
		accountKey = defaultAccountKey
	}

	switch {
	case settings.CredentialsFile != "":
		if isServiceAccountKey(settings.CredentialsFile) {
			// Service accounts re-mint from key material; no refresher.
			src, err := auth.NewServiceAccountSource(settings.CredentialsFile, settings.Subject)
			return src, nil, err
		}

		src, err := oauthflow.NewConsentSource(settings.CredentialsFile, accountKey,
			oauthflow.WithPort(settings.CallbackPort))
		if err != nil {
			return nil, nil, err
		}
		refresher, err := refresherFromFile(settings.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return src, refresher, nil

	case settings.ClientID != "":
		src := oauthflow.NewConsentSourceFromClient(settings.ClientID, settings.ClientSecret, accountKey,
			oauthflow.WithPort(settings.CallbackPort))
		return src, oauthclient.NewClient(settings.ClientID, settings.ClientSecret), nil

	default:
		return nil, nil, fmt.Errorf("no credentials configured, run 'gsuite configure' first: %w", domain.ErrCredentialsNotFound)
	}
}

// isServiceAccountKey sniffs the JSON key type without fully parsing it.
func isServiceAccountKey(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var key struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return false
	}
	return key.Type == "service_account"
}

func refresherFromFile(path string) (driven.TokenRefresher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := oauth2google.ConfigFromJSON(data)
	if err != nil {
		return nil, &domain.CredentialsNotFoundError{Path: path, Err: err}
	}
	return oauthclient.NewClient(cfg.ClientID, cfg.ClientSecret,
		oauthclient.WithTokenURL(cfg.Endpoint.TokenURL)), nil
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	svc, closer, err := buildAuthService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	cred, err := svc.Authenticate(cmd.Context())
	if err != nil {
		return err
	}

	account := cred.AccountKey
	if svc.AccountKey() == defaultAccountKey {
		if email, err := resolveEmail(cmd.Context(), cred.AccessToken); err == nil {
			account = email
		} else {
			logger.Warn("could not resolve account email: %v", err)
		}
	}

	cmd.Printf("Authenticated as %s\n", account)
	cmd.Printf("Scopes:  %d granted\n", len(cred.Scopes))
	if !cred.Expiry.IsZero() {
		cmd.Printf("Expires: %s\n", cred.Expiry.Local().Format(time.RFC1123))
	}
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	svc, closer, err := buildAuthService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	cmd.Printf("Account: %s\n", svc.AccountKey())

	if !svc.IsAuthenticated(cmd.Context()) {
		cmd.Println("Status:  not authenticated, run 'gsuite auth login'")
		return nil
	}

	cred, err := svc.Credentials(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println("Status:  authenticated")
	if svc.AccountKey() == defaultAccountKey {
		if email, err := resolveEmail(cmd.Context(), cred.AccessToken); err == nil {
			cmd.Printf("Email:   %s\n", email)
		}
	}
	if !cred.Expiry.IsZero() {
		cmd.Printf("Expires: %s (in %s)\n",
			cred.Expiry.Local().Format(time.RFC1123),
			time.Until(cred.Expiry).Round(time.Second))
	}
	if cred.HasRefreshToken() {
		cmd.Println("Refresh: refresh token present")
	}
	for _, scope := range cred.Scopes {
		cmd.Printf("Scope:   %s\n", scope)
	}
	return nil
}

func runAuthRefresh(cmd *cobra.Command, _ []string) error {
	svc, closer, err := buildAuthService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	if err := svc.Refresh(cmd.Context()); err != nil {
		return err
	}

	cred, err := svc.Credentials(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Token refreshed, new expiry %s\n", cred.Expiry.Local().Format(time.RFC1123))
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	svc, closer, err := buildAuthService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeQuietly(closer)

	if err := svc.Logout(cmd.Context()); err != nil {
		return err
	}
	cmd.Printf("Logged out %s\n", svc.AccountKey())
	return nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
