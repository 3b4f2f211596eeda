package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, s.TokenBackend)
	assert.Equal(t, filepath.Join(tmpDir, "tokens.db"), s.TokenDBPath)
	assert.Equal(t, "gsuite-token", s.SecretPrefix)
	assert.Equal(t, domain.DefaultScopes(), s.Scopes)
}

func TestLoad_FromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
credentials_file = "/etc/gsuite/client.json"
account_key = "user@example.com"
token_backend = "secretmanager"
project_id = "my-project"
scopes = ["https://www.googleapis.com/auth/drive"]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	s, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/etc/gsuite/client.json", s.CredentialsFile)
	assert.Equal(t, "user@example.com", s.AccountKey)
	assert.Equal(t, BackendSecretManager, s.TokenBackend)
	assert.Equal(t, "my-project", s.ProjectID)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/drive"}, s.Scopes)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
account_key = "file@example.com"
token_backend = "sqlite"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	t.Setenv("GSUITE_ACCOUNT", "env@example.com")
	t.Setenv("GSUITE_TOKEN_BACKEND", "memory")
	t.Setenv("GSUITE_SCOPES", "scope-a,scope-b")

	s, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "env@example.com", s.AccountKey)
	assert.Equal(t, BackendMemory, s.TokenBackend)
	assert.Equal(t, []string{"scope-a", "scope-b"}, s.Scopes)
}

func TestLoad_UnknownBackend(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("GSUITE_TOKEN_BACKEND", "redis")

	_, err := Load(tmpDir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_SecretManagerRequiresProject(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("GSUITE_TOKEN_BACKEND", "secretmanager")

	_, err := Load(tmpDir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_MalformedTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("account_key = ["), 0600))

	_, err := Load(tmpDir)
	assert.Error(t, err)
}

func TestSettings_SaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	in := &Settings{
		CredentialsFile: "/tmp/creds.json",
		AccountKey:      "user@example.com",
		TokenBackend:    BackendSQLite,
	}
	require.NoError(t, in.Save(tmpDir))

	info, err := os.Stat(filepath.Join(tmpDir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, in.CredentialsFile, out.CredentialsFile)
	assert.Equal(t, in.AccountKey, out.AccountKey)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"a, b", []string{"a", "b"}},
		{"a b", []string{"a", "b"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitList(tt.in))
	}
}
