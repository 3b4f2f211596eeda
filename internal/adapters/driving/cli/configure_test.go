package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/config/file"
)

func TestConfigure_WritesConfig(t *testing.T) {
	tmpDir := t.TempDir()

	// Answers: credentials file, account, backend, callback port.
	input := strings.Join([]string{
		filepath.Join(tmpDir, "credentials.json"),
		"user@example.com",
		"sqlite",
		"8765",
	}, "\n") + "\n"

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs([]string{"--config-dir", tmpDir, "configure"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Configuration saved")

	settings, err := file.Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "credentials.json"), settings.CredentialsFile)
	assert.Equal(t, "user@example.com", settings.AccountKey)
	assert.Equal(t, file.BackendSQLite, settings.TokenBackend)
	assert.Equal(t, 8765, settings.CallbackPort)
}

func TestConfigure_InlineClient(t *testing.T) {
	tmpDir := t.TempDir()

	// Empty credentials file answer switches to client ID/secret prompts.
	input := strings.Join([]string{
		"",
		"client-id.apps.googleusercontent.com",
		"shh-secret",
		"user@example.com",
		"",
		"",
	}, "\n") + "\n"

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs([]string{"--config-dir", tmpDir, "configure"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	settings, err := file.Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "client-id.apps.googleusercontent.com", settings.ClientID)
	assert.Equal(t, "shh-secret", settings.ClientSecret)
	assert.Equal(t, file.BackendSQLite, settings.TokenBackend, "empty backend answer defaults to sqlite")
}
