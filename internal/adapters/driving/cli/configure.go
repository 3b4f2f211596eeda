package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/config/file"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive setup wizard",
	Long: `Walk through the gsuite configuration step by step and write the
result to config.toml in the config directory.

You need either a Google credentials JSON file (OAuth client or service
account key) or an OAuth client ID and secret.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	settings := &file.Settings{}

	credFile, err := promptLine(cmd, reader, "Credentials JSON file (empty to use a client ID/secret): ")
	if err != nil {
		return err
	}
	settings.CredentialsFile = credFile

	if credFile == "" {
		clientID, err := promptLine(cmd, reader, "OAuth client ID: ")
		if err != nil {
			return err
		}
		settings.ClientID = clientID

		clientSecret, err := promptSecret(reader, "OAuth client secret: ")
		if err != nil {
			return err
		}
		settings.ClientSecret = clientSecret
	}

	account, err := promptLine(cmd, reader, "Account email (empty for default): ")
	if err != nil {
		return err
	}
	settings.AccountKey = account

	backend, err := promptLine(cmd, reader, "Token backend [sqlite/secretmanager] (default sqlite): ")
	if err != nil {
		return err
	}
	if backend == "" {
		backend = file.BackendSQLite
	}
	settings.TokenBackend = backend

	if backend == file.BackendSecretManager {
		project, err := promptLine(cmd, reader, "GCP project ID: ")
		if err != nil {
			return err
		}
		settings.ProjectID = project
	}

	port, err := promptLine(cmd, reader, "Callback port (empty for automatic): ")
	if err != nil {
		return err
	}
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", port, err)
		}
		settings.CallbackPort = p
	}

	if err := settings.Save(configDir); err != nil {
		return err
	}

	cmd.Println("Configuration saved. Run 'gsuite auth login' to authenticate.")
	return nil
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	cmd.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal, so the client
// secret does not land in scrollback.
func promptSecret(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
