package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/PabloAlaniz/google-suite/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/PabloAlaniz/google-suite/internal/core/domain"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driven"
)

// Ensure Store implements the token store interface.
var _ driven.TokenStore = (*Store)(nil)

// Store is a SQLite-backed TokenStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the token database at dbPath.
// If dbPath is empty, defaults to ~/.gsuite/tokens.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".gsuite", "tokens.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load retrieves the credential record for an account key.
// Returns (nil, nil) when no record exists.
func (s *Store) Load(ctx context.Context, accountKey string) (*domain.Credential, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT token_data FROM tokens WHERE account_key = ?", accountKey)

	var tokenJSON string
	if err := row.Scan(&tokenJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(accountKey, "load", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal([]byte(tokenJSON), &cred); err != nil {
		return nil, storageErr(accountKey, "load", fmt.Errorf("unmarshalling record: %w", err))
	}
	if cred.AccountKey == "" {
		cred.AccountKey = accountKey
	}
	return &cred, nil
}

// Save upserts the credential record keyed by its account key.
func (s *Store) Save(ctx context.Context, cred domain.Credential) error {
	if cred.AccountKey == "" {
		return fmt.Errorf("credential has no account key: %w", domain.ErrInvalidInput)
	}
	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = time.Now().UTC()
	}

	tokenJSON, err := json.Marshal(cred)
	if err != nil {
		return storageErr(cred.AccountKey, "save", fmt.Errorf("marshalling record: %w", err))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tokens (account_key, token_data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(account_key) DO UPDATE SET
			token_data = excluded.token_data,
			updated_at = excluded.updated_at
	`, cred.AccountKey, string(tokenJSON), cred.UpdatedAt)

	if err != nil {
		return storageErr(cred.AccountKey, "save", err)
	}
	return nil
}

// Delete removes the record for an account key. Deleting a missing record
// is not an error.
func (s *Store) Delete(ctx context.Context, accountKey string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM tokens WHERE account_key = ?", accountKey); err != nil {
		return storageErr(accountKey, "delete", err)
	}
	return nil
}

func storageErr(accountKey, op string, err error) error {
	return &domain.StorageError{Backend: "sqlite", AccountKey: accountKey, Op: op, Err: err}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_tokens.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
