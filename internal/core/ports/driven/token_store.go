package driven

import (
	"context"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

// TokenStore persists credential records keyed by account key.
// The store owns the durable copy of a credential; the auth service owns the
// in-memory copy during a process lifetime. Implementations must make Save
// atomic from the caller's perspective: a concurrent Load never observes a
// partially written record.
type TokenStore interface {
	// Load retrieves the record for an account key.
	// Returns (nil, nil) when no record exists; a *domain.StorageError
	// on backend I/O failure.
	Load(ctx context.Context, accountKey string) (*domain.Credential, error)

	// Save stores a record, overwriting any existing one atomically.
	// The account key is taken from the record.
	Save(ctx context.Context, cred domain.Credential) error

	// Delete removes the record for an account key. Deleting a
	// non-existent key is not an error.
	Delete(ctx context.Context, accountKey string) error
}
