package driving

import (
	"context"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

// AuthService is the authentication capability exposed to callers.
type AuthService interface {
	// Authenticate ensures a valid credential exists, loading from the
	// store, refreshing, or driving the credential source as needed.
	Authenticate(ctx context.Context) (*domain.Credential, error)

	// Credentials returns the current credential, transparently
	// refreshing and persisting first if it is expired.
	Credentials(ctx context.Context) (*domain.Credential, error)

	// Refresh forces a refresh regardless of expiry, persisting the
	// updated record before returning.
	Refresh(ctx context.Context) error

	// IsAuthenticated returns true if a loaded record is valid or
	// refreshable.
	IsAuthenticated(ctx context.Context) bool

	// State returns the current lifecycle state.
	State() domain.AuthState

	// Logout deletes the stored record and clears the in-memory copy.
	Logout(ctx context.Context) error
}
