package driven

import (
	"context"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

// CredentialSource acquires a brand-new credential for an account.
// There are two implementations: the interactive consent flow (browser
// authorization-code exchange) and the service-account key loader. Modelling
// both behind one interface keeps the auth service free of per-flow branching.
type CredentialSource interface {
	// Obtain acquires a credential granting the requested scopes.
	// Interactive sources block on user consent; non-interactive sources
	// mint a token from local key material.
	Obtain(ctx context.Context, scopes []string) (*domain.Credential, error)

	// AccountKey returns the identity this source authenticates.
	AccountKey() string

	// Interactive reports whether Obtain requires user interaction.
	// Non-interactive sources can be re-invoked to replace an expired
	// credential that has no refresh token.
	Interactive() bool
}
