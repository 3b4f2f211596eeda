package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently; the Google API
// connectors consume this as their single auth capability.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing first if the
	// current one is expired.
	GetToken(ctx context.Context) (string, error)

	// AccountKey returns the account the token belongs to.
	AccountKey() string

	// IsAuthenticated returns true if a valid credential is available
	// or can be obtained without user interaction.
	IsAuthenticated(ctx context.Context) bool
}
