package domain

import "time"

// TokenTypeBearer is the only token type Google issues for these flows.
const TokenTypeBearer = "Bearer"

// Credential is the stored OAuth credential record for one account.
// The in-memory copy is owned by the auth service for the process lifetime;
// the TokenStore owns the durable copy and is the source of truth across
// restarts.
type Credential struct {
	// AccountKey identifies the authenticated identity. For interactive
	// flows this is the user's email; for service accounts it is the
	// client email or the impersonated subject.
	AccountKey string `json:"account_key"`

	// AccessToken is the short-lived bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken obtains new access tokens without user interaction.
	// Absent for service-account credentials.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`

	// Scopes are the permissions granted at consent time. A consumer
	// requesting a scope outside this set requires re-consent.
	Scopes []string `json:"scopes"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsExpired returns true if the access token has passed its literal expiry.
func (c *Credential) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// ExpiresWithin returns true if the access token expires inside the given
// margin. Callers treat tokens as expired slightly early so a token does not
// lapse mid-request at the downstream API.
func (c *Credential) ExpiresWithin(margin time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Until(c.Expiry) < margin
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// HasScopes returns true if every requested scope was granted.
func (c *Credential) HasScopes(requested []string) bool {
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// AuthState describes where a credential is in its lifecycle.
type AuthState string

const (
	// StateUnauthenticated means no credential record is loaded.
	StateUnauthenticated AuthState = "unauthenticated"
	// StateAuthenticating means a consent flow is in progress.
	StateAuthenticating AuthState = "authenticating"
	// StateAuthenticated means a valid record is loaded.
	StateAuthenticated AuthState = "authenticated"
	// StateExpired means the record's access token has lapsed and a
	// refresh is pending or has failed.
	StateExpired AuthState = "expired"
)
