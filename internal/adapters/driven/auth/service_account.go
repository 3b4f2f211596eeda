// Package auth provides credential sources that mint tokens without user
// interaction, currently Google service accounts with optional domain-wide
// delegation.
package auth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driven"
	"github.com/PabloAlaniz/google-suite/internal/logger"
)

// Ensure ServiceAccountSource implements the source interface.
var _ driven.CredentialSource = (*ServiceAccountSource)(nil)

// ServiceAccountSource mints access tokens from a service account key file.
// With a subject set, the service account impersonates that user via
// domain-wide delegation; tokens carry no refresh token and are re-minted
// from the key material instead.
type ServiceAccountSource struct {
	keyJSON []byte
	email   string
	subject string
}

// NewServiceAccountSource loads the key file and validates it is a service
// account key. subject may be empty.
func NewServiceAccountSource(keyFile, subject string) (*ServiceAccountSource, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.CredentialsNotFoundError{Path: keyFile, Err: err}
		}
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	// Parse once up front so a malformed key fails at construction, not at
	// first token mint. Scopes are bound per Obtain call.
	cfg, err := google.JWTConfigFromJSON(data)
	if err != nil {
		return nil, &domain.CredentialsNotFoundError{Path: keyFile, Err: err}
	}

	return &ServiceAccountSource{
		keyJSON: data,
		email:   cfg.Email,
		subject: subject,
	}, nil
}

// Obtain mints an access token for the given scopes.
func (s *ServiceAccountSource) Obtain(ctx context.Context, scopes []string) (*domain.Credential, error) {
	cfg, err := google.JWTConfigFromJSON(s.keyJSON, scopes...)
	if err != nil {
		return nil, &domain.AuthenticationError{
			AccountKey: s.AccountKey(),
			Reason:     "parse service account key",
			Err:        err,
		}
	}
	cfg.Subject = s.subject

	tok, err := cfg.TokenSource(ctx).Token()
	if err != nil {
		return nil, &domain.AuthenticationError{
			AccountKey: s.AccountKey(),
			Reason:     "mint service account token",
			Err:        err,
		}
	}

	logger.Debug("minted service account token for %s (expiry %s)", s.AccountKey(), tok.Expiry)

	return &domain.Credential{
		AccountKey:  s.AccountKey(),
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      tok.Expiry,
		Scopes:      append([]string(nil), scopes...),
	}, nil
}

// AccountKey is the impersonated subject if set, otherwise the service
// account's own email.
func (s *ServiceAccountSource) AccountKey() string {
	if s.subject != "" {
		return s.subject
	}
	return s.email
}

// Interactive reports false: minting never needs a browser.
func (s *ServiceAccountSource) Interactive() bool {
	return false
}
