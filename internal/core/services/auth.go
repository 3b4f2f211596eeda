package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driven"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driving"
	"github.com/PabloAlaniz/google-suite/internal/logger"
)

// defaultRefreshMargin is how long before literal expiry a token is treated
// as expired, so it cannot lapse mid-request at the downstream API.
const defaultRefreshMargin = 30 * time.Second

// Ensure AuthService implements both the driving port and the connector-facing
// token provider.
var (
	_ driving.AuthService  = (*AuthService)(nil)
	_ driven.TokenProvider = (*AuthService)(nil)
)

// AuthConfig carries the collaborators and policy for an AuthService.
// All configuration is explicit; there are no package-level defaults.
type AuthConfig struct {
	// Store persists credential records. Required.
	Store driven.TokenStore
	// Source acquires new credentials (consent flow or service account).
	// Required.
	Source driven.CredentialSource
	// Refresher exchanges refresh tokens at the token endpoint. May be
	// nil for non-interactive sources, which re-mint instead.
	Refresher driven.TokenRefresher
	// AccountKey identifies the record in the store. Defaults to the
	// source's account key.
	AccountKey string
	// Scopes to request at consent time. Defaults to domain.DefaultScopes.
	Scopes []string
	// RefreshMargin is the early-expiry safety margin. Defaults to 30s.
	RefreshMargin time.Duration
}

// AuthService manages the credential lifecycle for one account: acquisition,
// lazy refresh, and write-through persistence to a TokenStore.
//
// A single mutex serializes access to the in-memory record. Durable
// consistency across processes comes from the store's own save atomicity,
// not from this lock.
type AuthService struct {
	store     driven.TokenStore
	source    driven.CredentialSource
	refresher driven.TokenRefresher

	accountKey    string
	scopes        []string
	refreshMargin time.Duration

	mu    sync.Mutex
	cred  *domain.Credential
	state domain.AuthState
}

// NewAuthService creates an auth service from explicit configuration.
func NewAuthService(cfg AuthConfig) (*AuthService, error) {
	if cfg.Store == nil || cfg.Source == nil {
		return nil, fmt.Errorf("auth service requires a token store and a credential source: %w", domain.ErrInvalidInput)
	}

	accountKey := cfg.AccountKey
	if accountKey == "" {
		accountKey = cfg.Source.AccountKey()
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = domain.DefaultScopes()
	}

	margin := cfg.RefreshMargin
	if margin <= 0 {
		margin = defaultRefreshMargin
	}

	return &AuthService{
		store:         cfg.Store,
		source:        cfg.Source,
		refresher:     cfg.Refresher,
		accountKey:    accountKey,
		scopes:        scopes,
		refreshMargin: margin,
		state:         domain.StateUnauthenticated,
	}, nil
}

// Authenticate ensures a valid credential exists. It loads from the store
// first, refreshes when possible, and only then drives the credential source
// (which may require user consent).
func (s *AuthService) Authenticate(ctx context.Context) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}

	if s.cred != nil {
		// A stored grant covering fewer scopes than requested forces
		// re-consent; a provider will not widen scopes on refresh.
		if !s.cred.HasScopes(s.scopes) {
			logger.Info("stored credential for %s lacks requested scopes, re-authenticating", s.accountKey)
		} else {
			if !s.cred.ExpiresWithin(s.refreshMargin) {
				s.state = domain.StateAuthenticated
				return s.copyLocked(), nil
			}
			if err := s.refreshLocked(ctx); err == nil {
				return s.copyLocked(), nil
			} else if !errors.Is(err, domain.ErrTokenRefreshFailed) {
				// Storage and transport problems are surfaced;
				// only a rejected refresh falls through to a
				// fresh consent flow.
				return nil, err
			}
			logger.Warn("refresh rejected for %s, starting new consent flow", s.accountKey)
		}
	}

	return s.obtainLocked(ctx)
}

// Credentials returns the current credential, transparently refreshing and
// persisting first when it is expired. Callers never hold a stale token after
// this returns without error.
func (s *AuthService) Credentials(ctx context.Context) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	if s.cred == nil {
		return nil, fmt.Errorf("no credential for %s: %w", s.accountKey, domain.ErrAuthRequired)
	}

	if s.cred.ExpiresWithin(s.refreshMargin) {
		if err := s.refreshLocked(ctx); err != nil {
			return nil, err
		}
	}

	s.state = domain.StateAuthenticated
	return s.copyLocked(), nil
}

// Refresh forces a refresh regardless of expiry. Exposed so callers can
// pre-warm a token before a burst of API calls.
func (s *AuthService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	if s.cred == nil {
		return fmt.Errorf("no credential for %s: %w", s.accountKey, domain.ErrAuthRequired)
	}

	return s.refreshLocked(ctx)
}

// IsAuthenticated returns true if a record is loaded and either still valid
// or refreshable. A record whose refresh was rejected is terminal and
// reports false.
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		if err := s.loadLocked(ctx); err != nil {
			return false
		}
	}
	if s.cred == nil {
		return false
	}
	if !s.cred.IsExpired() {
		return true
	}
	return s.cred.HasRefreshToken() && s.state != domain.StateExpired
}

// State returns the current lifecycle state.
func (s *AuthService) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Logout deletes the stored record and clears the in-memory copy.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, s.accountKey); err != nil {
		return err
	}

	s.cred = nil
	s.state = domain.StateUnauthenticated
	logger.Info("logged out %s", s.accountKey)
	return nil
}

// GetToken implements driven.TokenProvider for the Google API connectors.
func (s *AuthService) GetToken(ctx context.Context) (string, error) {
	cred, err := s.Credentials(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// AccountKey returns the account this service authenticates.
func (s *AuthService) AccountKey() string {
	return s.accountKey
}

// loadLocked populates the in-memory record from the store on first use.
func (s *AuthService) loadLocked(ctx context.Context) error {
	if s.cred != nil || s.state != domain.StateUnauthenticated {
		return nil
	}

	cred, err := s.store.Load(ctx, s.accountKey)
	if err != nil {
		return err
	}
	if cred != nil {
		logger.Debug("loaded stored credential for %s (expiry %s)", s.accountKey, cred.Expiry)
		s.cred = cred
		s.state = domain.StateAuthenticated
	}
	return nil
}

// obtainLocked drives the credential source and persists the result.
func (s *AuthService) obtainLocked(ctx context.Context) (*domain.Credential, error) {
	prev := s.state
	s.state = domain.StateAuthenticating

	cred, err := s.source.Obtain(ctx, s.scopes)
	if err != nil {
		s.state = prev
		return nil, err
	}

	if cred.AccountKey == "" {
		cred.AccountKey = s.accountKey
	}
	if cred.TokenType == "" {
		cred.TokenType = domain.TokenTypeBearer
	}
	cred.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, *cred); err != nil {
		s.state = prev
		return nil, err
	}

	s.cred = cred
	s.state = domain.StateAuthenticated
	logger.Info("authenticated %s (%d scopes)", cred.AccountKey, len(cred.Scopes))
	return s.copyLocked(), nil
}

// refreshLocked replaces the access token in place and writes the record
// through to the store. A refresh rejected by the provider is terminal for
// the record; a failed store write after a successful refresh is surfaced,
// not swallowed.
func (s *AuthService) refreshLocked(ctx context.Context) error {
	switch {
	case s.cred.HasRefreshToken() && s.refresher != nil:
		fresh, err := s.refresher.Refresh(ctx, s.cred.RefreshToken)
		if err != nil {
			s.state = domain.StateExpired
			return &domain.TokenRefreshError{AccountKey: s.accountKey, Err: err}
		}

		s.cred.AccessToken = fresh.AccessToken
		s.cred.Expiry = fresh.Expiry
		if fresh.TokenType != "" {
			s.cred.TokenType = fresh.TokenType
		}
		// The provider may rotate the refresh token; persist whatever
		// it returned.
		if fresh.RefreshToken != "" {
			s.cred.RefreshToken = fresh.RefreshToken
		}

	case !s.source.Interactive():
		// Service-account style sources mint tokens from key material;
		// re-obtaining is the refresh path.
		fresh, err := s.source.Obtain(ctx, s.scopes)
		if err != nil {
			s.state = domain.StateExpired
			return &domain.TokenRefreshError{AccountKey: s.accountKey, Err: err}
		}
		fresh.AccountKey = s.cred.AccountKey
		s.cred = fresh

	default:
		s.state = domain.StateExpired
		return &domain.TokenRefreshError{
			AccountKey: s.accountKey,
			Err:        errors.New("no refresh token available"),
		}
	}

	s.cred.UpdatedAt = time.Now().UTC()
	s.state = domain.StateAuthenticated
	logger.Debug("refreshed token %s for %s (new expiry %s)",
		logger.Redact(s.cred.AccessToken), s.accountKey, s.cred.Expiry)

	return s.store.Save(ctx, *s.cred)
}

// copyLocked returns a copy so callers cannot mutate the owned record.
func (s *AuthService) copyLocked() *domain.Credential {
	cred := *s.cred
	cred.Scopes = append([]string(nil), s.cred.Scopes...)
	return &cred
}
