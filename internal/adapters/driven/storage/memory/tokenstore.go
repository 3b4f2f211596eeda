// Package memory provides an in-memory TokenStore for tests and ephemeral
// use. Records do not survive the process.
package memory

import (
	"context"
	"sync"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
	"github.com/PabloAlaniz/google-suite/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is a mutex-guarded map of credential records.
type TokenStore struct {
	mu      sync.RWMutex
	records map[string]domain.Credential
}

// NewTokenStore creates an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{records: make(map[string]domain.Credential)}
}

// Load returns the record for an account key, or (nil, nil) when absent.
func (s *TokenStore) Load(_ context.Context, accountKey string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[accountKey]
	if !ok {
		return nil, nil
	}
	rec.Scopes = append([]string(nil), rec.Scopes...)
	return &rec, nil
}

// Save stores the record keyed by its account key.
func (s *TokenStore) Save(_ context.Context, cred domain.Credential) error {
	if cred.AccountKey == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred.Scopes = append([]string(nil), cred.Scopes...)
	s.records[cred.AccountKey] = cred
	return nil
}

// Delete removes the record for an account key, if present.
func (s *TokenStore) Delete(_ context.Context, accountKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, accountKey)
	return nil
}

// Len returns the number of stored records. Useful in tests.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
