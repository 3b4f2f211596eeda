package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Authentication Errors.

	// ErrAuthRequired indicates an operation needs authentication but no
	// credential is loaded.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthFailed indicates the consent flow was cancelled, denied, or
	// the code exchange was rejected. Recoverable by retrying Authenticate.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrCredentialsNotFound indicates a missing or malformed client secret
	// or service-account key file. Fatal until configuration is fixed.
	ErrCredentialsNotFound = errors.New("credentials file not found")

	// ErrTokenRefreshFailed indicates the provider rejected a refresh.
	// Terminal for the current record; a full re-authentication is needed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrStorage indicates a token store backend I/O failure. The
	// in-memory record is unaffected; the operation may be retried.
	ErrStorage = errors.New("token storage failure")
)

// CredentialsNotFoundError reports a missing or unreadable credentials file.
type CredentialsNotFoundError struct {
	Path string
	Err  error
}

func (e *CredentialsNotFoundError) Error() string {
	return fmt.Sprintf("credentials file not found: %s (download from Google Cloud Console -> APIs & Services -> Credentials)", e.Path)
}

// Unwrap makes errors.Is(err, ErrCredentialsNotFound) true.
func (e *CredentialsNotFoundError) Unwrap() error { return ErrCredentialsNotFound }

// AuthenticationError reports a failed or abandoned consent flow.
type AuthenticationError struct {
	AccountKey string
	Reason     string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed for %s: %s: %v", e.AccountKey, e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed for %s: %s", e.AccountKey, e.Reason)
}

// Unwrap makes errors.Is(err, ErrAuthFailed) true.
func (e *AuthenticationError) Unwrap() error { return ErrAuthFailed }

// TokenRefreshError reports a refresh rejected by the token endpoint.
type TokenRefreshError struct {
	AccountKey string
	Err        error
}

func (e *TokenRefreshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token refresh failed for %s: %v", e.AccountKey, e.Err)
	}
	return fmt.Sprintf("token refresh failed for %s", e.AccountKey)
}

// Unwrap makes errors.Is(err, ErrTokenRefreshFailed) true.
func (e *TokenRefreshError) Unwrap() error { return ErrTokenRefreshFailed }

// StorageError reports a token store backend failure. It carries the backend
// name and account key so failures are diagnosable across store variants.
type StorageError struct {
	Backend    string
	AccountKey string
	Op         string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s store: %s %q: %v", e.Backend, e.Op, e.AccountKey, e.Err)
}

// Unwrap makes errors.Is(err, ErrStorage) true.
func (e *StorageError) Unwrap() error { return ErrStorage }
