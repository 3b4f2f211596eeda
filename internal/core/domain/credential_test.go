package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredential_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expiry  time.Time
		expired bool
	}{
		{name: "zero expiry never expires", expiry: time.Time{}, expired: false},
		{name: "future expiry", expiry: time.Now().Add(time.Hour), expired: false},
		{name: "past expiry", expiry: time.Now().Add(-time.Minute), expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Credential{AccessToken: "tok", Expiry: tt.expiry}
			assert.Equal(t, tt.expired, c.IsExpired())
		})
	}
}

func TestCredential_ExpiresWithin(t *testing.T) {
	c := &Credential{Expiry: time.Now().Add(2 * time.Minute)}

	assert.True(t, c.ExpiresWithin(5*time.Minute))
	assert.False(t, c.ExpiresWithin(30*time.Second))

	// Zero expiry is treated as non-expiring.
	c = &Credential{}
	assert.False(t, c.ExpiresWithin(5*time.Minute))
}

func TestCredential_HasScopes(t *testing.T) {
	c := &Credential{Scopes: []string{ScopeGmailReadonly, ScopeCalendarFull}}

	tests := []struct {
		name      string
		requested []string
		want      bool
	}{
		{name: "empty request", requested: nil, want: true},
		{name: "subset", requested: []string{ScopeGmailReadonly}, want: true},
		{name: "exact", requested: []string{ScopeGmailReadonly, ScopeCalendarFull}, want: true},
		{name: "missing scope", requested: []string{ScopeDriveFull}, want: false},
		{name: "partial overlap", requested: []string{ScopeGmailReadonly, ScopeDriveFull}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.HasScopes(tt.requested))
		})
	}
}

func TestCredential_HasRefreshToken(t *testing.T) {
	assert.False(t, (&Credential{}).HasRefreshToken())
	assert.True(t, (&Credential{RefreshToken: "r1"}).HasRefreshToken())
}
