package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultScopes(t *testing.T) {
	scopes := DefaultScopes()

	assert.Contains(t, scopes, ScopeGmailReadonly)
	assert.Contains(t, scopes, ScopeCalendarFull)
	assert.NotContains(t, scopes, ScopeDriveFull)
}

func TestAllScopes_CoversEveryService(t *testing.T) {
	scopes := AllScopes()

	assert.Contains(t, scopes, ScopeGmailSend)
	assert.Contains(t, scopes, ScopeCalendarEvents)
	assert.Contains(t, scopes, ScopeDriveFull)
	assert.Contains(t, scopes, ScopeSheetsFull)
}
