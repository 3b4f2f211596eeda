package driven

import (
	"context"

	"github.com/PabloAlaniz/google-suite/internal/core/domain"
)

// TokenRefresher exchanges a refresh token for a new access token at the
// provider's token endpoint. The provider may rotate the refresh token; the
// returned credential carries whichever refresh token the provider issued
// (possibly the empty string, meaning the old one remains valid).
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error)
}
