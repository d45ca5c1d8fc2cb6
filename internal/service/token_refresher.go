package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akozyrev/amazon-connect/internal/domain"
	"github.com/akozyrev/amazon-connect/internal/repository"
	"github.com/akozyrev/amazon-connect/internal/utils"
	"go.uber.org/zap"
)

// tokenRefresher implements TokenRefresher
type tokenRefresher struct {
	accounts repository.AccountRepository
	lwa      TokenExchanger
	cipher   *utils.TokenCipher
	logger   *zap.Logger
	now      func() time.Time
}

// NewTokenRefresher creates a token refresher
func NewTokenRefresher(
	accounts repository.AccountRepository,
	lwa TokenExchanger,
	cipher *utils.TokenCipher,
	logger *zap.Logger,
) TokenRefresher {
	return &tokenRefresher{
		accounts: accounts,
		lwa:      lwa,
		cipher:   cipher,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureAccessToken returns the stored access token while it is still
// valid; otherwise it refreshes through the partner and persists only the
// new token pair. Concurrent refreshes on the same account are tolerated
// as last-write-wins: refreshed tokens are interchangeable within their
// validity window.
func (r *tokenRefresher) EnsureAccessToken(ctx context.Context, account *domain.AmazonAccount) (string, error) {
	if account.HasValidAccessToken(r.now()) {
		return *account.AccessToken, nil
	}

	refreshToken, err := r.cipher.Open(account.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	token, err := r.lwa.Refresh(ctx, refreshToken)
	if err != nil {
		r.logger.Error("Access token refresh failed",
			zap.String("account_id", account.ID),
			zap.String("seller_id", account.SellerID),
			zap.Error(err),
		)
		return "", errors.Join(ErrRefreshFailed, err)
	}

	expiresAt := r.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := r.accounts.UpdateAccessToken(ctx, account.ID, token.AccessToken, expiresAt); err != nil {
		return "", errors.Join(ErrPersistenceFailed, err)
	}

	account.AccessToken = &token.AccessToken
	account.AccessTokenExpiresAt = &expiresAt

	r.logger.Debug("Access token refreshed",
		zap.String("account_id", account.ID),
		zap.Time("expires_at", expiresAt),
	)

	return token.AccessToken, nil
}
