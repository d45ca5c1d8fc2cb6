package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/akozyrev/amazon-connect/internal/config"
	"github.com/akozyrev/amazon-connect/internal/domain"
	"github.com/akozyrev/amazon-connect/internal/repository"
	"github.com/akozyrev/amazon-connect/internal/utils"
	"go.uber.org/zap"
)

// amazonAuthService implements AmazonAuthService
type amazonAuthService struct {
	accounts repository.AccountRepository
	lwa      TokenExchanger
	cipher   *utils.TokenCipher
	cfg      config.AmazonConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewAmazonAuthService creates the OAuth flow service
func NewAmazonAuthService(
	accounts repository.AccountRepository,
	lwa TokenExchanger,
	cipher *utils.TokenCipher,
	cfg config.AmazonConfig,
	logger *zap.Logger,
) AmazonAuthService {
	return &amazonAuthService{
		accounts: accounts,
		lwa:      lwa,
		cipher:   cipher,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start builds the Seller Central consent URL for the caller. The caller's
// user id rides in the OAuth state parameter and is checked again on
// callback. Pure URL construction, no side effects.
func (s *amazonAuthService) Start(ctx context.Context, userID, origin string) (string, error) {
	if s.cfg.LWAClientID == "" {
		return "", ErrClientNotConfigured
	}

	consent, err := url.Parse(s.cfg.ConsentEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid consent endpoint: %w", err)
	}

	query := consent.Query()
	query.Set("application_id", s.cfg.LWAClientID)
	query.Set("redirect_uri", origin+s.cfg.CallbackPath)
	query.Set("state", userID)
	query.Set("version", "beta")
	consent.RawQuery = query.Encode()

	return consent.String(), nil
}

// Callback completes the authorization-code flow: it verifies the state
// parameter against the authenticated caller, exchanges the code for
// tokens and overwrites the caller's account row with the new credentials.
// A failed exchange leaves any existing row untouched.
func (s *amazonAuthService) Callback(ctx context.Context, userID, origin, code, state, sellingPartnerID string) (string, error) {
	if state != userID {
		s.logger.Warn("OAuth state mismatch", zap.String("user_id", userID))
		return "", ErrInvalidState
	}

	if code == "" || sellingPartnerID == "" {
		return "", ErrMissingParameter
	}

	token, err := s.lwa.Exchange(ctx, code, origin+s.cfg.CallbackPath)
	if err != nil {
		s.logger.Error("Token exchange failed",
			zap.String("user_id", userID),
			zap.String("seller_id", sellingPartnerID),
			zap.Error(err),
		)
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}

	encryptedRefresh, err := s.cipher.Seal(token.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	expiresAt := s.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	account := &domain.AmazonAccount{
		UserID:               userID,
		SellerID:             sellingPartnerID,
		RefreshToken:         encryptedRefresh,
		AccessToken:          &token.AccessToken,
		AccessTokenExpiresAt: &expiresAt,
		Region:               s.cfg.DefaultRegion,
		MarketplaceIDs:       s.cfg.DefaultMarketplaceIDs,
		IsActive:             true,
	}

	if err := s.accounts.Upsert(ctx, account); err != nil {
		s.logger.Error("Failed to save amazon account",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return "", errors.Join(ErrPersistenceFailed, err)
	}

	s.logger.Info("Amazon account connected",
		zap.String("user_id", userID),
		zap.String("seller_id", sellingPartnerID),
	)

	return sellingPartnerID, nil
}
