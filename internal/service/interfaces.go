package service

import (
	"context"
	"time"

	"github.com/akozyrev/amazon-connect/internal/amazon"
	"github.com/akozyrev/amazon-connect/internal/domain"
)

// AmazonAuthService drives the OAuth2 authorization-code flow against the
// Selling Partner platform.
type AmazonAuthService interface {
	Start(ctx context.Context, userID, origin string) (authURL string, err error)
	Callback(ctx context.Context, userID, origin, code, state, sellingPartnerID string) (sellerID string, err error)
}

// TokenRefresher guarantees a usable access token for an account,
// refreshing through the partner token endpoint only when the stored one
// is missing or expired.
type TokenRefresher interface {
	EnsureAccessToken(ctx context.Context, account *domain.AmazonAccount) (string, error)
}

// OrderSyncService pulls recent orders from the SP-API and reconciles them
// into storage.
type OrderSyncService interface {
	SyncOrders(ctx context.Context, userID string) ([]domain.AmazonOrder, error)
}

// TokenExchanger is the LWA token endpoint surface the services depend on.
// Implemented by *amazon.LWAClient.
type TokenExchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (*amazon.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*amazon.TokenResponse, error)
}

// OrdersFetcher is the signed SP-API surface the sync service depends on.
// Implemented by *amazon.OrdersClient.
type OrdersFetcher interface {
	ListOrders(ctx context.Context, accessToken, region string, marketplaceIDs []string, createdAfter time.Time) ([]amazon.Order, error)
}
