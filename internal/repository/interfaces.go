package repository

import (
	"context"
	"time"

	"github.com/akozyrev/amazon-connect/internal/domain"
)

// AccountRepository defines methods for Amazon account operations.
// Upsert is the only writer of credential fields; UpdateAccessToken touches
// nothing but the access token pair.
type AccountRepository interface {
	Upsert(ctx context.Context, account *domain.AmazonAccount) error
	GetActiveByUserID(ctx context.Context, userID string) (*domain.AmazonAccount, error)
	UpdateAccessToken(ctx context.Context, accountID, accessToken string, expiresAt time.Time) error
}

// OrderRepository defines methods for Amazon order snapshots
type OrderRepository interface {
	UpsertBatch(ctx context.Context, orders []*domain.AmazonOrder) error
	ListByUserID(ctx context.Context, userID string) ([]*domain.AmazonOrder, error)
}
