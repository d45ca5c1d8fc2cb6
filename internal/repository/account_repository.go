package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akozyrev/amazon-connect/internal/domain"
	"github.com/akozyrev/amazon-connect/pkg/database"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *database.Postgres
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.Postgres) AccountRepository {
	return &accountRepository{db: db}
}

// Upsert inserts or overwrites the account row keyed by user_id. One row
// per user; a repeated OAuth callback replaces the stored credentials.
func (r *accountRepository) Upsert(ctx context.Context, account *domain.AmazonAccount) error {
	query := `
		INSERT INTO amazon_accounts (
			id, user_id, seller_id, refresh_token, access_token,
			access_token_expires_at, region, marketplace_ids, is_active,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			seller_id = EXCLUDED.seller_id,
			refresh_token = EXCLUDED.refresh_token,
			access_token = EXCLUDED.access_token,
			access_token_expires_at = EXCLUDED.access_token_expires_at,
			region = EXCLUDED.region,
			marketplace_ids = EXCLUDED.marketplace_ids,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := r.db.DB.ExecContext(ctx, query,
		account.ID,
		account.UserID,
		account.SellerID,
		account.RefreshToken,
		account.AccessToken,
		account.AccessTokenExpiresAt,
		account.Region,
		pq.Array(account.MarketplaceIDs),
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("account for user %s conflicts: %w", account.UserID, ErrDuplicateAccount)
			}
		}
		return fmt.Errorf("failed to upsert amazon account: %w", err)
	}

	return nil
}

// GetActiveByUserID retrieves the single active account for a user
func (r *accountRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.AmazonAccount, error) {
	query := `
		SELECT id, user_id, seller_id, refresh_token, access_token,
		       access_token_expires_at, region, marketplace_ids, is_active,
		       created_at, updated_at
		FROM amazon_accounts
		WHERE user_id = $1 AND is_active = TRUE
	`

	account := &domain.AmazonAccount{}
	var accessToken sql.NullString
	var expiresAt sql.NullTime
	var marketplaceIDs pq.StringArray

	err := r.db.DB.QueryRowContext(ctx, query, userID).Scan(
		&account.ID,
		&account.UserID,
		&account.SellerID,
		&account.RefreshToken,
		&accessToken,
		&expiresAt,
		&account.Region,
		&marketplaceIDs,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active amazon account for user %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get amazon account: %w", err)
	}

	if accessToken.Valid {
		account.AccessToken = &accessToken.String
	}
	if expiresAt.Valid {
		account.AccessTokenExpiresAt = &expiresAt.Time
	}
	account.MarketplaceIDs = marketplaceIDs

	return account, nil
}

// UpdateAccessToken updates only the short-lived token pair on the account
func (r *accountRepository) UpdateAccessToken(ctx context.Context, accountID, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE amazon_accounts
		SET access_token = $2, access_token_expires_at = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, accountID, accessToken, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("amazon account with id %s not found: %w", accountID, ErrNotFound)
	}

	return nil
}
