package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/akozyrev/amazon-connect/internal/domain"
	"github.com/akozyrev/amazon-connect/pkg/database"
	"github.com/google/uuid"
)

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db *database.Postgres
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.Postgres) OrderRepository {
	return &orderRepository{db: db}
}

// UpsertBatch writes a batch of order snapshots in one transaction, keyed
// by amazon_order_id. Existing rows are overwritten with the new snapshot.
func (r *orderRepository) UpsertBatch(ctx context.Context, orders []*domain.AmazonOrder) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO amazon_orders (
			id, user_id, amazon_account_id, amazon_order_id, marketplace_id,
			order_status, purchase_date, last_update_date, order_type,
			fulfillment_channel, ship_service_level, order_total_amount,
			order_total_currency, number_of_items_shipped,
			number_of_items_unshipped, earliest_ship_date, latest_ship_date,
			buyer_email, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (amazon_order_id) DO UPDATE SET
			marketplace_id = EXCLUDED.marketplace_id,
			order_status = EXCLUDED.order_status,
			purchase_date = EXCLUDED.purchase_date,
			last_update_date = EXCLUDED.last_update_date,
			order_type = EXCLUDED.order_type,
			fulfillment_channel = EXCLUDED.fulfillment_channel,
			ship_service_level = EXCLUDED.ship_service_level,
			order_total_amount = EXCLUDED.order_total_amount,
			order_total_currency = EXCLUDED.order_total_currency,
			number_of_items_shipped = EXCLUDED.number_of_items_shipped,
			number_of_items_unshipped = EXCLUDED.number_of_items_unshipped,
			earliest_ship_date = EXCLUDED.earliest_ship_date,
			latest_ship_date = EXCLUDED.latest_ship_date,
			buyer_email = EXCLUDED.buyer_email,
			updated_at = EXCLUDED.updated_at
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, order := range orders {
		if order.ID == "" {
			order.ID = uuid.New().String()
		}
		if order.CreatedAt.IsZero() {
			order.CreatedAt = now
		}
		order.UpdatedAt = now

		_, err := stmt.ExecContext(ctx,
			order.ID,
			order.UserID,
			order.AmazonAccountID,
			order.AmazonOrderID,
			order.MarketplaceID,
			order.OrderStatus,
			order.PurchaseDate,
			order.LastUpdateDate,
			order.OrderType,
			order.FulfillmentChannel,
			order.ShipServiceLevel,
			order.OrderTotalAmount,
			order.OrderTotalCurrency,
			order.NumberOfItemsShipped,
			order.NumberOfItemsUnshipped,
			order.EarliestShipDate,
			order.LatestShipDate,
			order.BuyerEmail,
			order.CreatedAt,
			order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert order %s: %w", order.AmazonOrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order batch: %w", err)
	}

	return nil
}

// ListByUserID returns all stored order snapshots for a user, newest first
func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.AmazonOrder, error) {
	query := `
		SELECT id, user_id, amazon_account_id, amazon_order_id, marketplace_id,
		       order_status, purchase_date, last_update_date, order_type,
		       fulfillment_channel, ship_service_level, order_total_amount,
		       order_total_currency, number_of_items_shipped,
		       number_of_items_unshipped, earliest_ship_date, latest_ship_date,
		       buyer_email, created_at, updated_at
		FROM amazon_orders
		WHERE user_id = $1
		ORDER BY purchase_date DESC NULLS LAST
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.AmazonOrder
	for rows.Next() {
		order := &domain.AmazonOrder{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.AmazonAccountID,
			&order.AmazonOrderID,
			&order.MarketplaceID,
			&order.OrderStatus,
			&order.PurchaseDate,
			&order.LastUpdateDate,
			&order.OrderType,
			&order.FulfillmentChannel,
			&order.ShipServiceLevel,
			&order.OrderTotalAmount,
			&order.OrderTotalCurrency,
			&order.NumberOfItemsShipped,
			&order.NumberOfItemsUnshipped,
			&order.EarliestShipDate,
			&order.LatestShipDate,
			&order.BuyerEmail,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}
