package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/akozyrev/amazon-connect/internal/amazon"
	"github.com/akozyrev/amazon-connect/internal/domain"
	"github.com/akozyrev/amazon-connect/internal/repository"
	"go.uber.org/zap"
)

// orderSyncService implements OrderSyncService
type orderSyncService struct {
	accounts  repository.AccountRepository
	orders    repository.OrderRepository
	refresher TokenRefresher
	client    OrdersFetcher
	window    time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderSyncService creates the order sync service. window is the
// trailing CreatedAfter window for the orders query.
func NewOrderSyncService(
	accounts repository.AccountRepository,
	orders repository.OrderRepository,
	refresher TokenRefresher,
	client OrdersFetcher,
	window time.Duration,
	logger *zap.Logger,
) OrderSyncService {
	return &orderSyncService{
		accounts:  accounts,
		orders:    orders,
		refresher: refresher,
		client:    client,
		window:    window,
		logger:    logger,
		now:       time.Now,
	}
}

// SyncOrders loads the caller's active account, ensures a valid access
// token, fetches recent orders over the signed API and upserts the batch
// keyed by amazon_order_id.
func (s *orderSyncService) SyncOrders(ctx context.Context, userID string) ([]domain.AmazonOrder, error) {
	account, err := s.accounts.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveAccount
		}
		return nil, errors.Join(ErrPersistenceFailed, err)
	}

	accessToken, err := s.refresher.EnsureAccessToken(ctx, account)
	if err != nil {
		return nil, err
	}

	createdAfter := s.now().Add(-s.window)
	fetched, err := s.client.ListOrders(ctx, accessToken, account.Region, account.MarketplaceIDs, createdAfter)
	if err != nil {
		s.logger.Error("Orders fetch failed",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
		return nil, errors.Join(ErrPartnerAPI, err)
	}

	records := make([]domain.AmazonOrder, 0, len(fetched))
	batch := make([]*domain.AmazonOrder, 0, len(fetched))
	for _, order := range fetched {
		record := s.mapOrder(account, order)
		records = append(records, record)
		batch = append(batch, &records[len(records)-1])
	}

	if err := s.orders.UpsertBatch(ctx, batch); err != nil {
		return nil, errors.Join(ErrPersistenceFailed, err)
	}

	s.logger.Info("Orders synced",
		zap.String("account_id", account.ID),
		zap.Int("count", len(records)),
	)

	return records, nil
}

// mapOrder converts a wire order into a snapshot row. Missing monetary and
// shipment fields default to zero values rather than failing the batch.
func (s *orderSyncService) mapOrder(account *domain.AmazonAccount, order amazon.Order) domain.AmazonOrder {
	record := domain.AmazonOrder{
		UserID:                 account.UserID,
		AmazonAccountID:        account.ID,
		AmazonOrderID:          order.AmazonOrderID,
		MarketplaceID:          order.MarketplaceID,
		OrderStatus:            order.OrderStatus,
		OrderType:              order.OrderType,
		FulfillmentChannel:     order.FulfillmentChannel,
		ShipServiceLevel:       order.ShipServiceLevel,
		NumberOfItemsShipped:   order.NumberOfItemsShipped,
		NumberOfItemsUnshipped: order.NumberOfItemsUnshipped,
		BuyerEmail:             order.BuyerEmail,
		PurchaseDate:           s.parseTime(order.AmazonOrderID, "PurchaseDate", order.PurchaseDate),
		LastUpdateDate:         s.parseTime(order.AmazonOrderID, "LastUpdateDate", order.LastUpdateDate),
		EarliestShipDate:       s.parseTime(order.AmazonOrderID, "EarliestShipDate", order.EarliestShipDate),
		LatestShipDate:         s.parseTime(order.AmazonOrderID, "LatestShipDate", order.LatestShipDate),
	}

	if order.OrderTotal != nil {
		amount, err := strconv.ParseFloat(order.OrderTotal.Amount, 64)
		if err != nil {
			s.logger.Warn("Malformed order total, defaulting to zero",
				zap.String("amazon_order_id", order.AmazonOrderID),
				zap.String("amount", order.OrderTotal.Amount),
			)
			amount = 0
		}
		record.OrderTotalAmount = amount
		record.OrderTotalCurrency = order.OrderTotal.CurrencyCode
	}

	return record
}

func (s *orderSyncService) parseTime(orderID, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		s.logger.Warn("Malformed order timestamp",
			zap.String("amazon_order_id", orderID),
			zap.String("field", field),
			zap.String("value", value),
		)
		return nil
	}
	return &parsed
}
