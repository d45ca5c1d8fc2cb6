package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/akozyrev/amazon-connect/internal/amazon"
	"github.com/akozyrev/amazon-connect/internal/domain"
	"github.com/akozyrev/amazon-connect/internal/repository"
	"github.com/akozyrev/amazon-connect/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testCipher() *utils.TokenCipher {
	cipher, err := utils.NewTokenCipher(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		panic(err)
	}
	return cipher
}

// fakeAccountRepo is an in-memory AccountRepository keyed by user id.
type fakeAccountRepo struct {
	accounts         map[string]*domain.AmazonAccount
	upsertErr        error
	upsertCalls      int
	updateTokenCalls int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.AmazonAccount)}
}

func (f *fakeAccountRepo) Upsert(ctx context.Context, account *domain.AmazonAccount) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	stored := *account
	f.accounts[account.UserID] = &stored
	return nil
}

func (f *fakeAccountRepo) GetActiveByUserID(ctx context.Context, userID string) (*domain.AmazonAccount, error) {
	account, ok := f.accounts[userID]
	if !ok || !account.IsActive {
		return nil, fmt.Errorf("active amazon account for user %s not found: %w", userID, repository.ErrNotFound)
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) UpdateAccessToken(ctx context.Context, accountID, accessToken string, expiresAt time.Time) error {
	f.updateTokenCalls++
	for _, account := range f.accounts {
		if account.ID == accountID {
			token := accessToken
			expiry := expiresAt
			account.AccessToken = &token
			account.AccessTokenExpiresAt = &expiry
			return nil
		}
	}
	return fmt.Errorf("amazon account with id %s not found: %w", accountID, repository.ErrNotFound)
}

// fakeOrderRepo is an in-memory OrderRepository keyed by amazon order id.
type fakeOrderRepo struct {
	orders    map[string]*domain.AmazonOrder
	upsertErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.AmazonOrder)}
}

func (f *fakeOrderRepo) UpsertBatch(ctx context.Context, orders []*domain.AmazonOrder) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, order := range orders {
		if order.ID == "" {
			order.ID = uuid.New().String()
		}
		stored := *order
		f.orders[order.AmazonOrderID] = &stored
	}
	return nil
}

func (f *fakeOrderRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.AmazonOrder, error) {
	var result []*domain.AmazonOrder
	for _, order := range f.orders {
		if order.UserID == userID {
			copied := *order
			result = append(result, &copied)
		}
	}
	return result, nil
}

// fakeLWA stubs the TokenExchanger surface.
type fakeLWA struct {
	exchangeResp    *amazon.TokenResponse
	exchangeErr     error
	exchangeCalls   int
	lastCode        string
	lastRedirectURI string

	refreshResp      *amazon.TokenResponse
	refreshErr       error
	refreshCalls     int
	lastRefreshToken string
}

func (f *fakeLWA) Exchange(ctx context.Context, code, redirectURI string) (*amazon.TokenResponse, error) {
	f.exchangeCalls++
	f.lastCode = code
	f.lastRedirectURI = redirectURI
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeResp, nil
}

func (f *fakeLWA) Refresh(ctx context.Context, refreshToken string) (*amazon.TokenResponse, error) {
	f.refreshCalls++
	f.lastRefreshToken = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshResp, nil
}

// fakeOrdersClient stubs the OrdersFetcher surface.
type fakeOrdersClient struct {
	orders           []amazon.Order
	err              error
	calls            int
	lastAccessToken  string
	lastRegion       string
	lastMarketplaces []string
	lastCreatedAfter time.Time
}

func (f *fakeOrdersClient) ListOrders(ctx context.Context, accessToken, region string, marketplaceIDs []string, createdAfter time.Time) ([]amazon.Order, error) {
	f.calls++
	f.lastAccessToken = accessToken
	f.lastRegion = region
	f.lastMarketplaces = marketplaceIDs
	f.lastCreatedAfter = createdAfter
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}
