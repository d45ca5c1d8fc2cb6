package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Money is the SP-API monetary amount. Amount arrives as a decimal string.
type Money struct {
	Amount       string `json:"Amount"`
	CurrencyCode string `json:"CurrencyCode"`
}

// Order is the wire representation of an SP-API order.
type Order struct {
	AmazonOrderID          string `json:"AmazonOrderId"`
	MarketplaceID          string `json:"MarketplaceId"`
	OrderStatus            string `json:"OrderStatus"`
	PurchaseDate           string `json:"PurchaseDate"`
	LastUpdateDate         string `json:"LastUpdateDate"`
	OrderType              string `json:"OrderType"`
	FulfillmentChannel     string `json:"FulfillmentChannel"`
	ShipServiceLevel       string `json:"ShipServiceLevel"`
	OrderTotal             *Money `json:"OrderTotal"`
	NumberOfItemsShipped   int    `json:"NumberOfItemsShipped"`
	NumberOfItemsUnshipped int    `json:"NumberOfItemsUnshipped"`
	EarliestShipDate       string `json:"EarliestShipDate"`
	LatestShipDate         string `json:"LatestShipDate"`
	BuyerEmail             string `json:"BuyerEmail"`
}

type ordersResponse struct {
	Payload struct {
		Orders []Order `json:"Orders"`
	} `json:"payload"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// APIError is returned when the SP-API rejects a signed request.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("sp-api returned %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("sp-api returned %d", e.StatusCode)
}

// OrdersClient issues SigV4-signed requests against the SP-API orders
// endpoint. The clock is injectable so signatures can be verified in tests.
type OrdersClient struct {
	httpClient *http.Client
	endpoint   string
	creds      Credentials
	maxRetries uint64
	now        func() time.Time
}

// NewOrdersClient creates a signed SP-API client for the given endpoint,
// e.g. https://sellingpartnerapi-na.amazon.com.
func NewOrdersClient(httpClient *http.Client, endpoint string, creds Credentials) *OrdersClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OrdersClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		creds:      creds,
		maxRetries: defaultMaxRetries,
		now:        time.Now,
	}
}

// ListOrders fetches orders for the given marketplaces created after the
// given instant. The request carries the SigV4 signature plus the seller's
// access token in x-amz-access-token.
func (c *OrdersClient) ListOrders(ctx context.Context, accessToken, region string, marketplaceIDs []string, createdAfter time.Time) ([]Order, error) {
	ordersURL := fmt.Sprintf("%s/orders/v0/orders?MarketplaceIds=%s&CreatedAfter=%s",
		c.endpoint,
		strings.Join(marketplaceIDs, ","),
		createdAfter.UTC().Format(time.RFC3339),
	)

	u, err := url.Parse(ordersURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse orders url: %w", err)
	}

	operation := func() ([]Order, error) {
		now := c.now().UTC()
		headers := map[string]string{
			"host":               u.Host,
			"x-amz-access-token": accessToken,
			"x-amz-date":         now.Format("20060102T150405Z"),
		}

		signedHeaders, err := SignRequest(http.MethodGet, ordersURL, headers, "", c.creds, region, now)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to sign orders request: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ordersURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build orders request: %w", err))
		}
		for name, value := range signedHeaders {
			if strings.EqualFold(name, "host") {
				req.Host = value
				continue
			}
			req.Header.Set(name, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("orders request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read orders response: %w", err)
		}

		var decoded ordersResponse
		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			if err := json.Unmarshal(body, &decoded); err == nil && len(decoded.Errors) > 0 {
				apiErr.Code = decoded.Errors[0].Code
				apiErr.Message = decoded.Errors[0].Message
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return nil, apiErr
			}
			return nil, backoff.Permanent(error(apiErr))
		}

		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode orders response: %w", err))
		}

		return decoded.Payload.Orders, nil
	}

	policy := backoff.WithContext(newRetryPolicy(c.maxRetries), ctx)

	orders, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return nil, err
	}

	return orders, nil
}
