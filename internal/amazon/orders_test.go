package amazon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersPayload = `{
	"payload": {
		"Orders": [
			{
				"AmazonOrderId": "111-0000001-0000001",
				"MarketplaceId": "ATVPDKIKX0DER",
				"OrderStatus": "Shipped",
				"PurchaseDate": "2024-03-01T12:00:00Z",
				"LastUpdateDate": "2024-03-02T12:00:00Z",
				"OrderType": "StandardOrder",
				"FulfillmentChannel": "AFN",
				"ShipServiceLevel": "Std US D2D Dom",
				"OrderTotal": {"Amount": "45.99", "CurrencyCode": "USD"},
				"NumberOfItemsShipped": 2,
				"NumberOfItemsUnshipped": 0,
				"BuyerEmail": "buyer@marketplace.amazon.com"
			},
			{
				"AmazonOrderId": "111-0000002-0000002",
				"MarketplaceId": "ATVPDKIKX0DER",
				"OrderStatus": "Pending"
			}
		]
	}
}`

func TestListOrders(t *testing.T) {
	var gotAuth, gotToken, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotToken = r.Header.Get("x-amz-access-token")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(ordersPayload))
	}))
	defer server.Close()

	client := NewOrdersClient(server.Client(), server.URL, Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"})
	client.now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }

	createdAfter := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	orders, err := client.ListOrders(context.Background(), "Atza|token", "us-east-1", []string{"ATVPDKIKX0DER"}, createdAfter)
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, "111-0000001-0000001", orders[0].AmazonOrderID)
	assert.Equal(t, "45.99", orders[0].OrderTotal.Amount)
	assert.Equal(t, 2, orders[0].NumberOfItemsShipped)
	assert.Nil(t, orders[1].OrderTotal)

	assert.True(t, strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256 Credential=AKID/20240315/us-east-1/execute-api/aws4_request"))
	assert.Contains(t, gotAuth, "SignedHeaders=host;x-amz-access-token;x-amz-date")
	assert.Equal(t, "Atza|token", gotToken)
	assert.Contains(t, gotQuery, "MarketplaceIds=ATVPDKIKX0DER")
	assert.Contains(t, gotQuery, "CreatedAfter=2024-02-14T00:00:00Z")
}

func TestListOrdersPartnerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"code":"Unauthorized","message":"Access to requested resource is denied."}]}`))
	}))
	defer server.Close()

	client := NewOrdersClient(server.Client(), server.URL, Credentials{})

	_, err := client.ListOrders(context.Background(), "Atza|token", "us-east-1", []string{"ATVPDKIKX0DER"}, time.Now())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Access to requested resource is denied.", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestListOrdersRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"payload":{"Orders":[]}}`))
	}))
	defer server.Close()

	client := NewOrdersClient(server.Client(), server.URL, Credentials{})

	orders, err := client.ListOrders(context.Background(), "Atza|token", "us-east-1", []string{"ATVPDKIKX0DER"}, time.Now())
	require.NoError(t, err)

	assert.Empty(t, orders)
	assert.Equal(t, int32(2), calls.Load())
}
