package amazon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignRequestKnownVector(t *testing.T) {
	// Vector computed independently with a reference implementation of the
	// same canonicalization.
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	creds := Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	}
	headers := map[string]string{
		"host":               "sellingpartnerapi-na.amazon.com",
		"x-amz-access-token": "Atza|test-access-token",
		"x-amz-date":         "20240315T103000Z",
	}

	signed, err := SignRequest(
		"GET",
		"https://sellingpartnerapi-na.amazon.com/orders/v0/orders?MarketplaceIds=ATVPDKIKX0DER&CreatedAfter=2024-01-01T00:00:00Z",
		headers,
		"",
		creds,
		"us-east-1",
		now,
	)
	require.NoError(t, err)

	assert.Equal(t,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20240315/us-east-1/execute-api/aws4_request, "+
			"SignedHeaders=host;x-amz-access-token;x-amz-date, "+
			"Signature=8011ed0fc9d4df114ba2a9fa764ac787c517907833939e59633e94d1d930f336",
		signed["Authorization"])
	assert.Equal(t, "20240315T103000Z", signed["X-Amz-Date"])
}

func TestSignRequestDeterministic(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	creds := Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"}
	headers := map[string]string{
		"host":       "sellingpartnerapi-na.amazon.com",
		"x-amz-date": "20250102T030405Z",
	}

	first, err := SignRequest("GET", "https://sellingpartnerapi-na.amazon.com/orders/v0/orders", headers, "", creds, "us-east-1", now)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := SignRequest("GET", "https://sellingpartnerapi-na.amazon.com/orders/v0/orders", headers, "", creds, "us-east-1", now)
		require.NoError(t, err)
		assert.Equal(t, first["Authorization"], again["Authorization"])
	}
}

func TestSignRequestDoesNotMutateInput(t *testing.T) {
	headers := map[string]string{"host": "example.com"}

	signed, err := SignRequest("GET", "https://example.com/", headers, "", Credentials{}, "us-east-1", time.Now())
	require.NoError(t, err)

	assert.NotContains(t, headers, "Authorization")
	assert.Contains(t, signed, "Authorization")
	assert.Contains(t, signed, "X-Amz-Date")
}

func TestSignRequestHeaderOrderIndependent(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	creds := Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"}

	// Mixed-case names must canonicalize to the same signature as
	// lowercase ones.
	upper := map[string]string{
		"Host":       "sellingpartnerapi-na.amazon.com",
		"X-Amz-Date": "20240315T103000Z",
	}
	lower := map[string]string{
		"host":       "sellingpartnerapi-na.amazon.com",
		"x-amz-date": "20240315T103000Z",
	}

	signedUpper, err := SignRequest("GET", "https://sellingpartnerapi-na.amazon.com/orders/v0/orders", upper, "", creds, "us-east-1", now)
	require.NoError(t, err)
	signedLower, err := SignRequest("GET", "https://sellingpartnerapi-na.amazon.com/orders/v0/orders", lower, "", creds, "us-east-1", now)
	require.NoError(t, err)

	assert.Equal(t, signedLower["Authorization"], signedUpper["Authorization"])
}
