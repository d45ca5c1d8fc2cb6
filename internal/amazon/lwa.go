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

const defaultMaxRetries = 3

// TokenResponse is the LWA token endpoint response for both the
// authorization-code and refresh-token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenError is returned when the token endpoint rejects a request. The
// partner's error body is carried for diagnostics, never swallowed.
type TokenError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *TokenError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("lwa token endpoint returned %d: %s (%s)", e.StatusCode, e.Description, e.Code)
	}
	return fmt.Sprintf("lwa token endpoint returned %d", e.StatusCode)
}

// LWAClient talks to the Login with Amazon token endpoint. Transient
// network and 5xx failures are retried with capped exponential backoff;
// 4xx responses (stale code, revoked token) are terminal.
type LWAClient struct {
	httpClient   *http.Client
	endpoint     string
	clientID     string
	clientSecret string
	maxRetries   uint64
}

// NewLWAClient creates a token endpoint client. A nil httpClient falls back
// to http.DefaultClient.
func NewLWAClient(httpClient *http.Client, endpoint, clientID, clientSecret string) *LWAClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LWAClient{
		httpClient:   httpClient,
		endpoint:     endpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
		maxRetries:   defaultMaxRetries,
	}
}

// Exchange trades an authorization code for a token pair. A code can be
// exchanged at most once; the partner rejects replays.
func (c *LWAClient) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {redirectURI},
	}
	return c.requestToken(ctx, form)
}

// Refresh mints a new access token from a stored refresh token. The
// refresh token itself is never rotated by this grant.
func (c *LWAClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	return c.requestToken(ctx, form)
}

func (c *LWAClient) requestToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	operation := func() (*TokenResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build token request: %w", err))
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("token request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read token response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			tokenErr := &TokenError{StatusCode: resp.StatusCode}
			var errBody struct {
				Code        string `json:"error"`
				Description string `json:"error_description"`
			}
			if err := json.Unmarshal(body, &errBody); err == nil {
				tokenErr.Code = errBody.Code
				tokenErr.Description = errBody.Description
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return nil, tokenErr
			}
			return nil, backoff.Permanent(error(tokenErr))
		}

		var token TokenResponse
		if err := json.Unmarshal(body, &token); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode token response: %w", err))
		}

		return &token, nil
	}

	policy := backoff.WithContext(newRetryPolicy(c.maxRetries), ctx)

	token, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return nil, err
	}

	return token, nil
}

func newRetryPolicy(maxRetries uint64) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return backoff.WithMaxRetries(b, maxRetries)
}
