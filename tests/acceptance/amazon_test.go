package acceptance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/akozyrev/amazon-connect/internal/dto"
)

func (s *Suite) TestHealthEndpoint() {
	resp, err := http.Get(s.BaseURL + "/health")
	s.Require().NoError(err, "Failed to make request")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode, "Expected status 200")
}

func (s *Suite) TestMetricsEndpoint() {
	resp, err := http.Get(s.BaseURL + "/metrics")
	s.Require().NoError(err, "Failed to make request")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode, "Expected status 200")
}

func (s *Suite) TestAmazonAuthStart_Success() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/functions/v1/amazon-auth?action=start", nil)
	req.Header.Set("Authorization", "Bearer "+s.bearerToken("user-start"))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthURLResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	parsed, err := url.Parse(authResp.AuthURL)
	s.Require().NoError(err)
	s.Equal("sellercentral.amazon.com", parsed.Host)
	s.Equal("user-start", parsed.Query().Get("state"))
	s.True(strings.HasSuffix(parsed.Query().Get("redirect_uri"), "/auth/amazon/callback"))
}

func (s *Suite) TestAmazonAuthStart_NoToken() {
	resp, err := http.Post(s.BaseURL+"/functions/v1/amazon-auth?action=start", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestAmazonAuthCallback_ConnectsAccount() {
	userID := "user-callback"
	s.completeCallback(userID, "SELLER-001")

	var sellerID, refreshToken string
	var isActive bool
	err := s.Postgres.DB.QueryRow(
		"SELECT seller_id, refresh_token, is_active FROM amazon_accounts WHERE user_id = $1",
		userID,
	).Scan(&sellerID, &refreshToken, &isActive)
	s.Require().NoError(err)

	s.Equal("SELLER-001", sellerID)
	s.True(isActive)
	// Stored encrypted, never the raw LWA value.
	s.NotEqual("acceptance-refresh-token", refreshToken)
	s.NotContains(refreshToken, "acceptance-refresh-token")
}

func (s *Suite) TestAmazonAuthCallback_StateMismatch() {
	query := url.Values{}
	query.Set("action", "callback")
	query.Set("spapi_oauth_code", "CODE-123")
	query.Set("state", "someone-else")
	query.Set("selling_partner_id", "SELLER-001")

	req, _ := http.NewRequest("POST", s.BaseURL+"/functions/v1/amazon-auth?"+query.Encode(), nil)
	req.Header.Set("Authorization", "Bearer "+s.bearerToken("user-mismatch"))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var count int
	s.Require().NoError(s.Postgres.DB.QueryRow(
		"SELECT COUNT(*) FROM amazon_accounts WHERE user_id = $1", "user-mismatch",
	).Scan(&count))
	s.Zero(count, "mismatched state must not create an account")
}

func (s *Suite) TestSyncOrders_CompleteFlow() {
	userID := "user-sync"
	s.completeCallback(userID, "SELLER-002")

	resp := s.syncOrders(userID)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var syncResp dto.SyncOrdersResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&syncResp))
	s.True(syncResp.Success)
	s.Require().Len(syncResp.Orders, 1)
	s.Equal("901-0000001-0000001", syncResp.Orders[0].AmazonOrderID)
	s.Equal(19.99, syncResp.Orders[0].OrderTotalAmount)

	// Re-running the sync must not duplicate rows.
	resp2 := s.syncOrders(userID)
	defer resp2.Body.Close()
	s.Equal(http.StatusOK, resp2.StatusCode)

	var count int
	s.Require().NoError(s.Postgres.DB.QueryRow(
		"SELECT COUNT(*) FROM amazon_orders WHERE user_id = $1", userID,
	).Scan(&count))
	s.Equal(1, count)
}

func (s *Suite) TestSyncOrders_NoConnectedAccount() {
	resp := s.syncOrders("user-without-account")
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) completeCallback(userID, sellerID string) {
	query := url.Values{}
	query.Set("action", "callback")
	query.Set("spapi_oauth_code", "CODE-123")
	query.Set("state", userID)
	query.Set("selling_partner_id", sellerID)

	req, _ := http.NewRequest("POST", s.BaseURL+"/functions/v1/amazon-auth?"+query.Encode(), nil)
	req.Header.Set("Authorization", "Bearer "+s.bearerToken(userID))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode, "callback should connect the account")

	var cbResp dto.CallbackResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&cbResp))
	s.Require().True(cbResp.Success)
	s.Require().Equal(sellerID, cbResp.SellerID)
}

func (s *Suite) syncOrders(userID string) *http.Response {
	req, _ := http.NewRequest("POST", fmt.Sprintf("%s/functions/v1/amazon-data?action=orders", s.BaseURL), nil)
	req.Header.Set("Authorization", "Bearer "+s.bearerToken(userID))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}
