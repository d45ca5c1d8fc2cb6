package dto

import "github.com/akozyrev/amazon-connect/internal/domain"

// CallbackRequest carries the parameters Amazon appends to the OAuth
// redirect. Values may arrive as query parameters or as form fields.
type CallbackRequest struct {
	Code             string `form:"spapi_oauth_code" json:"spapi_oauth_code"`
	State            string `form:"state" json:"state"`
	SellingPartnerID string `form:"selling_partner_id" json:"selling_partner_id"`
}

// AuthURLResponse is returned by the start action of the OAuth flow.
type AuthURLResponse struct {
	AuthURL string `json:"authUrl"`
}

// CallbackResponse is returned once the authorization code has been
// exchanged and the account persisted.
type CallbackResponse struct {
	Success  bool   `json:"success"`
	SellerID string `json:"seller_id"`
}

// SyncOrdersResponse is returned by the orders action.
type SyncOrdersResponse struct {
	Success bool                 `json:"success"`
	Orders  []domain.AmazonOrder `json:"orders"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
