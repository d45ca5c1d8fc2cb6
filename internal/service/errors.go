package service

import "errors"

// Error kinds surfaced by the Amazon connector services. Handlers map
// these onto HTTP statuses; the underlying partner error stays joined in
// the chain for logging.
var (
	// ErrClientNotConfigured is returned when the LWA client id is missing
	ErrClientNotConfigured = errors.New("amazon client id is not configured")

	// ErrInvalidState is returned when the OAuth state parameter does not
	// match the authenticated caller (possible CSRF or stale flow)
	ErrInvalidState = errors.New("invalid state parameter")

	// ErrMissingParameter is returned when the authorization code or the
	// selling partner id is absent from the callback
	ErrMissingParameter = errors.New("missing authorization code or seller id")

	// ErrTokenExchangeFailed is returned when the partner rejects the
	// authorization-code exchange
	ErrTokenExchangeFailed = errors.New("failed to exchange authorization code for tokens")

	// ErrRefreshFailed is returned when the partner rejects a token refresh
	ErrRefreshFailed = errors.New("failed to refresh access token")

	// ErrPartnerAPI is returned when a signed SP-API call is rejected
	ErrPartnerAPI = errors.New("amazon api error")

	// ErrPersistenceFailed is returned when a datastore write did not complete
	ErrPersistenceFailed = errors.New("failed to persist amazon data")

	// ErrNoActiveAccount is returned when a sync is requested for a user
	// without a connected, active Amazon account
	ErrNoActiveAccount = errors.New("no active amazon account found")
)
