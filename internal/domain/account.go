package domain

import "time"

// AmazonAccount represents a connected Selling Partner account for an
// application user. RefreshToken holds the encrypted-at-rest credential;
// only the service layer sees the plaintext.
type AmazonAccount struct {
	ID                   string     `json:"id" db:"id"`
	UserID               string     `json:"user_id" db:"user_id"`
	SellerID             string     `json:"seller_id" db:"seller_id"`
	RefreshToken         string     `json:"-" db:"refresh_token"`
	AccessToken          *string    `json:"-" db:"access_token"`
	AccessTokenExpiresAt *time.Time `json:"access_token_expires_at" db:"access_token_expires_at"`
	Region               string     `json:"region" db:"region"`
	MarketplaceIDs       []string   `json:"marketplace_ids" db:"marketplace_ids"`
	IsActive             bool       `json:"is_active" db:"is_active"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// HasValidAccessToken reports whether the stored access token can be used
// at the given instant without a refresh.
func (a *AmazonAccount) HasValidAccessToken(now time.Time) bool {
	return a.AccessToken != nil && *a.AccessToken != "" &&
		a.AccessTokenExpiresAt != nil && now.Before(*a.AccessTokenExpiresAt)
}
