package domain

import "time"

// AmazonOrder is a denormalized snapshot of a Selling Partner order,
// overwritten on every sync cycle. AmazonOrderID is unique across rows.
type AmazonOrder struct {
	ID                     string     `json:"id" db:"id"`
	UserID                 string     `json:"user_id" db:"user_id"`
	AmazonAccountID        string     `json:"amazon_account_id" db:"amazon_account_id"`
	AmazonOrderID          string     `json:"amazon_order_id" db:"amazon_order_id"`
	MarketplaceID          string     `json:"marketplace_id" db:"marketplace_id"`
	OrderStatus            string     `json:"order_status" db:"order_status"`
	PurchaseDate           *time.Time `json:"purchase_date" db:"purchase_date"`
	LastUpdateDate         *time.Time `json:"last_update_date" db:"last_update_date"`
	OrderType              string     `json:"order_type" db:"order_type"`
	FulfillmentChannel     string     `json:"fulfillment_channel" db:"fulfillment_channel"`
	ShipServiceLevel       string     `json:"ship_service_level" db:"ship_service_level"`
	OrderTotalAmount       float64    `json:"order_total_amount" db:"order_total_amount"`
	OrderTotalCurrency     string     `json:"order_total_currency" db:"order_total_currency"`
	NumberOfItemsShipped   int        `json:"number_of_items_shipped" db:"number_of_items_shipped"`
	NumberOfItemsUnshipped int        `json:"number_of_items_unshipped" db:"number_of_items_unshipped"`
	EarliestShipDate       *time.Time `json:"earliest_ship_date" db:"earliest_ship_date"`
	LatestShipDate         *time.Time `json:"latest_ship_date" db:"latest_ship_date"`
	BuyerEmail             string     `json:"buyer_email" db:"buyer_email"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}
