package domain

import "time"

// ImportCredentials holds the retailer login a user submitted for one import
// request. It is never persisted and never logged; callers must Scrub it
// before their request scope ends.
type ImportCredentials struct {
	Retailer string
	Username string
	Password string
}

// Scrub overwrites the secret fields so the credentials cannot outlive the
// import attempt they were captured for.
func (c *ImportCredentials) Scrub() {
	c.Username = ""
	c.Password = ""
}

// RawOrderRecord is the unparsed result of scraping one order element from a
// retailer's order-history DOM. It is consumed by NormalizeOrders immediately
// and never stored.
type RawOrderRecord struct {
	ProductName   string
	PriceText     string
	OrderDateText string
	ImageURL      string
	OrderID       string
}

// ScrapedProduct is the canonical output of one import run.
//
// Invariants: Price is finite and non-negative (malformed input parses to 0),
// PurchaseDate is always a valid RFC 3339 string (malformed input falls back
// to the current instant), and ExternalID is unique within one import batch.
type ScrapedProduct struct {
	ExternalID   string  `json:"external_id" bson:"external_id"`
	Name         string  `json:"name" bson:"name"`
	Price        float64 `json:"price" bson:"price"`
	PurchaseDate string  `json:"purchase_date" bson:"purchase_date"`
	ImageURL     string  `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Retailer     string  `json:"retailer" bson:"retailer"`
	Category     string  `json:"category,omitempty" bson:"category,omitempty"`
}

// ImportedProductRef is the non-sensitive slice of a persisted product echoed
// back to the API caller.
type ImportedProductRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Retailer string `json:"retailer"`
}

// Connection status values for UserConnection.
const (
	ConnectionStatusConnected = "connected"
	ConnectionStatusError     = "error"
)

// UserConnection tracks the state of one user's link to one retailer. It is
// upserted after every import attempt, whether or not any products were
// produced.
type UserConnection struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Retailer     string    `json:"retailer" bson:"retailer"`
	Status       string    `json:"status" bson:"status"`
	LastSyncedAt time.Time `json:"last_synced_at" bson:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
