package ports

import (
	"context"

	"coverly-core-importer-layer/internal/domain"
)

// RetailerDriver drives one retailer's web storefront: authenticate against
// its login form and scrape the order-history view. Implementations are
// single-shot per page; they never retry.
type RetailerDriver interface {
	// Retailer returns the identifier this driver serves.
	Retailer() string

	// Login authenticates and lands on the order-history page, or fails with
	// one of the domain login errors (ErrInvalidCredentials, ErrLoginFailed,
	// ErrChallengeRequired, ErrFieldNotFound).
	Login(ctx context.Context, page BrowserPage, username, password string) error

	// FetchOrders scrapes the order-history DOM into raw records. A missing
	// order list is not an error: it returns an empty slice.
	FetchOrders(ctx context.Context, page BrowserPage) ([]domain.RawOrderRecord, error)
}

// DriverRegistry resolves a retailer name to its driver.
type DriverRegistry interface {
	// Resolve returns the driver for a retailer, domain.ErrUnsupportedRetailer
	// for names outside the known set, or domain.ErrRetailerNotImplemented for
	// known retailers without a driver.
	Resolve(retailer string) (RetailerDriver, error)
}
