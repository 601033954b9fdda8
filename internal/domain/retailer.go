package domain

import "strings"

// Retailer identifiers accepted by the import API.
const (
	RetailerWalmart = "walmart"
	RetailerAmazon  = "amazon"
	RetailerTarget  = "target"
	RetailerBestBuy = "bestbuy"
)

// knownRetailers is the fixed set the API validates against. Retailers in
// this set without a registered driver surface as not-implemented rather
// than unknown.
var knownRetailers = map[string]struct{}{
	RetailerWalmart: {},
	RetailerAmazon:  {},
	RetailerTarget:  {},
	RetailerBestBuy: {},
}

// NormalizeRetailer canonicalizes a user-supplied retailer name.
func NormalizeRetailer(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsKnownRetailer reports whether the name belongs to the fixed retailer set.
func IsKnownRetailer(name string) bool {
	_, ok := knownRetailers[NormalizeRetailer(name)]
	return ok
}

// KnownRetailers returns the fixed retailer set in a stable order, for error
// messages listing what the API accepts.
func KnownRetailers() []string {
	return []string{RetailerWalmart, RetailerAmazon, RetailerTarget, RetailerBestBuy}
}
