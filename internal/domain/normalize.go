package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Sentinel defaults substituted when a scraped field is missing or unusable.
const (
	DefaultProductName = "Unknown Product"
	syntheticOrderID   = "noorder"
)

// dateLayouts are tried in order when parsing a scraped order date. Retailer
// order pages mix numeric US dates with spelled-out month forms.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"2006-01-02",
	time.RFC3339,
}

// ParsePrice extracts a non-negative finite price from scraped text. Every
// character that is not a digit or decimal point is stripped before parsing;
// any parse failure yields 0.
func ParsePrice(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// FormatDate parses a scraped order date into RFC 3339. It is total: any
// input it cannot parse, including the empty string, falls back to the
// current instant rather than failing.
func FormatDate(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// SyntheticExternalID composes a batch-unique external ID from the retailer,
// the scraped order ID (or a fallback when the site supplied none), and the
// record's position in the batch. The index suffix guarantees uniqueness even
// when every record shares one order ID.
func SyntheticExternalID(retailer, orderID string, index int) string {
	if strings.TrimSpace(orderID) == "" {
		orderID = syntheticOrderID
	}
	return fmt.Sprintf("%s-%s-%d", retailer, orderID, index)
}

// NormalizeOrders converts raw scrape output into canonical products. Pure
// data shaping, no I/O: scrape order is preserved, no sorting and no
// deduplication happen here.
func NormalizeOrders(retailer string, raw []RawOrderRecord) []ScrapedProduct {
	products := make([]ScrapedProduct, 0, len(raw))
	for i, rec := range raw {
		name := strings.TrimSpace(rec.ProductName)
		if name == "" {
			name = DefaultProductName
		}
		products = append(products, ScrapedProduct{
			ExternalID:   SyntheticExternalID(retailer, rec.OrderID, i),
			Name:         name,
			Price:        ParsePrice(rec.PriceText),
			PurchaseDate: FormatDate(rec.OrderDateText),
			ImageURL:     rec.ImageURL,
			Retailer:     retailer,
		})
	}
	return products
}
