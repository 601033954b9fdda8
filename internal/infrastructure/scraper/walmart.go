package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/ports"

	"github.com/rs/zerolog"
)

// Per-step budgets. Each is a hard upper bound; exceeding one surfaces as a
// typed failure, never a silent hang.
const (
	navTimeout       = 30 * time.Second
	fieldTimeout     = 10 * time.Second
	orderListTimeout = 15 * time.Second
	defaultSettle    = 2 * time.Second
	maxLoadMorePages = 10
)

// Walmart login and order-history locations.
const (
	walmartLoginURL  = "https://www.walmart.com/account/login"
	walmartOrdersURL = "https://www.walmart.com/orders"
)

// challengeMarkers are page-text fragments that indicate an interactive
// verification step automated login cannot satisfy.
var challengeMarkers = []string{
	"verification code",
	"two-factor",
	"captcha",
	"security check",
}

// loginPathFragments mark URLs still on the login flow after submit.
var loginPathFragments = []string{"/account/login", "/signin", "/sign-in"}

// Walmart selector chains, ordered by how current the markup variant is.
var (
	walmartUsernameSelectors = SelectorChain{
		`input[name="Email Address"]`,
		`input#loginId`,
		`input[type="email"]`,
		`input[autocomplete="username"]`,
	}
	walmartPasswordSelectors = SelectorChain{
		`input[name="Password"]`,
		`input#password`,
		`input[type="password"]`,
	}
	walmartSubmitSelectors = SelectorChain{
		`button[data-automation-id="signin-submit-btn"]`,
		`button[type="submit"]`,
	}
	walmartLoginErrorSelectors = SelectorChain{
		`[data-automation-id="error-message"]`,
		`.error-message`,
		`[role="alert"]`,
	}
	walmartOrderListSelectors = SelectorChain{
		`[data-testid="orders-list"]`,
		`[data-automation-id="order-history"]`,
		`.order-history-list`,
	}
	walmartOrderItemSelectors = SelectorChain{
		`[data-testid="order-card"]`,
		`[data-automation-id="order-group"]`,
		`.order-card`,
	}
	walmartLoadMoreSelectors = SelectorChain{
		`button[data-automation-id="load-more-orders"]`,
		`button[aria-label="Load more orders"]`,
	}
	walmartItemNameSelectors = SelectorChain{
		`[data-testid="productName"]`,
		`[data-automation-id="product-title"]`,
		`.product-name`,
	}
	walmartItemPriceSelectors = SelectorChain{
		`[data-testid="line-price"]`,
		`[data-automation-id="order-total"]`,
		`.price`,
	}
	walmartItemDateSelectors = SelectorChain{
		`[data-testid="order-date"]`,
		`[data-automation-id="order-date"]`,
		`.order-date`,
	}
	walmartItemImageSelectors = SelectorChain{
		`img[data-testid="productImage"]`,
		`img.product-image`,
		`img`,
	}
	walmartItemOrderIDSelectors = SelectorChain{
		`[data-testid="order-number"]`,
		`[data-automation-id="order-number"]`,
		`.order-number`,
	}
)

// WalmartDriver authenticates against walmart.com's login form and scrapes
// the order-history view. Single-shot per page; classification of failures
// follows the domain error taxonomy.
type WalmartDriver struct {
	logger     zerolog.Logger
	settle     time.Duration
	listBudget time.Duration
	maxPages   int
}

// NewWalmartDriver creates a Walmart retailer driver.
func NewWalmartDriver(logger zerolog.Logger) *WalmartDriver {
	return &WalmartDriver{
		logger:     logger,
		settle:     defaultSettle,
		listBudget: orderListTimeout,
		maxPages:   maxLoadMorePages,
	}
}

// Retailer returns the retailer identifier this driver serves.
func (d *WalmartDriver) Retailer() string {
	return domain.RetailerWalmart
}

// Login drives the login state machine: navigate the login form, fill
// credentials, submit, verify the outcome, then land on order history.
func (d *WalmartDriver) Login(ctx context.Context, page ports.BrowserPage, username, password string) error {
	if err := page.Navigate(ctx, walmartLoginURL, navTimeout); err != nil {
		return fmt.Errorf("%w: load login page: %v", domain.ErrLoginFailed, err)
	}

	if err := fillFirst(ctx, page, walmartUsernameSelectors, username, fieldTimeout); err != nil {
		return fmt.Errorf("%w: username field: %v", domain.ErrFieldNotFound, err)
	}
	if err := fillFirst(ctx, page, walmartPasswordSelectors, password, fieldTimeout); err != nil {
		return fmt.Errorf("%w: password field: %v", domain.ErrFieldNotFound, err)
	}

	if err := clickFirst(ctx, page, walmartSubmitSelectors, fieldTimeout); err != nil {
		return fmt.Errorf("%w: submit control: %v", domain.ErrLoginFailed, err)
	}
	if err := page.WaitNavigation(ctx, navTimeout); err != nil {
		return fmt.Errorf("%w: post-submit navigation: %v", domain.ErrLoginFailed, err)
	}

	if err := sleepCtx(ctx, d.settle); err != nil {
		return err
	}

	if err := d.verifyLogin(ctx, page); err != nil {
		return err
	}

	if err := page.Navigate(ctx, walmartOrdersURL, navTimeout); err != nil {
		return fmt.Errorf("load order history: %w", err)
	}
	return nil
}

// verifyLogin inspects the post-submit URL and page text and classifies the
// outcome. Order matters: an explicit credential rejection wins over a
// challenge marker, and a challenge wins over the generic failure.
func (d *WalmartDriver) verifyLogin(ctx context.Context, page ports.BrowserPage) error {
	current, err := page.CurrentURL(ctx)
	if err != nil {
		return fmt.Errorf("%w: read post-submit url: %v", domain.ErrLoginFailed, err)
	}

	stuckOnLogin := false
	for _, fragment := range loginPathFragments {
		if strings.Contains(current, fragment) {
			stuckOnLogin = true
			break
		}
	}

	if stuckOnLogin {
		if msg, ok := pageTextFirst(ctx, page, walmartLoginErrorSelectors); ok {
			lower := strings.ToLower(msg)
			if strings.Contains(lower, "password") || strings.Contains(lower, "email") {
				return domain.ErrInvalidCredentials
			}
		}
	}

	body, err := page.BodyText(ctx)
	if err == nil {
		lower := strings.ToLower(body)
		for _, marker := range challengeMarkers {
			if strings.Contains(lower, marker) {
				return domain.ErrChallengeRequired
			}
		}
	}

	if stuckOnLogin {
		return domain.ErrLoginFailed
	}
	return nil
}

// FetchOrders scrapes the order-history DOM into raw records, expanding
// "load more" pagination up to the page cap. A missing order list resolves
// to an empty slice: no orders is not an error.
func (d *WalmartDriver) FetchOrders(ctx context.Context, page ports.BrowserPage) ([]domain.RawOrderRecord, error) {
	if _, ok := waitAnyVisible(ctx, page, walmartOrderListSelectors, d.listBudget); !ok {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d.logger.Info().Str("retailer", d.Retailer()).Msg("No order list found, treating as zero orders")
		return []domain.RawOrderRecord{}, nil
	}

	var records []domain.RawOrderRecord
	seen := 0
	for round := 0; ; round++ {
		elements, err := d.orderElements(ctx, page)
		if err != nil {
			if len(records) > 0 {
				d.logger.Warn().Err(err).Msg("Order re-query failed, keeping partial results")
				return records, nil
			}
			return nil, fmt.Errorf("query order elements: %w", err)
		}
		for i := seen; i < len(elements); i++ {
			records = append(records, d.extractRecord(elements[i]))
		}
		seen = len(elements)

		if round >= d.maxPages {
			d.logger.Warn().Int("pages", round).Msg("Pagination cap reached, stopping expansion")
			break
		}
		if err := clickFirst(ctx, page, walmartLoadMoreSelectors, time.Second); err != nil {
			// No control or click failure both mean "no more pages".
			break
		}
		if err := sleepCtx(ctx, d.settle); err != nil {
			return records, nil
		}
	}
	return records, nil
}

// orderElements returns current order rows via the first item chain variant
// that yields anything.
func (d *WalmartDriver) orderElements(ctx context.Context, page ports.BrowserPage) ([]ports.Element, error) {
	var lastErr error
	for _, sel := range walmartOrderItemSelectors {
		elements, err := page.Elements(ctx, sel)
		if err != nil {
			lastErr = err
			continue
		}
		if len(elements) > 0 {
			return elements, nil
		}
	}
	return nil, lastErr
}

// extractRecord pulls one raw order record out of an order element. Every
// field independently falls back to a sentinel so one missing field never
// drops the whole record.
func (d *WalmartDriver) extractRecord(el ports.Element) domain.RawOrderRecord {
	rec := domain.RawOrderRecord{
		ProductName: domain.DefaultProductName,
		PriceText:   "$0.00",
	}
	if name, ok := textFirst(el, walmartItemNameSelectors); ok {
		rec.ProductName = name
	}
	if price, ok := textFirst(el, walmartItemPriceSelectors); ok {
		rec.PriceText = price
	}
	if date, ok := textFirst(el, walmartItemDateSelectors); ok {
		rec.OrderDateText = date
	}
	if img, ok := attrFirst(el, walmartItemImageSelectors, "src"); ok {
		rec.ImageURL = img
	}
	if orderID, ok := textFirst(el, walmartItemOrderIDSelectors); ok {
		rec.OrderID = strings.TrimPrefix(orderID, "Order #")
	}
	return rec
}

// sleepCtx is a context-aware settle delay.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
