// Package scraper contains the retailer drivers: login state machines and
// order-history extraction over the ports.BrowserPage capability set.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coverly-core-importer-layer/internal/ports"
)

// SelectorChain is an ordered list of candidate locators for one logical
// field. Retailers ship several markup variants of the same page; chains keep
// the "try A, then B, then C" pattern as data instead of nested error
// handling, so supporting a new variant is a data change.
type SelectorChain []string

// fillFirst types value into the first candidate that becomes visible within
// the budget. The budget is shared across the whole chain, matching the
// single per-field timeout of the login flow.
func fillFirst(ctx context.Context, page ports.BrowserPage, chain SelectorChain, value string, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	for _, sel := range chain {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		per := remaining / time.Duration(len(chain))
		if per < 500*time.Millisecond {
			per = remaining
		}
		if err := page.WaitVisible(ctx, sel, per); err != nil {
			continue
		}
		if err := page.Fill(ctx, sel, value); err != nil {
			continue
		}
		return nil
	}
	return fmt.Errorf("no candidate resolved from %v", chain)
}

// clickFirst clicks the first candidate that resolves within the budget.
func clickFirst(ctx context.Context, page ports.BrowserPage, chain SelectorChain, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	for _, sel := range chain {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		per := remaining / time.Duration(len(chain))
		if per < 500*time.Millisecond {
			per = remaining
		}
		if err := page.WaitVisible(ctx, sel, per); err != nil {
			continue
		}
		if err := page.Click(ctx, sel); err != nil {
			continue
		}
		return nil
	}
	return fmt.Errorf("no candidate resolved from %v", chain)
}

// waitAnyVisible waits for any candidate to become visible and returns it.
// The false return means none appeared within the budget, which callers may
// treat as "nothing to scrape" rather than a failure.
func waitAnyVisible(ctx context.Context, page ports.BrowserPage, chain SelectorChain, budget time.Duration) (string, bool) {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		for _, sel := range chain {
			if err := page.WaitVisible(ctx, sel, 500*time.Millisecond); err == nil {
				return sel, true
			}
			if ctx.Err() != nil {
				return "", false
			}
		}
	}
	return "", false
}

// textFirst walks a chain against one scraped element and returns the first
// non-empty text.
func textFirst(el ports.Element, chain SelectorChain) (string, bool) {
	for _, sel := range chain {
		if text, ok := el.Text(sel); ok {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

// attrFirst walks a chain against one scraped element and returns the first
// non-empty attribute value.
func attrFirst(el ports.Element, chain SelectorChain, attr string) (string, bool) {
	for _, sel := range chain {
		if val, ok := el.Attribute(sel, attr); ok {
			if trimmed := strings.TrimSpace(val); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

// pageTextFirst returns the first non-empty text among the chain's candidates
// resolved against the whole page, without waiting.
func pageTextFirst(ctx context.Context, page ports.BrowserPage, chain SelectorChain) (string, bool) {
	for _, sel := range chain {
		text, err := page.Text(ctx, sel)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}
