package ports

import (
	"context"
	"time"
)

// Element is a scoped handle on one scraped DOM element, typically one order
// row. Lookups are relative to the element and never wait: a missing
// descendant reports ok=false so callers can walk a selector fallback chain.
type Element interface {
	// Text returns the trimmed text of the first descendant matching the
	// selector.
	Text(selector string) (string, bool)

	// Attribute returns the named attribute of the first descendant matching
	// the selector.
	Attribute(selector, attr string) (string, bool)
}

// BrowserPage is the narrow capability set the retailer drivers need from a
// browser automation backend. Keeping drivers behind this interface makes the
// login and extraction logic testable against a fake page without a real
// browser.
type BrowserPage interface {
	// Navigate loads the URL and waits for load plus a short network-idle
	// window, bounded by timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// WaitNavigation blocks until an in-flight navigation (for example one
	// triggered by a form submit) settles, bounded by timeout.
	WaitNavigation(ctx context.Context, timeout time.Duration) error

	// CurrentURL returns the page's current location.
	CurrentURL(ctx context.Context) (string, error)

	// WaitVisible blocks until an element matching the selector is visible,
	// bounded by timeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Fill types the value into the first element matching the selector.
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error

	// Text returns the trimmed text of the first element matching the
	// selector.
	Text(ctx context.Context, selector string) (string, error)

	// BodyText returns the visible text of the whole page body.
	BodyText(ctx context.Context) (string, error)

	// Elements returns handles for every element currently matching the
	// selector, without waiting.
	Elements(ctx context.Context, selector string) ([]Element, error)

	// Close tears down the page and its browser process. It is safe on every
	// exit path: close failures are logged by the implementation and never
	// returned as fatal.
	Close() error
}

// BrowserProvider acquires one isolated browser context per import request.
type BrowserProvider interface {
	Acquire(ctx context.Context) (BrowserPage, error)
}
