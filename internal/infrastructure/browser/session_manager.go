// Package browser owns headless-browser process lifecycle. One isolated
// browser process and page per import request; all rod usage stays behind
// ports.BrowserPage so driver logic never sees automation-library types.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coverly-core-importer-layer/internal/ports"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// networkIdleWindow is the quiet period used as the page-load completion
// heuristic after the load event.
const networkIdleWindow = 500 * time.Millisecond

// Config holds browser launch configuration.
type Config struct {
	// Bin is the browser binary path; empty lets the launcher resolve one.
	Bin            string
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// DefaultConfig returns the launch settings used in the hosting environment:
// headless, sandbox off, a realistic desktop user agent, and a fixed
// viewport.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1366,
		ViewportHeight: 768,
	}
}

// SessionManager launches one browser process per Acquire call.
type SessionManager struct {
	cfg    Config
	logger zerolog.Logger
}

// NewSessionManager creates a session manager.
func NewSessionManager(cfg Config, logger zerolog.Logger) *SessionManager {
	return &SessionManager{cfg: cfg, logger: logger}
}

// Acquire launches a headless browser with sandboxing disabled and image
// loading off, opens a page, and applies the user agent and viewport. A
// failed launch is fatal to the import request; there is no retry here.
func (m *SessionManager) Acquire(ctx context.Context) (ports.BrowserPage, error) {
	l := launcher.New().
		Headless(m.cfg.Headless).
		NoSandbox(true).
		Set(flags.Flag("blink-settings"), "imagesEnabled=false")
	if m.cfg.Bin != "" {
		l = l.Bin(m.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("create page: %w", err)
	}

	if m.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: m.cfg.UserAgent}); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to set viewport")
	}

	return &session{page: page, browser: b, launcher: l, logger: m.logger}, nil
}

// session adapts one rod page to ports.BrowserPage.
type session struct {
	page     *rod.Page
	browser  *rod.Browser
	launcher *launcher.Launcher
	logger   zerolog.Logger
}

func (s *session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := s.page.Context(ctx).Timeout(timeout)
	wait := p.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	wait()
	return nil
}

func (s *session) WaitNavigation(ctx context.Context, timeout time.Duration) error {
	p := s.page.Context(ctx).Timeout(timeout)
	p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)()
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait navigation: %w", err)
	}
	return nil
}

func (s *session) CurrentURL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (s *session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %s: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("wait visible %s: %w", selector, err)
	}
	return nil
}

func (s *session) Fill(ctx context.Context, selector, value string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %s: %w", selector, err)
	}
	// Select existing content so Input replaces instead of appending.
	if err := el.SelectAllText(); err != nil {
		s.logger.Debug().Err(err).Str("selector", selector).Msg("Select existing text failed")
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input %s: %w", selector, err)
	}
	return nil
}

func (s *session) Click(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (s *session) Text(ctx context.Context, selector string) (string, error) {
	el, err := s.page.Context(ctx).Timeout(time.Second).Element(selector)
	if err != nil {
		return "", fmt.Errorf("element %s: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("text %s: %w", selector, err)
	}
	return strings.TrimSpace(text), nil
}

func (s *session) BodyText(ctx context.Context) (string, error) {
	return s.Text(ctx, "body")
}

func (s *session) Elements(ctx context.Context, selector string) ([]ports.Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("elements %s: %w", selector, err)
	}
	out := make([]ports.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

// Close tears down page, browser, then the launcher's temp state. Failures
// are logged and swallowed so cleanup can never mask the import's own error.
func (s *session) Close() error {
	if err := s.page.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close page")
	}
	if err := s.browser.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close browser")
	}
	s.launcher.Cleanup()
	return nil
}

// element adapts a rod element to ports.Element. Lookups use Has, which does
// not retry, so a missing descendant reports false immediately.
type element struct {
	el *rod.Element
}

func (e *element) Text(selector string) (string, bool) {
	has, child, err := e.el.Has(selector)
	if err != nil || !has {
		return "", false
	}
	text, err := child.Text()
	if err != nil {
		return "", false
	}
	return text, true
}

func (e *element) Attribute(selector, attr string) (string, bool) {
	has, child, err := e.el.Has(selector)
	if err != nil || !has {
		return "", false
	}
	val, err := child.Attribute(attr)
	if err != nil || val == nil {
		return "", false
	}
	return *val, true
}
