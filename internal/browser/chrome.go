package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// webdriverMaskScript hides the navigator.webdriver flag that automation
// engines set. The source site inspects it as part of its bot detection.
const webdriverMaskScript = "Object.defineProperty(navigator, 'webdriver', {get: () => undefined})"

// Chrome is a Browser backed by a headless Chrome instance driven over
// the Chrome DevTools Protocol via chromedp.
//
// The session is created once and reused for every unit in a campaign:
// starting Chrome is expensive, and reusing the session keeps cookies
// consistent across pages, which looks less like automation.
type Chrome struct {
	// ctx is the chromedp browser context all actions run against.
	ctx context.Context

	// cancels tear down the browser context and the exec allocator,
	// in that order.
	cancels []context.CancelFunc

	// closeOnce guards Close so double-closing is harmless.
	closeOnce sync.Once
}

// chromeConfig collects construction options.
type chromeConfig struct {
	userAgent string
	headless  bool
}

// ChromeOption configures a Chrome session.
type ChromeOption func(*chromeConfig)

// WithUserAgent sets the User-Agent for all page loads.
func WithUserAgent(ua string) ChromeOption {
	return func(c *chromeConfig) {
		c.userAgent = ua
	}
}

// WithHeadless controls headless mode. Headless is the default; a
// visible window is only useful when debugging selector changes.
func WithHeadless(headless bool) ChromeOption {
	return func(c *chromeConfig) {
		c.headless = headless
	}
}

// NewChrome starts a Chrome instance and returns a session ready for
// navigation. The caller owns the session and must Close it.
func NewChrome(opts ...ChromeOption) (*Chrome, error) {
	cfg := &chromeConfig{headless: true}
	for _, opt := range opts {
		opt(cfg)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.headless),
		chromedp.WindowSize(1920, 1080),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		// Chrome advertises automation via this Blink feature unless
		// it is disabled; the source site checks for it.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if cfg.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(cfg.userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
	}

	// Starting the browser and registering the webdriver mask must
	// happen before the first navigation so every document sees the
	// masked property.
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(webdriverMaskScript).Do(ctx)
		return err
	}))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return c, nil
}

// Navigate implements Browser.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible implements Browser.
func (c *Chrome) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := c.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %s", ErrWaitTimeout, selector, timeout)
		}
		return err
	}
	return nil
}

// OuterHTML implements Browser. It evaluates a querySelector expression
// rather than using chromedp's node queries because those block until
// the selector matches; a missing pagination control must be observable
// immediately.
func (c *Chrome) OuterHTML(ctx context.Context, selector string) (string, error) {
	expr := fmt.Sprintf(
		"(() => { const el = document.querySelector(%s); return el ? el.outerHTML : \"\"; })()",
		strconv.Quote(selector),
	)

	var html string
	if err := c.run(ctx, chromedp.Evaluate(expr, &html)); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", selector, err)
	}
	if html == "" {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return html, nil
}

// Click implements Browser.
func (c *Chrome) Click(ctx context.Context, selector string) error {
	if err := c.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Close implements Browser. It shuts down the browser process and the
// allocator; subsequent calls are no-ops.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		for _, cancel := range c.cancels {
			cancel()
		}
	})
	return nil
}

// run executes chromedp actions against the session context while
// honoring the caller's context for cancellation and deadlines.
// chromedp actions must run on the browser context, so cancellation is
// bridged rather than passed through.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		runCtx, dcancel = context.WithDeadline(runCtx, deadline)
		defer dcancel()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		// Surface the caller's cancellation/deadline rather than the
		// derived context's.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}
