// Package pwdriver drives browsers through playwright
package pwdriver

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/osfpages/pagek"
)

// revive:exported
var (
	ErrNoPage        = errors.New("no current page")
	ErrUnknownHandle = errors.New("unknown window handle")
)

// Driver is a playwright browser context. Every page it opens gets a window
// handle, including popups opened by the site.
type Driver struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	handles map[string]playwright.Page
	order   []string
	current string
}

// BrowserType playwright launches for a driver name
func BrowserType(pw *playwright.Playwright, name string) playwright.BrowserType {
	switch name {
	case "firefox":
		return pw.Firefox
	case "webkit":
		return pw.WebKit
	}
	return pw.Chromium
}

// Launch playwright and a browser for cfg. cfg.BrowserPath overrides the
// bundled binary, the "-firefox" and "-webkit" suffixes on the playwright
// driver name pick another engine.
func Launch(ctx context.Context, cfg *pagek.Config, engine string) (*Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "starting playwright")
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     []string{"--disable-dev-shm-usage", "--no-sandbox"},
	}
	if engine != "" && engine != "chromium" {
		opts.Args = nil
	}
	if cfg.BrowserPath != "" {
		opts.ExecutablePath = playwright.String(cfg.BrowserPath)
	}
	if cfg.DownloadDir != "" {
		opts.DownloadsPath = playwright.String(cfg.DownloadDir)
	}

	browser, err := BrowserType(pw, engine).Launch(opts)
	if err != nil {
		pw.Stop()
		return nil, errors.Wrap(err, "launching browser")
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: 1200, Height: 900},
		IgnoreHttpsErrors: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, errors.Wrap(err, "creating browser context")
	}
	bctx.SetDefaultTimeout(float64(cfg.Default() / time.Millisecond))
	bctx.SetDefaultNavigationTimeout(float64(cfg.Long() / time.Millisecond))

	d := &Driver{
		pw:      pw,
		browser: browser,
		bctx:    bctx,
		handles: make(map[string]playwright.Page),
	}
	bctx.OnPage(func(p playwright.Page) {
		handle := d.track(p)
		log.Debug().Str("handle", handle).Msg("page opened")
	})

	first, err := bctx.NewPage()
	if err != nil {
		d.Close()
		return nil, errors.Wrap(err, "opening page")
	}
	handle := d.track(first)
	d.mu.Lock()
	d.current = handle
	d.mu.Unlock()
	log.Ctx(ctx).Debug().Str("engine", engine).Msg("playwright browser started")
	return d, nil
}

func (d *Driver) track(p playwright.Page) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if h := d.handleOf(p); h != "" {
		return h
	}
	return d.trackLocked(p)
}

func (d *Driver) trackLocked(p playwright.Page) string {
	handle := uuid.NewV4().String()
	d.handles[handle] = p
	d.order = append(d.order, handle)
	p.OnClose(func(playwright.Page) {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.forget(handle)
	})
	return handle
}

func (d *Driver) handleOf(p playwright.Page) string {
	for h, hp := range d.handles {
		if hp == p {
			return h
		}
	}
	return ""
}

func (d *Driver) forget(handle string) {
	delete(d.handles, handle)
	for i, h := range d.order {
		if h == handle {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	if d.current == handle {
		d.current = ""
	}
}

func (d *Driver) page() (playwright.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.handles[d.current]
	if !ok {
		return nil, ErrNoPage
	}
	return p, nil
}

func timeoutMillis(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	remaining := time.Until(deadline)
	if remaining < time.Millisecond {
		remaining = time.Millisecond
	}
	return playwright.Float(float64(remaining / time.Millisecond))
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	_, err = p.Goto(url, playwright.PageGotoOptions{
		Timeout:   timeoutMillis(ctx),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return err
}

func (d *Driver) Reload(ctx context.Context) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	_, err = p.Reload(playwright.PageReloadOptions{Timeout: timeoutMillis(ctx)})
	return err
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	p, err := d.page()
	if err != nil {
		return "", err
	}
	return p.URL(), nil
}

func (d *Driver) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	p, err := d.page()
	if err != nil {
		return nil, err
	}
	query, err := Selector(by, selector)
	if err != nil {
		return nil, err
	}
	found, err := p.QuerySelectorAll(query)
	return nodes(found, err)
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.order...), nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == "" {
		return "", ErrNoPage
	}
	return d.current, nil
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	d.mu.Lock()
	p, ok := d.handles[handle]
	if ok {
		d.current = handle
	}
	d.mu.Unlock()
	if !ok {
		return errors.Wrap(ErrUnknownHandle, handle)
	}
	return p.BringToFront()
}

func (d *Driver) CloseWindow(ctx context.Context) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.forget(d.current)
	d.mu.Unlock()
	return p.Close()
}

// Close the browser and stop playwright
func (d *Driver) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
	}
	if stopErr := d.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}
