// Package cdpdriver drives chrome through chromedp
package cdpdriver

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/osfpages/pagek"
)

// ErrNoTab when the current tab was closed and nothing was switched to
var ErrNoTab = errors.New("no current tab")

// Driver is a chromedp browser. The first tab context owns the browser process,
// later tabs are attached to as they are switched to.
type Driver struct {
	mu         sync.Mutex
	browserCtx context.Context
	tabs       map[target.ID]context.Context
	current    context.Context
	cancels    []context.CancelFunc
}

// Options for an exec allocator built from cfg
func Options(cfg *pagek.Config) []chromedp.ExecAllocatorOption {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	options = append(options,
		chromedp.IgnoreCertErrors,
		chromedp.NoSandbox,
		chromedp.WindowSize(1200, 900),
	)
	if !cfg.Headless {
		options = append(options, chromedp.Flag("headless", false), chromedp.Flag("hide-scrollbars", false))
	}
	if cfg.BrowserPath != "" {
		options = append(options, chromedp.ExecPath(cfg.BrowserPath))
	}
	return options
}

// Launch a browser configured by cfg
func Launch(ctx context.Context, cfg *pagek.Config) (*Driver, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), Options(cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Printf),
		chromedp.WithErrorf(func(format string, v ...interface{}) {
			log.Warn().Msgf(format, v...)
		}),
	)

	// starts the browser, the context must not carry a deadline or the
	// browser exits with it
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, errors.Wrap(err, "starting chrome")
	}

	d := &Driver{
		browserCtx: browserCtx,
		tabs:       make(map[target.ID]context.Context),
		current:    browserCtx,
		cancels:    []context.CancelFunc{browserCancel, allocCancel},
	}
	if c := chromedp.FromContext(browserCtx); c != nil && c.Target != nil {
		d.tabs[c.Target.TargetID] = browserCtx
	}
	log.Ctx(ctx).Debug().Msg("chrome started")
	return d, nil
}

func (d *Driver) tab() (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return nil, ErrNoTab
	}
	return d.current, nil
}

// run actions in the current tab, bounded by ctx
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	tabCtx, err := d.tab()
	if err != nil {
		return err
	}
	return runIn(ctx, tabCtx, actions...)
}

func runIn(ctx, tabCtx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return pagek.MapStale(chromedp.Run(runCtx, actions...))
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *Driver) Reload(ctx context.Context) error {
	return d.run(ctx, chromedp.Reload())
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := d.run(ctx, chromedp.Location(&url))
	return url, err
}

// FindElements in the current document without waiting. css capable strategies
// run as a query, the rest as an xpath search.
func (d *Driver) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	tabCtx, err := d.tab()
	if err != nil {
		return nil, err
	}
	if css, ok := by.CSS(selector); ok {
		return find(ctx, tabCtx, css, chromedp.ByQueryAll)
	}
	if xpath, ok := by.XPath(selector); ok {
		return find(ctx, tabCtx, xpath, chromedp.BySearch)
	}
	return nil, &pagek.UnsupportedStrategyErr{By: by}
}

func find(ctx, tabCtx context.Context, sel string, opts ...chromedp.QueryOption) ([]pagek.Node, error) {
	var found []*cdp.Node
	opts = append(opts, chromedp.AtLeast(0))
	if err := runIn(ctx, tabCtx, chromedp.Nodes(sel, &found, opts...)); err != nil {
		return nil, err
	}
	nodes := make([]pagek.Node, 0, len(found))
	for _, n := range found {
		nodes = append(nodes, &Node{tabCtx: tabCtx, n: n})
	}
	return nodes, nil
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	targets, err := chromedp.Targets(d.browserCtx)
	if err != nil {
		return nil, err
	}

	handles := make([]string, 0, len(targets))
	for _, t := range targets {
		if t.Type == "page" {
			handles = append(handles, string(t.TargetID))
		}
	}
	return handles, nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	tabCtx, err := d.tab()
	if err != nil {
		return "", err
	}
	c := chromedp.FromContext(tabCtx)
	if c == nil || c.Target == nil {
		return "", ErrNoTab
	}
	return string(c.Target.TargetID), nil
}

// SwitchWindow attaches to handle the first time it is switched to
func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	id := target.ID(handle)

	d.mu.Lock()
	tabCtx, ok := d.tabs[id]
	if !ok {
		var cancel context.CancelFunc
		tabCtx, cancel = chromedp.NewContext(d.browserCtx, chromedp.WithTargetID(id))
		d.tabs[id] = tabCtx
		d.cancels = append([]context.CancelFunc{cancel}, d.cancels...)
	}
	d.current = tabCtx
	d.mu.Unlock()

	// attaches
	return runIn(ctx, tabCtx)
}

// CloseWindow closes the current tab and leaves no tab current
func (d *Driver) CloseWindow(ctx context.Context) error {
	tabCtx, err := d.tab()
	if err != nil {
		return err
	}
	if err := runIn(ctx, tabCtx, page.Close()); err != nil {
		return err
	}

	d.mu.Lock()
	for id, c := range d.tabs {
		if c == tabCtx {
			delete(d.tabs, id)
		}
	}
	d.current = nil
	d.mu.Unlock()
	return nil
}

// Close the browser
func (d *Driver) Close() error {
	d.mu.Lock()
	cancels := d.cancels
	d.cancels = nil
	d.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return nil
}
