package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/osfpages/pagek"
	"golang.org/x/net/html"
)

// revive:exported
var (
	ErrNoSuchPage   = errors.New("no page served at url")
	ErrNoSuchWindow = errors.New("no such window")
	ErrClosed       = errors.New("driver closed")
)

type window struct {
	handle string
	url    string
	doc    *goquery.Document
	closed bool
}

// Driver is an in memory browser. Pages are served from html strings, documents
// can be mutated immediately or on a timer, and nodes from a replaced document
// or removed from the tree report pagek.ErrStaleReference.
type Driver struct {
	mu      sync.Mutex
	pages   map[string]string
	windows []*window
	current *window
	timers  []*time.Timer
	onClick map[string]func(d *Driver)
	closed  bool

	navigations int
	reloads     int
	finds       int
	clicks      []string
}

// NewDriver on an empty about:blank document
func NewDriver() *Driver {
	d := &Driver{
		pages:   make(map[string]string),
		onClick: make(map[string]func(d *Driver)),
	}
	w := &window{handle: uuid.NewV4().String(), url: "about:blank", doc: mustParse("")}
	d.windows = append(d.windows, w)
	d.current = w
	return d
}

func mustParse(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// the html5 parser accepts any input; a read error from a strings.Reader can not happen
		panic(err)
	}
	return doc
}

// Serve html whenever url is navigated to or reloaded
func (d *Driver) Serve(url, html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages[url] = html
}

// SetHTML replaces the current document. Nodes of the old document go stale.
func (d *Driver) SetHTML(html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.doc = mustParse(html)
	}
}

// Mutate the current document in place
func (d *Driver) Mutate(fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		fn(d.current.doc)
	}
}

// Schedule a mutation of whatever document is current after the delay
func (d *Driver) Schedule(after time.Duration, fn func(doc *goquery.Document)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := time.AfterFunc(after, func() {
		d.Mutate(fn)
	})
	d.timers = append(d.timers, t)
}

// ScheduleHTML replaces the current document after the delay
func (d *Driver) ScheduleHTML(after time.Duration, html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := time.AfterFunc(after, func() {
		d.SetHTML(html)
	})
	d.timers = append(d.timers, t)
}

// OnClick runs fn when a node matching selector is clicked
func (d *Driver) OnClick(selector string, fn func(d *Driver)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClick[selector] = fn
}

// OpenWindow in the background, as a target=_blank link would, returning its handle
func (d *Driver) OpenWindow(url string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := &window{handle: uuid.NewV4().String(), url: url, doc: mustParse(d.pages[url])}
	d.windows = append(d.windows, w)
	return w.handle
}

func (d *Driver) Navigations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.navigations
}

func (d *Driver) Reloads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reloads
}

// Finds counts document level searches, one per poll
func (d *Driver) Finds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds
}

// Clicks lists the outer html of every clicked node, oldest first
func (d *Driver) Clicks() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.clicks...)
}

func (d *Driver) active() (*window, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.current == nil || d.current.closed {
		return nil, ErrNoSuchWindow
	}
	return d.current, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.active()
	if err != nil {
		return err
	}
	html, ok := d.pages[url]
	if !ok {
		return errors.Wrap(ErrNoSuchPage, url)
	}
	d.navigations++
	w.url = url
	w.doc = mustParse(html)
	return nil
}

// Reload re-serves the current url, or re-parses the current document when the
// url was never served
func (d *Driver) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.active()
	if err != nil {
		return err
	}
	d.reloads++
	if html, ok := d.pages[w.url]; ok {
		w.doc = mustParse(html)
		return nil
	}
	html, err := goquery.OuterHtml(w.doc.Selection)
	if err != nil {
		return err
	}
	w.doc = mustParse(html)
	return nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.active()
	if err != nil {
		return "", err
	}
	return w.url, nil
}

func (d *Driver) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.active()
	if err != nil {
		return nil, err
	}
	d.finds++
	return d.search(w, w.doc, w.doc.Selection, by, selector)
}

// search must be called with the lock held
func (d *Driver) search(w *window, doc *goquery.Document, in *goquery.Selection, by pagek.By, selector string) ([]pagek.Node, error) {
	var found *goquery.Selection
	switch by {
	case pagek.ByXPath:
		var err error
		if found, err = searchXPath(in, selector); err != nil {
			return nil, err
		}
	case pagek.ByLinkText, pagek.ByPartialLinkText:
		found = in.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if by == pagek.ByLinkText {
				return text == strings.TrimSpace(selector)
			}
			return strings.Contains(text, selector)
		})
	default:
		css, ok := by.CSS(selector)
		if !ok {
			return nil, &pagek.UnsupportedStrategyErr{By: by, Message: "the mock driver speaks css, xpath and link text"}
		}
		m, err := cascadia.Compile(css)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid selector %q", css)
		}
		found = in.FindMatcher(m)
	}

	nodes := make([]pagek.Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &Node{d: d, win: w, doc: doc, sel: s})
	})
	return nodes, nil
}

// searchXPath evaluates expr below each node of in. Element scopes anchor the
// expression at the element, the document scope sees the whole tree.
func searchXPath(in *goquery.Selection, expr string) (*goquery.Selection, error) {
	var matched []*html.Node
	for _, root := range in.Nodes {
		query := expr
		if root.Type != html.DocumentNode {
			query = pagek.RelativeXPath(expr)
		}
		found, err := htmlquery.QueryAll(root, query)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid xpath %q", expr)
		}
		for _, n := range found {
			if n.Type == html.ElementNode {
				matched = append(matched, n)
			}
		}
	}
	return in.FindNodes(matched...), nil
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	handles := make([]string, 0, len(d.windows))
	for _, w := range d.windows {
		if !w.closed {
			handles = append(handles, w.handle)
		}
	}
	return handles, nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.active()
	if err != nil {
		return "", err
	}
	return w.handle, nil
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	for _, w := range d.windows {
		if w.handle == handle && !w.closed {
			d.current = w
			return nil
		}
	}
	return errors.Wrap(ErrNoSuchWindow, handle)
}

// CloseWindow closes the current window. Like a real browser the driver is left
// without a current window until SwitchWindow is called.
func (d *Driver) CloseWindow(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.active()
	if err != nil {
		return err
	}
	w.closed = true
	return nil
}

// Close stops pending scheduled mutations
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = nil
	d.closed = true
	return nil
}
