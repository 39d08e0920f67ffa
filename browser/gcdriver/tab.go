package gcdriver

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/osfpages/pagek"
)

// Tab is a chromium tab driven over the devtools protocol
type Tab struct {
	g                 *gcd.Gcd
	t                 *gcd.ChromeTarget
	topNodeID         atomic.Value  // the nodeID of the current top level #document
	docGen            int64         // bumped whenever the document is replaced
	isNavigatingFlag  atomic.Value  // between Page.navigate/reload and Page.loadEventFired
	navigationCh      chan struct{} // load events while navigating
	crashedCh         chan string   // the chrome tab crashed with a reason
	exitCh            chan struct{} // for when we close the tab, kill go routines
	closeOnce         sync.Once
	navigationTimeout time.Duration // used when the caller's context has no deadline
	onClose           func() error
}

// NewTab wraps target and subscribes to the events it needs
func NewTab(ctx context.Context, gcdBrowser *gcd.Gcd, target *gcd.ChromeTarget) *Tab {
	t := &Tab{
		g:                 gcdBrowser,
		t:                 target,
		navigationCh:      make(chan struct{}, 1),
		crashedCh:         make(chan string, 1),
		exitCh:            make(chan struct{}),
		navigationTimeout: pagek.LongTimeout,
	}
	t.setTopNodeID(0)
	t.setIsNavigating(false)
	t.subscribeBrowserEvents(ctx)
	return t
}

// SetNavigationTimeout used when Navigate is called without a deadline
func (t *Tab) SetNavigationTimeout(timeout time.Duration) {
	t.navigationTimeout = timeout
}

// Close the exit channel and release the browser
func (t *Tab) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.exitCh)
		if t.onClose != nil {
			err = t.onClose()
		}
	})
	return err
}

// Navigate and wait for the load event
func (t *Tab) Navigate(ctx context.Context, url string) error {
	t.beginNavigation()
	defer t.setIsNavigating(false)

	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return err
	}

	if errText != "" {
		return errors.Wrap(ErrNavigating, errText)
	}
	return t.waitLoad(ctx)
}

// Reload the page from cache and wait for the load event
func (t *Tab) Reload(ctx context.Context) error {
	t.beginNavigation()
	defer t.setIsNavigating(false)

	if _, err := t.t.Page.Reload(false, ""); err != nil {
		return err
	}
	return t.waitLoad(ctx)
}

// beginNavigation drops a load event left over from an earlier navigation
func (t *Tab) beginNavigation() {
	select {
	case <-t.navigationCh:
	default:
	}
	t.setIsNavigating(true)
}

func (t *Tab) waitLoad(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.navigationTimeout)
		defer cancel()
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrNavigationTimedOut
		}
		return ctx.Err()
	case <-t.exitCh:
		return ErrTabClosing
	case reason := <-t.crashedCh:
		return errors.Wrap(ErrTabCrashed, reason)
	case <-t.navigationCh:
		log.Ctx(ctx).Debug().Msg("load event fired")
		return nil
	}
}

// CurrentURL from the navigation history
func (t *Tab) CurrentURL(ctx context.Context) (string, error) {
	idx, entries, err := t.t.Page.GetNavigationHistory()
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(entries) {
		return "", errors.New("empty navigation history")
	}
	return entries[idx].Url, nil
}

// FindElements in the whole document. css capable strategies use
// DOM.querySelectorAll, the rest go through DOM.performSearch as xpath.
func (t *Tab) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	docID, err := t.documentNodeID()
	if err != nil {
		return nil, err
	}
	if css, ok := by.CSS(selector); ok {
		return t.querySelectorAll(docID, css)
	}
	if xpath, ok := by.XPath(selector); ok {
		return t.search(xpath)
	}
	return nil, &pagek.UnsupportedStrategyErr{By: by}
}

func (t *Tab) querySelectorAll(nodeID int, css string) ([]pagek.Node, error) {
	gen := atomic.LoadInt64(&t.docGen)
	nodeIDs, err := t.t.DOM.QuerySelectorAll(nodeID, css)
	if err != nil {
		return nil, pagek.MapStale(err)
	}
	return t.nodes(nodeIDs, gen), nil
}

func (t *Tab) search(query string) ([]pagek.Node, error) {
	gen := atomic.LoadInt64(&t.docGen)
	var s gcdapi.DOMPerformSearchParams
	s.Query = query
	id, count, err := t.t.DOM.PerformSearchWithParams(&s)
	if err != nil {
		return nil, err
	}
	defer t.t.DOM.DiscardSearchResults(id)

	if count < 1 {
		return []pagek.Node{}, nil
	}

	var r gcdapi.DOMGetSearchResultsParams
	r.SearchId = id
	r.FromIndex = 0
	r.ToIndex = count
	nodeIDs, err := t.t.DOM.GetSearchResultsWithParams(&r)
	if err != nil {
		return nil, pagek.MapStale(err)
	}
	return t.nodes(nodeIDs, gen), nil
}

func (t *Tab) nodes(nodeIDs []int, gen int64) []pagek.Node {
	nodes := make([]pagek.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if id == 0 {
			continue
		}
		nodes = append(nodes, &Node{tab: t, id: id, gen: gen})
	}
	return nodes
}

// documentNodeID returns the cached #document node, fetching it after the
// document was replaced. DOM.getDocument invalidates every known nodeID so it
// is only called when the cache is empty.
func (t *Tab) documentNodeID() (int, error) {
	if id := t.getTopNodeID(); id != 0 {
		return id, nil
	}
	doc, err := t.t.DOM.GetDocument(-1, false)
	if err != nil {
		return 0, err
	}
	atomic.AddInt64(&t.docGen, 1)
	t.setTopNodeID(doc.NodeId)
	return doc.NodeId, nil
}

func (t *Tab) setIsNavigating(set bool) {
	t.isNavigatingFlag.Store(set)
}

// IsNavigating between a navigate/reload and its load event
func (t *Tab) IsNavigating() bool {
	if flag, ok := t.isNavigatingFlag.Load().(bool); ok {
		return flag
	}
	return false
}

func (t *Tab) setTopNodeID(nodeID int) {
	t.topNodeID.Store(nodeID)
}

func (t *Tab) getTopNodeID() int {
	if id, ok := t.topNodeID.Load().(int); ok {
		return id
	}
	return 0
}

func (t *Tab) documentUpdated() {
	t.setTopNodeID(0)
	atomic.AddInt64(&t.docGen, 1)
}

func (t *Tab) subscribeBrowserEvents(ctx context.Context) {
	t.t.DOM.Enable()
	t.t.Inspector.Enable()
	t.t.Page.Enable()

	t.t.Subscribe("Inspector.targetCrashed", func(target *gcd.ChromeTarget, payload []byte) {
		log.Ctx(ctx).Warn().Msgf("tab crashed: %s", string(payload))
		select {
		case t.crashedCh <- "crashed":
		case <-t.exitCh:
		default:
		}
	})

	t.t.Subscribe("Inspector.detached", func(target *gcd.ChromeTarget, payload []byte) {
		header := &gcdapi.InspectorDetachedEvent{}
		reason := "detached"
		if err := json.Unmarshal(payload, header); err == nil {
			reason = header.Params.Reason
		}

		select {
		case t.crashedCh <- reason:
		case <-t.exitCh:
		default:
		}
	})

	t.t.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		if !t.IsNavigating() {
			return
		}
		select {
		case t.navigationCh <- struct{}{}:
		case <-t.exitCh:
		default:
		}
	})

	t.t.Subscribe("DOM.documentUpdated", func(target *gcd.ChromeTarget, payload []byte) {
		t.documentUpdated()
	})
}
