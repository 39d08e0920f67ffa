package mock

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"gitlab.com/osfpages/pagek"
	"golang.org/x/net/html"
)

// Node is a handle to an element of one specific mock document
type Node struct {
	d   *Driver
	win *window
	doc *goquery.Document
	sel *goquery.Selection
}

// HTMLNode backing this handle
func (n *Node) HTMLNode() *html.Node {
	return n.sel.Get(0)
}

// live must be called with the driver lock held
func (n *Node) live() error {
	if n.d.closed {
		return ErrClosed
	}
	if n.win.closed {
		return ErrNoSuchWindow
	}
	if n.win.doc != n.doc || !attached(n.sel.Get(0), n.doc.Get(0)) {
		return errors.Wrap(pagek.ErrStaleReference, "element is not attached to the page document")
	}
	return nil
}

func attached(node, root *html.Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

func (n *Node) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if err := n.live(); err != nil {
		return nil, err
	}
	return n.d.search(n.win, n.doc, n.sel, by, selector)
}

// Click records the click and runs a registered handler the node matches
func (n *Node) Click(ctx context.Context) error {
	n.d.mu.Lock()
	if err := n.live(); err != nil {
		n.d.mu.Unlock()
		return err
	}
	outer, _ := goquery.OuterHtml(n.sel)
	n.d.clicks = append(n.d.clicks, outer)

	var handler func(*Driver)
	for selector, fn := range n.d.onClick {
		if n.sel.Is(selector) {
			handler = fn
			break
		}
	}
	n.d.mu.Unlock()

	if handler != nil {
		handler(n.d)
	}
	return nil
}

// SendKeys appends to the value attribute
func (n *Node) SendKeys(ctx context.Context, text string) error {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if err := n.live(); err != nil {
		return err
	}
	value, _ := n.sel.Attr("value")
	n.sel.SetAttr("value", value+text)
	return nil
}

func (n *Node) Clear(ctx context.Context) error {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if err := n.live(); err != nil {
		return err
	}
	n.sel.SetAttr("value", "")
	return nil
}

// Text content with surrounding whitespace trimmed
func (n *Node) Text(ctx context.Context) (string, error) {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if err := n.live(); err != nil {
		return "", err
	}
	return strings.TrimSpace(n.sel.Text()), nil
}

func (n *Node) Attribute(ctx context.Context, name string) (string, error) {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if err := n.live(); err != nil {
		return "", err
	}
	v, _ := n.sel.Attr(name)
	return v, nil
}

func (n *Node) ScrollIntoView(ctx context.Context) error {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	return n.live()
}
