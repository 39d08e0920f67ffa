package gcdriver

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/osfpages/pagek"
)

// Node is a DOM nodeID of the document generation it was found in
type Node struct {
	tab *Tab
	id  int
	gen int64
}

func (n *Node) live() error {
	if atomic.LoadInt64(&n.tab.docGen) != n.gen {
		return errors.Wrapf(pagek.ErrStaleReference, "node %d belongs to a replaced document", n.id)
	}
	return nil
}

// FindElements below this node. performSearch can not be scoped to a subtree so
// only css capable strategies are supported.
func (n *Node) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	if err := n.live(); err != nil {
		return nil, err
	}
	css, ok := by.CSS(selector)
	if !ok {
		return nil, &pagek.UnsupportedStrategyErr{By: by, Message: "devtools can only search inside an element with css"}
	}
	return n.tab.querySelectorAll(n.id, css)
}

// callOn runs a function declaration with this bound to the node
func (n *Node) callOn(fn string) (*gcdapi.RuntimeRemoteObject, error) {
	if err := n.live(); err != nil {
		return nil, err
	}
	obj, err := n.tab.t.DOM.ResolveNodeWithParams(&gcdapi.DOMResolveNodeParams{NodeId: n.id})
	if err != nil {
		return nil, pagek.MapStale(err)
	}
	params := &gcdapi.RuntimeCallFunctionOnParams{
		FunctionDeclaration: fn,
		ObjectId:            obj.ObjectId,
		ReturnByValue:       true,
	}
	r, exp, err := n.tab.t.Runtime.CallFunctionOnWithParams(params)
	if err != nil {
		return nil, pagek.MapStale(err)
	}
	if exp != nil {
		return nil, &ScriptEvaluationErr{Message: "calling function on node", ExceptionText: exp.Text}
	}
	return r, nil
}

// Click the center of the node's content box
func (n *Node) Click(ctx context.Context) error {
	if err := n.ScrollIntoView(ctx); err != nil {
		return err
	}
	box, err := n.tab.t.DOM.GetBoxModelWithParams(&gcdapi.DOMGetBoxModelParams{NodeId: n.id})
	if err != nil {
		return pagek.MapStale(err)
	}
	if box == nil || len(box.Content) < 8 {
		return ErrNoBoxModel
	}
	var x, y float64
	for i := 0; i < 8; i += 2 {
		x += box.Content[i]
		y += box.Content[i+1]
	}
	return n.tab.click(x/4, y/4, 1)
}

// SendKeys focuses the node and types text
func (n *Node) SendKeys(ctx context.Context, text string) error {
	if err := n.live(); err != nil {
		return err
	}
	if _, err := n.tab.t.DOM.FocusWithParams(&gcdapi.DOMFocusParams{NodeId: n.id}); err != nil {
		return pagek.MapStale(err)
	}
	return n.tab.sendKeys(text)
}

func (n *Node) Clear(ctx context.Context) error {
	_, err := n.callOn(`function() { this.value = ""; this.dispatchEvent(new Event("input", {bubbles: true})); }`)
	return err
}

// Text of the node as rendered; falls back to the text content of its outer
// html for nodes without layout
func (n *Node) Text(ctx context.Context) (string, error) {
	r, err := n.callOn(`function() { return this.innerText; }`)
	if err != nil {
		return "", err
	}
	if s, ok := r.Value.(string); ok {
		return strings.TrimSpace(s), nil
	}

	outer, err := n.tab.t.DOM.GetOuterHTMLWithParams(&gcdapi.DOMGetOuterHTMLParams{NodeId: n.id})
	if err != nil {
		return "", pagek.MapStale(err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(outer))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}

// Attribute reads the live property for value and checked, the attribute otherwise
func (n *Node) Attribute(ctx context.Context, name string) (string, error) {
	switch strings.ToLower(name) {
	case "value", "checked":
		r, err := n.callOn(fmt.Sprintf(`function() { return String(this[%q]); }`, strings.ToLower(name)))
		if err != nil {
			return "", err
		}
		if s, ok := r.Value.(string); ok && s != "undefined" {
			return s, nil
		}
	}

	if err := n.live(); err != nil {
		return "", err
	}
	attributes, err := n.tab.t.DOM.GetAttributes(n.id)
	if err != nil {
		return "", pagek.MapStale(err)
	}
	return attributeValue(attributes, name), nil
}

func (n *Node) ScrollIntoView(ctx context.Context) error {
	_, err := n.callOn(`function() { this.scrollIntoView({block: "center", inline: "center"}); }`)
	return err
}
