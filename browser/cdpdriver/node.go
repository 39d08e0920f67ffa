package cdpdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"gitlab.com/osfpages/pagek"
)

// Node is a chromedp node of the tab it was found in
type Node struct {
	tabCtx context.Context
	n      *cdp.Node
}

// FindElements below the node, css capable strategies only
func (n *Node) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	css, ok := by.CSS(selector)
	if !ok {
		return nil, &pagek.UnsupportedStrategyErr{By: by, Message: "chromedp can only search inside an element with css"}
	}
	return find(ctx, n.tabCtx, css, chromedp.ByQueryAll, chromedp.FromNode(n.n))
}

// call fn with this bound to the node, decoding its return value into res when
// res is not nil
func (n *Node) call(ctx context.Context, fn string, res interface{}) error {
	return runIn(ctx, n.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer runtime.ReleaseObject(obj.ObjectID).Do(ctx)

		return callOn(ctx, obj.ObjectID, fn, res)
	}))
}

func callOn(ctx context.Context, id runtime.RemoteObjectID, fn string, res interface{}) error {
	ret, exception, err := runtime.CallFunctionOn(fn).
		WithObjectID(id).
		WithReturnByValue(true).
		Do(ctx)
	if err != nil {
		return err
	}
	if exception != nil {
		return exception
	}
	return decode(ret, res)
}

func decode(ret *runtime.RemoteObject, res interface{}) error {
	if res == nil || ret == nil || len(ret.Value) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(ret.Value, res), "decoding script result")
}

func (n *Node) Click(ctx context.Context) error {
	return runIn(ctx, n.tabCtx, chromedp.MouseClickNode(n.n))
}

func (n *Node) SendKeys(ctx context.Context, text string) error {
	return runIn(ctx, n.tabCtx, chromedp.SendKeys([]cdp.NodeID{n.n.NodeID}, text, chromedp.ByNodeID))
}

func (n *Node) Clear(ctx context.Context) error {
	return n.call(ctx, `function() { this.value = ""; this.dispatchEvent(new Event("input", {bubbles: true})); }`, nil)
}

func (n *Node) Text(ctx context.Context) (string, error) {
	var text string
	if err := n.call(ctx, `function() { return this.innerText || this.textContent || ""; }`, &text); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Attribute reads the live property for value and checked, the attribute otherwise
func (n *Node) Attribute(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(name)
	switch name {
	case "value", "checked":
		var value string
		err := n.call(ctx, fmt.Sprintf(`function() { return this[%q] === undefined ? "" : String(this[%q]); }`, name, name), &value)
		return value, err
	}

	var attributes []string
	err := runIn(ctx, n.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		attributes, err = dom.GetAttributes(n.n.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", err
	}
	for i := 0; i+1 < len(attributes); i += 2 {
		if strings.ToLower(attributes[i]) == name {
			return attributes[i+1], nil
		}
	}
	return "", nil
}

func (n *Node) ScrollIntoView(ctx context.Context) error {
	return runIn(ctx, n.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithNodeID(n.n.NodeID).Do(ctx)
	}))
}
