package pwdriver

import (
	"context"
	"strings"

	"github.com/playwright-community/playwright-go"
	"gitlab.com/osfpages/pagek"
)

// Selector in playwright's engine prefixed form. Link text strategies go
// through their xpath rendering.
func Selector(by pagek.By, selector string) (string, error) {
	switch by {
	case pagek.ByCSS, pagek.ByID, pagek.ByName, pagek.ByClassName, pagek.ByTagName:
		css, _ := by.CSS(selector)
		return "css=" + css, nil
	}
	if xpath, ok := by.XPath(selector); ok {
		return "xpath=" + xpath, nil
	}
	return "", &pagek.UnsupportedStrategyErr{By: by}
}

func nodes(found []playwright.ElementHandle, err error) ([]pagek.Node, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	ret := make([]pagek.Node, 0, len(found))
	for _, h := range found {
		ret = append(ret, &Node{h: h})
	}
	return ret, nil
}

func mapErr(err error) error {
	return pagek.MapStale(err)
}

// Node is a playwright element handle
type Node struct {
	h playwright.ElementHandle
}

// FindElements below the node. xpath selectors are made relative to it.
func (n *Node) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	query, err := Selector(by, selector)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(query, "xpath=") {
		query = "xpath=" + pagek.RelativeXPath(strings.TrimPrefix(query, "xpath="))
	}
	return nodes(n.h.QuerySelectorAll(query))
}

func (n *Node) Click(ctx context.Context) error {
	return mapErr(n.h.Click(playwright.ElementHandleClickOptions{Timeout: timeoutMillis(ctx)}))
}

func (n *Node) SendKeys(ctx context.Context, text string) error {
	return mapErr(n.h.Type(text, playwright.ElementHandleTypeOptions{Timeout: timeoutMillis(ctx)}))
}

func (n *Node) Clear(ctx context.Context) error {
	return mapErr(n.h.Fill("", playwright.ElementHandleFillOptions{Timeout: timeoutMillis(ctx)}))
}

func (n *Node) Text(ctx context.Context) (string, error) {
	text, err := n.h.InnerText()
	if err != nil {
		return "", mapErr(err)
	}
	return strings.TrimSpace(text), nil
}

// Attribute reads the live input value for "value", the attribute otherwise
func (n *Node) Attribute(ctx context.Context, name string) (string, error) {
	if strings.EqualFold(name, "value") {
		if value, err := n.h.InputValue(); err == nil {
			return value, nil
		}
	}
	value, err := n.h.GetAttribute(name)
	if err != nil {
		return "", mapErr(err)
	}
	return value, nil
}

func (n *Node) ScrollIntoView(ctx context.Context) error {
	return mapErr(n.h.ScrollIntoViewIfNeeded(playwright.ElementHandleScrollIntoViewIfNeededOptions{Timeout: timeoutMillis(ctx)}))
}
