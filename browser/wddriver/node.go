package wddriver

import (
	"context"
	"strings"

	"github.com/tebeka/selenium"
	"gitlab.com/osfpages/pagek"
)

// Node is a webdriver element reference
type Node struct {
	d *Driver
	e selenium.WebElement
}

// FindElements below the element. xpath is anchored at it, webdriver would
// otherwise evaluate an absolute expression against the whole document.
func (n *Node) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	if by == pagek.ByXPath {
		selector = pagek.RelativeXPath(selector)
	}
	found, err := n.e.FindElements(string(by), selector)
	return nodes(n.d, found, err)
}

func (n *Node) Click(ctx context.Context) error {
	return pagek.MapStale(n.e.Click())
}

func (n *Node) SendKeys(ctx context.Context, text string) error {
	return pagek.MapStale(n.e.SendKeys(text))
}

func (n *Node) Clear(ctx context.Context) error {
	return pagek.MapStale(n.e.Clear())
}

func (n *Node) Text(ctx context.Context) (string, error) {
	text, err := n.e.Text()
	if err != nil {
		return "", pagek.MapStale(err)
	}
	return strings.TrimSpace(text), nil
}

// Attribute returns "" for attributes the element does not carry. the client
// reports those as a nil return value.
func (n *Node) Attribute(ctx context.Context, name string) (string, error) {
	value, err := n.e.GetAttribute(name)
	if err != nil {
		if strings.Contains(err.Error(), "nil return value") {
			return "", nil
		}
		return "", pagek.MapStale(err)
	}
	return value, nil
}

func (n *Node) ScrollIntoView(ctx context.Context) error {
	_, err := n.d.wd.ExecuteScript(`arguments[0].scrollIntoView({block: "center", inline: "center"});`, []interface{}{n.e})
	return pagek.MapStale(err)
}
