package pagek

import (
	"strconv"
	"strings"
)

// By is a locator strategy. The values match the W3C WebDriver strategy names
type By string

// revive:exported
const (
	ByCSS             By = "css selector"
	ByXPath           By = "xpath"
	ByID              By = "id"
	ByLinkText        By = "link text"
	ByPartialLinkText By = "partial link text"
	ByClassName       By = "class name"
	ByName            By = "name"
	ByTagName         By = "tag name"
)

var strategyNames = map[string]By{
	"css":               ByCSS,
	"css selector":      ByCSS,
	"xpath":             ByXPath,
	"id":                ByID,
	"link text":         ByLinkText,
	"link-text":         ByLinkText,
	"partial link text": ByPartialLinkText,
	"partial-link-text": ByPartialLinkText,
	"class name":        ByClassName,
	"class-name":        ByClassName,
	"name":              ByName,
	"tag name":          ByTagName,
	"tag-name":          ByTagName,
}

// ParseBy from a user supplied strategy name (flags, config files)
func ParseBy(name string) (By, error) {
	if by, ok := strategyNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return by, nil
	}
	return "", &UnsupportedStrategyErr{By: By(name)}
}

func (b By) String() string {
	return string(b)
}

// CSS returns an equivalent css selector for the strategy, if one exists.
// Link text strategies match on text content and have no css form.
func (b By) CSS(selector string) (string, bool) {
	switch b {
	case ByCSS, ByTagName:
		return selector, true
	case ByID:
		return "[id=" + strconv.Quote(selector) + "]", true
	case ByName:
		return "[name=" + strconv.Quote(selector) + "]", true
	case ByClassName:
		return "." + selector, true
	}
	return "", false
}

// XPath returns an equivalent xpath expression for the strategy. Raw css selectors
// have no general xpath form.
func (b By) XPath(selector string) (string, bool) {
	lit := xpathLiteral(selector)
	switch b {
	case ByXPath:
		return selector, true
	case ByID:
		return "//*[@id=" + lit + "]", true
	case ByName:
		return "//*[@name=" + lit + "]", true
	case ByTagName:
		return "//" + selector, true
	case ByClassName:
		return "//*[contains(concat(' ', normalize-space(@class), ' '), " + xpathLiteral(" "+selector+" ") + ")]", true
	case ByLinkText:
		return "//a[normalize-space(.)=" + xpathLiteral(strings.TrimSpace(selector)) + "]", true
	case ByPartialLinkText:
		return "//a[contains(., " + lit + ")]", true
	}
	return "", false
}

// RelativeXPath anchors an absolute xpath expression at the context node so a
// search below an element stays inside it
func RelativeXPath(xpath string) string {
	switch {
	case strings.HasPrefix(xpath, "(/"):
		return "(" + RelativeXPath(xpath[1:])
	case strings.HasPrefix(xpath, "/"):
		return "." + xpath
	}
	return xpath
}

// xpathLiteral quotes s for use inside an xpath expression. xpath 1.0 has no escape
// so strings holding both quote kinds are split with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
