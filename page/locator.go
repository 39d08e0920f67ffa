package page

import (
	"strconv"
	"time"

	"gitlab.com/osfpages/pagek"
)

// Locator declares how to find a single element. Locators are plain values meant
// to be declared once, as package variables or page struct fields, and bound to a
// scope on every use. A zero Timeout or Poll falls back to the scope's settings.
type Locator struct {
	By       pagek.By
	Selector string
	Timeout  time.Duration
	Poll     time.Duration
}

// Locate declares a locator for any strategy
func Locate(by pagek.By, selector string, timeout ...time.Duration) Locator {
	l := Locator{By: by, Selector: selector}
	if len(timeout) > 0 {
		l.Timeout = timeout[0]
	}
	return l
}

func CSS(selector string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByCSS, selector, timeout...)
}

func XPath(selector string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByXPath, selector, timeout...)
}

func ID(id string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByID, id, timeout...)
}

func LinkText(text string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByLinkText, text, timeout...)
}

func PartialLinkText(text string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByPartialLinkText, text, timeout...)
}

func ClassName(class string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByClassName, class, timeout...)
}

func Name(name string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByName, name, timeout...)
}

func TagName(tag string, timeout ...time.Duration) Locator {
	return Locate(pagek.ByTagName, tag, timeout...)
}

// WithTimeout returns a copy of the locator with a different timeout
func (l Locator) WithTimeout(timeout time.Duration) Locator {
	l.Timeout = timeout
	return l
}

// WithPoll returns a copy of the locator polling at a different interval
func (l Locator) WithPoll(poll time.Duration) Locator {
	l.Poll = poll
	return l
}

// All turns the locator into a group locator with the same strategy and waits
func (l Locator) All() Group {
	return Group{Locator: l}
}

// On binds the locator to a page or component region
func (l Locator) On(scope Scope) *Element {
	return &Element{scope: scope, loc: l}
}

func (l Locator) String() string {
	return string(l.By) + " " + strconv.Quote(l.Selector)
}

func (l Locator) timeout(scope Scope) time.Duration {
	if l.Timeout > 0 {
		return l.Timeout
	}
	return scope.Timeouts().Element()
}

func (l Locator) poll(scope Scope) time.Duration {
	if l.Poll > 0 {
		return l.Poll
	}
	return scope.Timeouts().Poll()
}
