package page

import (
	"context"

	"gitlab.com/osfpages/pagek"
)

// Scope is where locators are resolved: a whole page or a component region of it
type Scope interface {
	pagek.Searcher
	Driver() pagek.Driver
	Timeouts() *pagek.TimeoutSettings
}

// Region is the scope handed to components. With a root locator, searches only
// match inside the first node the root resolves to. The root is looked up again
// on every search.
type Region struct {
	parent   Scope
	root     *Locator
	timeouts *pagek.TimeoutSettings
}

// NewRegion under parent, optionally constrained to the subtree of root
func NewRegion(parent Scope, root *Locator) *Region {
	return &Region{
		parent:   parent,
		root:     root,
		timeouts: pagek.NewTimeoutSettings(parent.Timeouts()),
	}
}

func (r *Region) Driver() pagek.Driver {
	return r.parent.Driver()
}

func (r *Region) Timeouts() *pagek.TimeoutSettings {
	return r.timeouts
}

// Root element of the region, nil when the region is not scoped
func (r *Region) Root() *Element {
	if r.root == nil {
		return nil
	}
	return r.root.On(r.parent)
}

// FindElements makes one lookup of the root in the parent scope and searches its
// subtree. A missing root means no matches, the caller's wait will poll again.
func (r *Region) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	if r.root == nil {
		return r.parent.FindElements(ctx, by, selector)
	}
	roots, err := r.parent.FindElements(ctx, r.root.By, r.root.Selector)
	if err != nil || len(roots) == 0 {
		return nil, err
	}
	return roots[0].FindElements(ctx, by, selector)
}

func (r *Region) Find(loc Locator) *Element {
	return loc.On(r)
}

func (r *Region) FindAll(g Group) *Elements {
	return g.On(r)
}
