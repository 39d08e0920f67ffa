package page

// ComponentLocator declares a component: a region of a page with its own
// locators but no url or navigation of its own
type ComponentLocator[T any] struct {
	New  func(*Region) T
	Root *Locator
}

// Component declares a component built by newFn, scoped to root when given
func Component[T any](newFn func(*Region) T, root ...Locator) ComponentLocator[T] {
	c := ComponentLocator[T]{New: newFn}
	if len(root) > 0 {
		r := root[0]
		c.Root = &r
	}
	return c
}

// On constructs the component in scope
func (c ComponentLocator[T]) On(scope Scope) T {
	return c.New(NewRegion(scope, c.Root))
}
