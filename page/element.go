package page

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/osfpages/pagek"
)

// Element is a locator bound to a scope. It holds no node: every call resolves
// the locator against the live document again.
type Element struct {
	scope Scope
	loc   Locator
}

// Locator this element was bound from
func (e *Element) Locator() Locator {
	return e.loc
}

// find makes one non-waiting lookup. Stale scope roots count as no match so the
// surrounding wait simply polls again.
func (e *Element) find(ctx context.Context) ([]pagek.Node, error) {
	nodes, err := e.scope.FindElements(ctx, e.loc.By, e.loc.Selector)
	if err != nil {
		if pagek.IsStale(err) || pagek.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return nodes, nil
}

// Resolve waits up to the locator timeout for a match and returns the first
// node in document order
func (e *Element) Resolve(ctx context.Context) (pagek.Node, error) {
	var node pagek.Node
	timeout := e.loc.timeout(e.scope)

	err := Until(ctx, timeout, e.loc.poll(e.scope), func(ctx context.Context) (bool, error) {
		nodes, err := e.find(ctx)
		if err != nil {
			return false, err
		}
		if len(nodes) == 0 {
			return false, nil
		}
		node = nodes[0]
		return true, nil
	})

	if errors.Is(err, pagek.ErrTimedOut) {
		log.Ctx(ctx).Debug().Str("locator", e.loc.String()).Dur("timeout", timeout).Msg("element not found")
		return nil, &pagek.ResolutionTimeoutErr{Locator: e.loc.String(), Timeout: timeout}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", e.loc)
	}
	return node, nil
}

// Present is true as soon as a match exists. It only reports false after the
// full timeout, and never returns an error: driver faults read as not present.
func (e *Element) Present(ctx context.Context) bool {
	_, err := e.Resolve(ctx)
	if err != nil && !pagek.IsNotFound(err) {
		log.Ctx(ctx).Warn().Err(err).Str("locator", e.loc.String()).Msg("presence check failed")
	}
	return err == nil
}

// Absent is true as soon as nothing matches, false if something still matches
// when the timeout elapses
func (e *Element) Absent(ctx context.Context) bool {
	err := e.waitGone(ctx)
	if err != nil && !errors.Is(err, pagek.ErrTimedOut) {
		log.Ctx(ctx).Warn().Err(err).Str("locator", e.loc.String()).Msg("absence check failed")
	}
	return err == nil
}

func (e *Element) waitGone(ctx context.Context) error {
	return Until(ctx, e.loc.timeout(e.scope), e.loc.poll(e.scope), func(ctx context.Context) (bool, error) {
		nodes, err := e.find(ctx)
		if err != nil {
			return false, err
		}
		return len(nodes) == 0, nil
	})
}

// HereThenGone waits for the element to appear and then to disappear, each stage
// bounded by the locator timeout. Used to sync on spinners and toasts.
func (e *Element) HereThenGone(ctx context.Context) error {
	timeout := e.loc.timeout(e.scope)

	if _, err := e.Resolve(ctx); err != nil {
		if pagek.IsNotFound(err) {
			return &pagek.HereThenGoneErr{Stage: pagek.ErrNeverAppeared, Locator: e.loc.String(), Timeout: timeout}
		}
		return err
	}

	if err := e.waitGone(ctx); err != nil {
		if errors.Is(err, pagek.ErrTimedOut) {
			return &pagek.HereThenGoneErr{Stage: pagek.ErrNeverGone, Locator: e.loc.String(), Timeout: timeout}
		}
		return errors.Wrapf(err, "waiting for %s to go away", e.loc)
	}
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	node, err := e.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return node.Text(ctx)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	node, err := e.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return node.Attribute(ctx, name)
}

func (e *Element) Href(ctx context.Context) (string, error) {
	return e.Attribute(ctx, "href")
}

// Click resolves then clicks; interaction errors are returned unchanged
func (e *Element) Click(ctx context.Context) error {
	node, err := e.Resolve(ctx)
	if err != nil {
		return err
	}
	return node.Click(ctx)
}

func (e *Element) SendKeys(ctx context.Context, text string) error {
	node, err := e.Resolve(ctx)
	if err != nil {
		return err
	}
	return node.SendKeys(ctx, text)
}

func (e *Element) Clear(ctx context.Context) error {
	node, err := e.Resolve(ctx)
	if err != nil {
		return err
	}
	return node.Clear(ctx)
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	node, err := e.Resolve(ctx)
	if err != nil {
		return err
	}
	return node.ScrollIntoView(ctx)
}

// WaitHref waits for the element to exist with a non empty href so it can be
// followed
func (e *Element) WaitHref(ctx context.Context) (string, error) {
	var href string
	err := e.waitAttribute(ctx, "href", func(v string) bool {
		href = v
		return v != ""
	})
	return href, err
}

// WaitAttribute waits for the element to exist with attribute name set to want
func (e *Element) WaitAttribute(ctx context.Context, name, want string) error {
	return e.waitAttribute(ctx, name, func(v string) bool { return v == want })
}

func (e *Element) waitAttribute(ctx context.Context, name string, match func(string) bool) error {
	timeout := e.loc.timeout(e.scope)
	err := Until(ctx, timeout, e.loc.poll(e.scope), func(ctx context.Context) (bool, error) {
		nodes, err := e.find(ctx)
		if err != nil || len(nodes) == 0 {
			return false, err
		}
		v, err := nodes[0].Attribute(ctx, name)
		if err != nil {
			if pagek.IsStale(err) {
				return false, nil
			}
			return false, err
		}
		return match(v), nil
	})
	if errors.Is(err, pagek.ErrTimedOut) {
		return errors.Wrapf(err, "%s attribute %s after %s", e.loc, name, timeout)
	}
	return err
}
