package page

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/osfpages/pagek"
)

// Group declares a locator resolving to every matching element
type Group struct {
	Locator
}

func (g Group) WithTimeout(timeout time.Duration) Group {
	g.Timeout = timeout
	return g
}

// On binds the group to a page or component region
func (g Group) On(scope Scope) *Elements {
	return &Elements{scope: scope, loc: g.Locator}
}

// Elements is a group bound to a scope. The nodes it returns are a snapshot:
// they go stale when the document changes and must be fetched again.
type Elements struct {
	scope Scope
	loc   Locator
}

// All waits up to the timeout for at least one match and returns the matches in
// document order. No match after the timeout is an empty slice, not an error.
func (e *Elements) All(ctx context.Context) ([]pagek.Node, error) {
	el := &Element{scope: e.scope, loc: e.loc}
	var nodes []pagek.Node
	err := Until(ctx, e.loc.timeout(e.scope), e.loc.poll(e.scope), func(ctx context.Context) (bool, error) {
		found, err := el.find(ctx)
		if err != nil {
			return false, err
		}
		nodes = found
		return len(found) > 0, nil
	})
	if errors.Is(err, pagek.ErrTimedOut) {
		log.Ctx(ctx).Debug().Str("locator", e.loc.String()).Msg("group matched nothing")
		return []pagek.Node{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", e.loc)
	}
	return nodes, nil
}

// Texts of every match, in document order
func (e *Elements) Texts(ctx context.Context) ([]string, error) {
	nodes, err := e.All(ctx)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		text, err := n.Text(ctx)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// FindByText returns the first match whose text contains text
func (e *Elements) FindByText(ctx context.Context, text string) (pagek.Node, error) {
	nodes, err := e.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		t, err := n.Text(ctx)
		if err != nil {
			return nil, err
		}
		if strings.Contains(t, text) {
			return n, nil
		}
	}
	return nil, errors.Wrapf(pagek.ErrNotFound, "no %s containing %q", e.loc, text)
}

// WaitText waits until any match contains text. Nodes going stale mid read
// count as not yet.
func (e *Elements) WaitText(ctx context.Context, text string) error {
	el := &Element{scope: e.scope, loc: e.loc}
	timeout := e.loc.timeout(e.scope)
	err := Until(ctx, timeout, e.loc.poll(e.scope), func(ctx context.Context) (bool, error) {
		nodes, err := el.find(ctx)
		if err != nil {
			return false, err
		}
		for _, n := range nodes {
			t, err := n.Text(ctx)
			if err != nil {
				if pagek.IsStale(err) {
					return false, nil
				}
				return false, err
			}
			if strings.Contains(t, text) {
				return true, nil
			}
		}
		return false, nil
	})
	if errors.Is(err, pagek.ErrTimedOut) {
		return errors.Wrapf(err, "text %q in %s after %s", text, e.loc, timeout)
	}
	return err
}
