package pageutil

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/osfpages/page"
	"gitlab.com/osfpages/pagek"
)

// ErrNoWindows when the driver can not manage tabs
var ErrNoWindows = errors.New("driver does not support multiple windows")

func windower(drv pagek.Driver) (pagek.Windower, error) {
	w, ok := drv.(pagek.Windower)
	if !ok {
		return nil, ErrNoWindows
	}
	return w, nil
}

// SwitchToNewTab switches to a window other than the current one and returns the
// handle of the window that was current, for CloseCurrentTab
func SwitchToNewTab(ctx context.Context, drv pagek.Driver) (string, error) {
	w, err := windower(drv)
	if err != nil {
		return "", err
	}
	main, err := w.CurrentWindow(ctx)
	if err != nil {
		return "", err
	}
	handles, err := w.WindowHandles(ctx)
	if err != nil {
		return "", err
	}
	for _, h := range handles {
		if h != main {
			log.Ctx(ctx).Debug().Str("from", main).Str("to", h).Msg("switching tab")
			return main, w.SwitchWindow(ctx, h)
		}
	}
	return main, errors.Wrap(pagek.ErrNotFound, "no other tab is open")
}

// CloseCurrentTab and switch back to main
func CloseCurrentTab(ctx context.Context, drv pagek.Driver, main string) error {
	w, err := windower(drv)
	if err != nil {
		return err
	}
	if err := w.CloseWindow(ctx); err != nil {
		return err
	}
	return w.SwitchWindow(ctx, main)
}

// WaitWindowAt waits until a window exists at index, so it can be switched to
func WaitWindowAt(ctx context.Context, drv pagek.Driver, index int, timeout time.Duration) error {
	w, err := windower(drv)
	if err != nil {
		return err
	}
	return page.Until(ctx, timeout, pagek.DefaultPoll, func(ctx context.Context) (bool, error) {
		handles, err := w.WindowHandles(ctx)
		if err != nil {
			return false, err
		}
		return len(handles) > index, nil
	})
}
