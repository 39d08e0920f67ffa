package gcdriver

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"gitlab.com/osfpages/pagek"
)

// Launch a chrome with cfg and drive its first tab. Closing the tab exits the
// browser. A cfg.RemoteURL of unix:/path leases the browser from the service on
// that socket instead of starting one.
func Launch(ctx context.Context, cfg *pagek.Config) (*Tab, error) {
	return LaunchWith(ctx, Leaser(cfg), cfg)
}

// Leaser for cfg
func Leaser(cfg *pagek.Config) LeaserService {
	if strings.HasPrefix(cfg.RemoteURL, SocketPrefix) {
		return NewSocketLeaser(strings.TrimPrefix(cfg.RemoteURL, SocketPrefix))
	}
	return NewLocalLeaser(cfg.BrowserPath, cfg.Headless)
}

// LaunchWith a browser from leaser
func LaunchWith(ctx context.Context, leaser LeaserService, cfg *pagek.Config) (*Tab, error) {
	port, err := leaser.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "acquiring browser")
	}

	logger := log.Ctx(ctx).With().Str("port", port).Logger()

	browser := gcd.NewChromeDebugger()
	if err := browser.ConnectToInstance("localhost", port); err != nil {
		abandon(&logger, leaser, port)
		return nil, errors.Wrapf(err, "connecting to browser on %s", port)
	}

	target, err := browser.GetFirstTab()
	if err != nil {
		abandon(&logger, leaser, port)
		return nil, errors.Wrap(err, "getting first tab")
	}

	tab := NewTab(ctx, browser, target)
	tab.SetNavigationTimeout(cfg.Long())
	tab.onClose = func() error {
		logger.Debug().Msg("returning browser")
		return leaser.Return(port)
	}
	return tab, nil
}

// abandon a browser that could not be driven
func abandon(logger *zerolog.Logger, leaser LeaserService, port string) {
	if err := leaser.Return(port); err != nil {
		logger.Warn().Err(err).Msg("unable to return browser")
	}
}
