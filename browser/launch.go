// Package browser starts the automation backend a config names
package browser

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/osfpages/browser/cdpdriver"
	"gitlab.com/osfpages/browser/gcdriver"
	"gitlab.com/osfpages/browser/pwdriver"
	"gitlab.com/osfpages/browser/wddriver"
	"gitlab.com/osfpages/pagek"
)

// Launcher starts a driver for a config
type Launcher func(ctx context.Context, cfg *pagek.Config) (pagek.Driver, error)

var launchers = map[string]Launcher{
	"chrome":  webdriver,
	"firefox": webdriver,
	"remote":  webdriver,
	"gcd": func(ctx context.Context, cfg *pagek.Config) (pagek.Driver, error) {
		return gcdriver.Launch(ctx, cfg)
	},
	"chromedp": func(ctx context.Context, cfg *pagek.Config) (pagek.Driver, error) {
		return cdpdriver.Launch(ctx, cfg)
	},
	"playwright":         playwright(""),
	"playwright-firefox": playwright("firefox"),
	"playwright-webkit":  playwright("webkit"),
}

func webdriver(ctx context.Context, cfg *pagek.Config) (pagek.Driver, error) {
	return wddriver.Launch(ctx, cfg)
}

func playwright(engine string) Launcher {
	return func(ctx context.Context, cfg *pagek.Config) (pagek.Driver, error) {
		return pwdriver.Launch(ctx, cfg, engine)
	}
}

// Drivers that Launch knows by name
func Drivers() []string {
	names := make([]string, 0, len(launchers))
	for name := range launchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Launch the driver cfg.Driver names
func Launch(ctx context.Context, cfg *pagek.Config) (pagek.Driver, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Driver))
	launch, ok := launchers[name]
	if !ok {
		return nil, errors.Wrapf(pagek.ErrUnknownDriver, "%q, expected one of %s", cfg.Driver, strings.Join(Drivers(), ", "))
	}
	log.Ctx(ctx).Info().Str("driver", name).Bool("headless", cfg.Headless).Msg("launching browser")
	drv, err := launch(ctx, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "launching %s", name)
	}
	return drv, nil
}
