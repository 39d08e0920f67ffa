package clicmds

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/osfpages/browser"
	"gitlab.com/osfpages/page"
	"gitlab.com/osfpages/pagek"
)

// launch is swapped in tests
var launch = browser.Launch

// VerifyFlags for the verify command
func VerifyFlags() []cli.Flag {
	return append(ConfigFlags(),
		&cli.StringFlag{
			Name:     "url",
			Usage:    "page url or path below the OSF home, may hold {name} placeholders",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:  "param",
			Usage: "url placeholder value as name=value, repeatable",
		},
		&cli.StringFlag{
			Name:  "identity",
			Usage: "selector that must be present for the page to verify",
		},
		&cli.StringFlag{
			Name:  "by",
			Usage: "strategy of the selectors: css, xpath, id, link-text, partial-link-text, class-name, name, tag-name",
			Value: "css",
		},
	)
}

// openPage launches the configured driver and builds a page from the command's
// url, param and identity flags. The caller closes the driver.
func openPage(ctx context.Context, c *cli.Context, cfg *pagek.Config) (pagek.Driver, *page.Page, error) {
	by, err := pagek.ParseBy(c.String("by"))
	if err != nil {
		return nil, nil, err
	}
	bound, err := params(c.StringSlice("param"))
	if err != nil {
		return nil, nil, err
	}

	opts := []page.Option{
		page.WithTemplate(targetURL(cfg, c.String("url")), bound),
		page.WithTimeouts(cfg.TimeoutSettings()),
	}
	if identity := c.String("identity"); identity != "" {
		opts = append(opts, page.WithIdentity(page.Locate(by, identity)))
	}

	drv, err := launch(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return drv, page.New(drv, opts...), nil
}

// Verify navigates to a page and checks its identity element
func Verify(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}
	ctx := log.Logger.WithContext(c.Context)

	drv, p, err := openPage(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer closeDriver(drv)

	url, err := p.URL()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to render page url")
		return cli.Exit(err.Error(), 1)
	}
	if err := p.Goto(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("url", url).Msg("verification failed")
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintf(c.App.Writer, "verified %s\n", url)
	return nil
}

func closeDriver(drv pagek.Driver) {
	if err := drv.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close browser")
	}
}
