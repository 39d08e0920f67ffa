package clicmds

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/osfpages/page"
	"gitlab.com/osfpages/pagek"
)

// ProbeFlags for the probe command
func ProbeFlags() []cli.Flag {
	return append(VerifyFlags(),
		&cli.StringFlag{
			Name:     "selector",
			Usage:    "selector to probe",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "present, absent, gone, count or text",
			Value: "present",
		},
		&cli.DurationFlag{
			Name:  "wait",
			Usage: "override the element timeout for the probe",
		},
	)
}

// Probe opens a page and reports on a single locator
func Probe(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}
	ctx := log.Logger.WithContext(c.Context)

	by, err := pagek.ParseBy(c.String("by"))
	if err != nil {
		return err
	}
	loc := page.Locate(by, c.String("selector"))
	if c.IsSet("wait") {
		loc = loc.WithTimeout(c.Duration("wait"))
	}

	drv, p, err := openPage(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer closeDriver(drv)

	if err := p.Goto(ctx); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out := c.App.Writer
	switch mode := strings.ToLower(c.String("mode")); mode {
	case "present":
		return report(out, loc, mode, loc.On(p).Present(ctx))
	case "absent":
		return report(out, loc, mode, loc.On(p).Absent(ctx))
	case "gone":
		err := loc.On(p).HereThenGone(ctx)
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("here then gone")
		}
		return report(out, loc, mode, err == nil)
	case "count":
		nodes, err := loc.All().On(p).All(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d\n", len(nodes))
		return nil
	case "text":
		texts, err := loc.All().On(p).Texts(ctx)
		if err != nil {
			return err
		}
		for _, text := range texts {
			fmt.Fprintln(out, text)
		}
		return nil
	default:
		return errors.Errorf("unknown probe mode %q", mode)
	}
}

func report(out io.Writer, loc page.Locator, mode string, ok bool) error {
	if !ok {
		return cli.Exit(fmt.Sprintf("%s is not %s", loc, mode), 1)
	}
	fmt.Fprintf(out, "%s is %s\n", loc, mode)
	return nil
}
