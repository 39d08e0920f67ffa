package clicmds

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/osfpages/browser/gcdriver"
)

// CleanupFlags for the cleanup command
func CleanupFlags() []cli.Flag {
	return ConfigFlags()
}

// Cleanup removes chrome profiles the gcd driver left behind, or asks the leaser
// service named by --remote unix:/path to clean up its browsers
func Cleanup(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}
	ctx := log.Logger.WithContext(c.Context)

	leaser := gcdriver.Leaser(cfg)
	count, err := leaser.Count()
	if err != nil {
		return cli.Exit(fmt.Sprintf("counting browsers: %s", err), 1)
	}
	log.Ctx(ctx).Debug().Str("browsers", count).Msg("cleaning up")

	msg, err := leaser.Cleanup()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("cleanup failed")
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(c.App.Writer, msg)
	return nil
}
