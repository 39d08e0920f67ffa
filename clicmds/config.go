package clicmds

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/osfpages/pagek"
)

// EnvPrefix of every environment setting, OSF_HOME_URL, OSF_DRIVER...
const EnvPrefix = "OSF"

// ConfigFlags shared by every command
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "toml config to use",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "envfile",
			Usage: ".env file to load when present",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:  "home",
			Usage: "OSF home url, overrides config and environment",
		},
		&cli.StringFlag{
			Name:  "driver",
			Usage: "browser driver: chrome, firefox, remote, gcd, chromedp, playwright",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "run the browser without a window",
		},
		&cli.StringFlag{
			Name:  "remote",
			Usage: "webdriver hub url for the remote driver, unix:/path of a gcd leaser service",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "default element timeout in seconds",
		},
	}
}

// LoadConfig layers defaults, the toml file at path, envFile and the process
// environment, each overriding the last. Either path may be empty.
func LoadConfig(path, envFile string) (*pagek.Config, error) {
	cfg := pagek.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if err := toml.NewDecoder(strings.NewReader(string(data))).Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
	}

	if envFile != "" {
		// values already in the environment win over the file
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(errors.Cause(err)) {
				return nil, errors.Wrapf(err, "loading %s", envFile)
			}
			log.Debug().Str("envfile", envFile).Msg("no env file")
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}
	return cfg, nil
}

// ApplyFlags that were set on the command line to cfg
func ApplyFlags(ctx *cli.Context, cfg *pagek.Config) {
	if ctx.IsSet("home") {
		cfg.OSFHome = ctx.String("home")
	}
	if ctx.IsSet("driver") {
		cfg.Driver = ctx.String("driver")
	}
	if ctx.IsSet("headless") {
		cfg.Headless = ctx.Bool("headless")
	}
	if ctx.IsSet("remote") {
		cfg.RemoteURL = ctx.String("remote")
	}
	if ctx.IsSet("timeout") {
		cfg.Timeout = ctx.Int("timeout")
	}
}

func configFromContext(ctx *cli.Context) (*pagek.Config, error) {
	cfg, err := LoadConfig(ctx.String("config"), ctx.String("envfile"))
	if err != nil {
		return nil, err
	}
	ApplyFlags(ctx, cfg)
	return cfg, nil
}

// targetURL is taken as is when absolute, joined onto the OSF home otherwise
func targetURL(cfg *pagek.Config, url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "about:") {
		return url
	}
	return cfg.URL(url)
}

// params from name=value pairs
func params(pairs []string) (map[string]string, error) {
	ret := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid param %q, expected name=value", pair)
		}
		ret[name] = value
	}
	return ret, nil
}
