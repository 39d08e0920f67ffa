package pagek

import (
	"strings"
	"time"
)

// Credentials for logging into the target site
type Credentials struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Email    string `toml:"email"`
}

// Config for a test session. Timeouts are whole seconds, the poll interval is in
// milliseconds, so the values read the same in toml files and the environment.
type Config struct {
	OSFHome         string      `toml:"osf_home" envconfig:"HOME_URL"`
	APIDomain       string      `toml:"api_domain" envconfig:"API_DOMAIN"`
	Driver          string      `toml:"driver" envconfig:"DRIVER"`
	Headless        bool        `toml:"headless" envconfig:"HEADLESS"`
	DriverPath      string      `toml:"driver_path" envconfig:"DRIVER_PATH"`
	BrowserPath     string      `toml:"browser_path" envconfig:"BROWSER_PATH"`
	RemoteURL       string      `toml:"remote_url" envconfig:"REMOTE_URL"`
	DownloadDir     string      `toml:"download_dir" envconfig:"DOWNLOAD_DIR"`
	QuickTimeout    int         `toml:"quick_timeout" envconfig:"QUICK_TIMEOUT"`
	Timeout         int         `toml:"timeout" envconfig:"TIMEOUT"`
	LongTimeout     int         `toml:"long_timeout" envconfig:"LONG_TIMEOUT"`
	VeryLongTimeout int         `toml:"very_long_timeout" envconfig:"VERY_LONG_TIMEOUT"`
	PollMillis      int         `toml:"poll_ms" envconfig:"POLL_MS"`
	User            Credentials `toml:"user" envconfig:"USER_ONE"`
	User2           Credentials `toml:"user2" envconfig:"USER_TWO"`
}

// DefaultConfig points at the staging environment with a local headless chrome
func DefaultConfig() *Config {
	return &Config{
		OSFHome:         "https://staging.osf.io",
		APIDomain:       "https://api.staging.osf.io",
		Driver:          "chrome",
		Headless:        true,
		QuickTimeout:    int(QuickTimeout / time.Second),
		Timeout:         int(DefaultTimeout / time.Second),
		LongTimeout:     int(LongTimeout / time.Second),
		VeryLongTimeout: int(VeryLongTimeout / time.Second),
		PollMillis:      int(DefaultPoll / time.Millisecond),
	}
}

func seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func (c *Config) Quick() time.Duration {
	return seconds(c.QuickTimeout, QuickTimeout)
}

func (c *Config) Default() time.Duration {
	return seconds(c.Timeout, DefaultTimeout)
}

func (c *Config) Long() time.Duration {
	return seconds(c.LongTimeout, LongTimeout)
}

func (c *Config) VeryLong() time.Duration {
	return seconds(c.VeryLongTimeout, VeryLongTimeout)
}

func (c *Config) Poll() time.Duration {
	if c.PollMillis <= 0 {
		return DefaultPoll
	}
	return time.Duration(c.PollMillis) * time.Millisecond
}

// TimeoutSettings root for every page opened with this config
func (c *Config) TimeoutSettings() *TimeoutSettings {
	return NewTimeoutSettings(nil).
		SetElement(c.Default()).
		SetNavigation(c.Long()).
		SetPoll(c.Poll())
}

// URL joins path onto OSFHome
func (c *Config) URL(path string) string {
	return strings.TrimRight(c.OSFHome, "/") + "/" + strings.TrimLeft(path, "/")
}
