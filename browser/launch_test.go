package browser_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gitlab.com/osfpages/browser"
	"gitlab.com/osfpages/pagek"
)

func TestLaunchUnknownDriver(t *testing.T) {
	cfg := pagek.DefaultConfig()
	cfg.Driver = "netscape"

	drv, err := browser.Launch(context.Background(), cfg)
	assert.Nil(t, drv)
	assert.True(t, errors.Is(err, pagek.ErrUnknownDriver))
	assert.Contains(t, err.Error(), "chromedp")
}

func TestDrivers(t *testing.T) {
	assert.Equal(t, []string{
		"chrome", "chromedp", "firefox", "gcd",
		"playwright", "playwright-firefox", "playwright-webkit", "remote",
	}, browser.Drivers())
}
