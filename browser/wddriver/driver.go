// Package wddriver drives browsers over the webdriver protocol with tebeka/selenium
package wddriver

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"gitlab.com/osfpages/pagek"
)

// ErrNoDriverBinary when neither the config nor PATH name a driver binary
var ErrNoDriverBinary = errors.New("webdriver binary not found")

// downloadTypes firefox saves without asking
const downloadTypes = "text/plain, application/octet-stream, application/binary, text/csv, application/csv, " +
	"application/excel, text/comma-separated-values, text/xml, application/xml, binary/octet-stream"

// FirefoxPrefs that keep downloads and new windows inside the session
func FirefoxPrefs(downloadDir string) map[string]interface{} {
	prefs := map[string]interface{}{
		"browser.download.folderList":                  1,
		"browser.download.manager.showWhenStarting":    false,
		"browser.helperApps.alwaysAsk.force":           false,
		"browser.download.manager.alertOnEXEOpen":      false,
		"browser.download.manager.closeWhenDone":       true,
		"browser.download.manager.showAlertOnComplete": false,
		"browser.download.manager.useWindow":           false,
		"browser.helperApps.neverAsk.saveToDisk":       downloadTypes,
		"network.cookie.cookieBehavior":                4,
		"browser.link.open_newwindow":                  3,
	}
	if downloadDir != "" {
		prefs["browser.download.folderList"] = 2
		prefs["browser.download.dir"] = downloadDir
	}
	return prefs
}

// Capabilities for cfg.Driver
func Capabilities(cfg *pagek.Config) selenium.Capabilities {
	switch cfg.Driver {
	case "firefox", "remote":
		caps := selenium.Capabilities{"browserName": "firefox"}
		ff := firefox.Capabilities{Prefs: FirefoxPrefs(cfg.DownloadDir)}
		if cfg.Headless && cfg.Driver != "remote" {
			ff.Args = append(ff.Args, "-headless")
		}
		if cfg.BrowserPath != "" {
			ff.Binary = cfg.BrowserPath
		}
		caps.AddFirefox(ff)
		return caps
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	ch := chrome.Capabilities{
		Args:  []string{"--disable-dev-shm-usage", "--no-sandbox", "--window-size=1200,600"},
		Prefs: map[string]interface{}{"download.default_directory": cfg.DownloadDir},
	}
	if cfg.Headless {
		ch.Args = append(ch.Args, "--headless", "--disable-gpu")
	}
	if cfg.BrowserPath != "" {
		ch.Path = cfg.BrowserPath
	}
	caps.AddChrome(ch)
	return caps
}

// Driver is a webdriver session, optionally with the local driver service it
// talks to
type Driver struct {
	wd      selenium.WebDriver
	service *selenium.Service
}

// Launch a session for cfg. "remote" connects to cfg.RemoteURL, "firefox" starts
// geckodriver and anything else chromedriver.
func Launch(ctx context.Context, cfg *pagek.Config) (*Driver, error) {
	caps := Capabilities(cfg)
	if cfg.Driver == "remote" {
		wd, err := selenium.NewRemote(caps, cfg.RemoteURL)
		if err != nil {
			return nil, errors.Wrapf(err, "connecting to %s", cfg.RemoteURL)
		}
		return newDriver(ctx, wd, nil), nil
	}

	binary := "chromedriver"
	start := selenium.NewChromeDriverService
	if cfg.Driver == "firefox" {
		binary = "geckodriver"
		start = selenium.NewGeckoDriverService
	}

	path := cfg.DriverPath
	if path == "" {
		var err error
		if path, err = exec.LookPath(binary); err != nil {
			return nil, errors.Wrap(ErrNoDriverBinary, binary)
		}
	}

	port, err := freePort()
	if err != nil {
		return nil, err
	}
	service, err := start(path, port)
	if err != nil {
		return nil, errors.Wrapf(err, "starting %s", path)
	}

	prefix := fmt.Sprintf("http://localhost:%d", port)
	if cfg.Driver != "firefox" {
		prefix += "/wd/hub"
	}
	wd, err := selenium.NewRemote(caps, prefix)
	if err != nil {
		service.Stop()
		return nil, errors.Wrap(err, "creating webdriver session")
	}
	return newDriver(ctx, wd, service), nil
}

func newDriver(ctx context.Context, wd selenium.WebDriver, service *selenium.Service) *Driver {
	if err := wd.MaximizeWindow(""); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("unable to maximize window")
	}
	return &Driver{wd: wd, service: service}
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.wd.Get(url)
}

func (d *Driver) Reload(ctx context.Context) error {
	return d.wd.Refresh()
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	return d.wd.CurrentURL()
}

func (d *Driver) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	found, err := d.wd.FindElements(string(by), selector)
	return nodes(d, found, err)
}

func nodes(d *Driver, found []selenium.WebElement, err error) ([]pagek.Node, error) {
	if err != nil {
		if isNoSuchElement(err) {
			return []pagek.Node{}, nil
		}
		return nil, pagek.MapStale(err)
	}
	ret := make([]pagek.Node, 0, len(found))
	for _, e := range found {
		ret = append(ret, &Node{d: d, e: e})
	}
	return ret, nil
}

func isNoSuchElement(err error) bool {
	var wdErr *selenium.Error
	if errors.As(err, &wdErr) {
		return wdErr.Err == "no such element"
	}
	return strings.Contains(err.Error(), "no such element")
}

func (d *Driver) WindowHandles(ctx context.Context) ([]string, error) {
	return d.wd.WindowHandles()
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	return d.wd.CurrentWindowHandle()
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	return d.wd.SwitchWindow(handle)
}

func (d *Driver) CloseWindow(ctx context.Context) error {
	handle, err := d.wd.CurrentWindowHandle()
	if err != nil {
		return err
	}
	return d.wd.CloseWindow(handle)
}

// Close quits the session and stops the local driver service
func (d *Driver) Close() error {
	err := d.wd.Quit()
	if d.service != nil {
		if stopErr := d.service.Stop(); err == nil {
			err = stopErr
		}
	}
	return err
}
