package gcdriver

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

var startupFlags = []string{
	"--enable-automation",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--no-first-run",
	"--window-size=1200,900",
	"--password-store=basic",
}

// LeaserService hands out debugger ports of running browsers
type LeaserService interface {
	Acquire() (string, error) // returns port number
	Return(port string) error
	Cleanup() (string, error)
	Count() (string, error)
}

// LocalLeaser starts chrome processes on this machine, each with its own
// profile directory below tmp
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*gcd.Gcd
	profiles    map[string]string
	chrome      string
	headless    bool
	tmp         string
}

// NewLocalLeaser for the chrome binary at path, found on the FS when empty
func NewLocalLeaser(path string, headless bool) *LocalLeaser {
	chrome, tmp := FindChrome()
	if path != "" {
		chrome = path
	}
	return &LocalLeaser{
		browsers: make(map[string]*gcd.Gcd),
		profiles: make(map[string]string),
		chrome:   chrome,
		headless: headless,
		tmp:      tmp,
	}
}

func (s *LocalLeaser) flags() []string {
	flags := append([]string{}, startupFlags...)
	if s.headless {
		flags = append(flags, "--headless")
	}
	return append(flags, "about:blank")
}

func (s *LocalLeaser) Acquire() (string, error) {
	profileDir, err := newProfile(s.tmp)
	if err != nil {
		return "", err
	}

	b := gcd.NewChromeDebugger()
	b.AddFlags(s.flags())
	port := randPort()
	if err := b.StartProcess(s.chrome, profileDir, port); err != nil {
		os.RemoveAll(profileDir)
		return "", errors.Wrapf(err, "starting %s", s.chrome)
	}

	s.browserLock.Lock()
	s.browsers[port] = b
	s.profiles[port] = profileDir
	s.browserLock.Unlock()
	log.Debug().Str("port", port).Str("chrome", s.chrome).Str("profile", profileDir).Msg("browser started")
	return port, nil
}

func (s *LocalLeaser) Count() (string, error) {
	s.browserLock.RLock()
	count := len(s.browsers)
	s.browserLock.RUnlock()
	return strconv.Itoa(count), nil
}

// Return exits the browser on port and removes its profile
func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	b, ok := s.browsers[port]
	profile := s.profiles[port]
	delete(s.browsers, port)
	delete(s.profiles, port)
	s.browserLock.Unlock()

	if !ok {
		return errors.Errorf("no browser leased on port %s", port)
	}

	err := b.ExitProcess()
	if rmErr := os.RemoveAll(profile); err == nil {
		err = rmErr
	}
	return err
}

// Cleanup returns every leased browser then removes profiles that browsers of
// earlier runs left below tmp
func (s *LocalLeaser) Cleanup() (string, error) {
	s.browserLock.RLock()
	ports := make([]string, 0, len(s.browsers))
	for port := range s.browsers {
		ports = append(ports, port)
	}
	s.browserLock.RUnlock()

	for _, port := range ports {
		if err := s.Return(port); err != nil {
			log.Warn().Err(err).Str("port", port).Msg("unable to return browser")
		}
	}

	removed, err := removeProfiles(s.tmp)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("removed %d profiles", removed), nil
}

func randPort() string {
	l, err := net.Listen("tcp", ":0")

	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9022")
		return "9022"
	}
	_, randPort, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return randPort
}

func newProfile(tmp string) (string, error) {
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating profile root %s", tmp)
	}
	profile, err := os.MkdirTemp(tmp, profilePattern)
	if err != nil {
		return "", errors.Wrap(err, "creating profile directory")
	}
	return profile, nil
}

const profilePattern = "gcd"

// removeProfiles below tmp, returning how many were removed
func removeProfiles(tmp string) (int, error) {
	profiles, err := filepath.Glob(filepath.Join(tmp, profilePattern+"*"))
	if err != nil {
		return 0, err
	}
	for i, profile := range profiles {
		if err := os.RemoveAll(profile); err != nil {
			return i, err
		}
	}
	return len(profiles), nil
}
