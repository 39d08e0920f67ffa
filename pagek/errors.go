package pagek

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// revive:exported
var (
	ErrNotFound            = errors.New("element not found")
	ErrStaleReference      = errors.New("stale element reference")
	ErrVerification        = errors.New("page verification failed")
	ErrNeverAppeared       = errors.New("element never appeared")
	ErrNeverGone           = errors.New("element never went away")
	ErrUnsupportedStrategy = errors.New("unsupported locator strategy")
	ErrMissingURLParam     = errors.New("missing url parameter")
	ErrNoURL               = errors.New("page has no url")
	ErrTimedOut            = errors.New("wait timed out")
	ErrUnknownDriver       = errors.New("unknown driver")
)

// ResolutionTimeoutErr when a locator did not match anything before its timeout
type ResolutionTimeoutErr struct {
	Locator string
	Timeout time.Duration
}

func (e *ResolutionTimeoutErr) Error() string {
	return fmt.Sprintf("Unable to find element %s after %s", e.Locator, e.Timeout)
}

// Unwrap so errors.Is(err, ErrNotFound) holds
func (e *ResolutionTimeoutErr) Unwrap() error {
	return ErrNotFound
}

// VerificationErr when a page's identity locator could not be resolved
type VerificationErr struct {
	URL      string
	Identity string
}

func (e *VerificationErr) Error() string {
	return fmt.Sprintf("Unable to verify page %s: identity %s not found", e.URL, e.Identity)
}

func (e *VerificationErr) Unwrap() error {
	return ErrVerification
}

// HereThenGoneErr reports which stage of an appear-then-disappear wait hung.
// Stage is either ErrNeverAppeared or ErrNeverGone.
type HereThenGoneErr struct {
	Stage   error
	Locator string
	Timeout time.Duration
}

func (e *HereThenGoneErr) Error() string {
	return fmt.Sprintf("%s: %s within %s", e.Locator, e.Stage, e.Timeout)
}

func (e *HereThenGoneErr) Unwrap() error {
	return e.Stage
}

// UnsupportedStrategyErr when a driver (or scope) can not search with a strategy
type UnsupportedStrategyErr struct {
	By      By
	Message string
}

func (e *UnsupportedStrategyErr) Error() string {
	if e.Message == "" {
		return "Unsupported locator strategy " + strconv.Quote(string(e.By))
	}
	return "Unsupported locator strategy " + strconv.Quote(string(e.By)) + ": " + e.Message
}

func (e *UnsupportedStrategyErr) Unwrap() error {
	return ErrUnsupportedStrategy
}

// IsStale reports whether err means a node handle outlived its document
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleReference)
}

// IsNotFound reports a driver level or timed out "no such element"
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StaleMessages are substrings automation backends use for detached nodes
var StaleMessages = []string{
	"stale element reference",
	"node with given id does not belong to the document",
	"could not find node with given id",
	"element is not attached to the dom",
	"no node with given id found",
	"node is detached from document",
}

// MapStale converts a backend error carrying a detached node message to
// ErrStaleReference, leaving every other error untouched
func MapStale(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, s := range StaleMessages {
		if strings.Contains(msg, s) {
			return errors.Wrap(ErrStaleReference, err.Error())
		}
	}
	return err
}
