package pagek_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gitlab.com/osfpages/pagek"
)

func TestErrorTaxonomy(t *testing.T) {
	var timeout error = &pagek.ResolutionTimeoutErr{Locator: `css selector "#ready"`, Timeout: time.Second}
	assert.True(t, pagek.IsNotFound(timeout))
	assert.False(t, pagek.IsStale(timeout))
	assert.Contains(t, timeout.Error(), "#ready")

	var verify error = &pagek.VerificationErr{URL: "http://x/", Identity: "#ready"}
	assert.ErrorIs(t, verify, pagek.ErrVerification)
	assert.False(t, errors.Is(verify, pagek.ErrNotFound))

	appeared := &pagek.HereThenGoneErr{Stage: pagek.ErrNeverAppeared, Locator: ".toast"}
	gone := &pagek.HereThenGoneErr{Stage: pagek.ErrNeverGone, Locator: ".toast"}
	assert.ErrorIs(t, appeared, pagek.ErrNeverAppeared)
	assert.ErrorIs(t, gone, pagek.ErrNeverGone)
	assert.False(t, errors.Is(appeared, pagek.ErrNeverGone))

	var htg *pagek.HereThenGoneErr
	wrapped := errors.Wrap(gone, "waiting for loading indicator")
	assert.True(t, errors.As(wrapped, &htg))
	assert.Equal(t, pagek.ErrNeverGone, htg.Stage)
}

func TestMapStale(t *testing.T) {
	assert.Nil(t, pagek.MapStale(nil))

	stale := pagek.MapStale(errors.New("stale element reference: element is not attached to the page document"))
	assert.True(t, pagek.IsStale(stale))

	cdp := pagek.MapStale(errors.New("Could not find node with given id (-32000)"))
	assert.True(t, pagek.IsStale(cdp))

	other := errors.New("element not interactable")
	assert.Equal(t, other, pagek.MapStale(other))
}

func TestUnsupportedStrategyMessage(t *testing.T) {
	err := &pagek.UnsupportedStrategyErr{By: `shadow "root"`}
	assert.Equal(t, `Unsupported locator strategy "shadow \"root\""`, err.Error())
	assert.ErrorIs(t, err, pagek.ErrUnsupportedStrategy)

	err.Message = "css only"
	assert.Equal(t, `Unsupported locator strategy "shadow \"root\"": css only`, err.Error())
}
