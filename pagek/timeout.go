package pagek

import "time"

// Default waits, mirroring the suite wide QUICK/DEFAULT/LONG/VERY_LONG settings
const (
	QuickTimeout    = 3 * time.Second
	DefaultTimeout  = 10 * time.Second
	LongTimeout     = 30 * time.Second
	VeryLongTimeout = 60 * time.Second
	DefaultPoll     = 500 * time.Millisecond
)

// TimeoutSettings hold element, navigation and poll defaults. Unset values fall
// back to the parent settings, then to the package defaults.
type TimeoutSettings struct {
	parent     *TimeoutSettings
	element    *time.Duration
	navigation *time.Duration
	poll       *time.Duration
}

// NewTimeoutSettings with an optional parent to inherit unset values from
func NewTimeoutSettings(parent *TimeoutSettings) *TimeoutSettings {
	return &TimeoutSettings{parent: parent}
}

// SetElement wait used by locators that declare no timeout of their own
func (t *TimeoutSettings) SetElement(timeout time.Duration) *TimeoutSettings {
	t.element = &timeout
	return t
}

// SetNavigation timeout handed to the driver through the navigation context
func (t *TimeoutSettings) SetNavigation(timeout time.Duration) *TimeoutSettings {
	t.navigation = &timeout
	return t
}

// SetPoll interval between resolution attempts
func (t *TimeoutSettings) SetPoll(poll time.Duration) *TimeoutSettings {
	t.poll = &poll
	return t
}

func (t *TimeoutSettings) Element() time.Duration {
	if t == nil {
		return DefaultTimeout
	}
	if t.element != nil {
		return *t.element
	}
	if t.parent != nil {
		return t.parent.Element()
	}
	return DefaultTimeout
}

// Navigation defaults to LongTimeout when no settings in the chain set it
func (t *TimeoutSettings) Navigation() time.Duration {
	if t == nil {
		return LongTimeout
	}
	if t.navigation != nil {
		return *t.navigation
	}
	if t.parent != nil {
		return t.parent.Navigation()
	}
	return LongTimeout
}

func (t *TimeoutSettings) Poll() time.Duration {
	if t == nil {
		return DefaultPoll
	}
	if t.poll != nil {
		return *t.poll
	}
	if t.parent != nil {
		return t.parent.Poll()
	}
	return DefaultPoll
}
