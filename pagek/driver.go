package pagek

import "context"

// Searcher finds nodes matching a strategy/selector pair. Zero matches is not an
// error: implementations return an empty slice and a nil error.
type Searcher interface {
	FindElements(ctx context.Context, by By, selector string) ([]Node, error)
}

// Node is a live handle to a DOM element. A node is only valid until the document
// that owns it changes; operations on a detached node return ErrStaleReference.
type Node interface {
	Searcher
	Click(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Clear(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	// Attribute returns the empty string when the attribute is not set
	Attribute(ctx context.Context, name string) (string, error)
	ScrollIntoView(ctx context.Context) error
}

// Driver is a browser session. It is shared by every page and component created
// during a test and outlives them.
type Driver interface {
	Searcher
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Windower is implemented by drivers that can manage multiple tabs/windows
type Windower interface {
	WindowHandles(ctx context.Context) ([]string, error)
	CurrentWindow(ctx context.Context) (string, error)
	SwitchWindow(ctx context.Context, handle string) error
	CloseWindow(ctx context.Context) error
}
