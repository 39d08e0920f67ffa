package page

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/osfpages/pagek"
)

// Page is the base page object. It is either unverified or verified: Goto and
// Verify move it to verified when the identity locator resolves, Reload moves it
// back to unverified. The driver is shared and not owned by the page.
type Page struct {
	id       string
	drv      pagek.Driver
	url      string
	params   map[string]string
	identity *Locator
	verified bool
	timeouts *pagek.TimeoutSettings
}

// Option configures a Page
type Option func(*Page)

// WithURL the page lives at. It may hold {name} placeholders.
func WithURL(url string) Option {
	return func(p *Page) {
		p.url = url
	}
}

// WithTemplate url and the parameters to render it with
func WithTemplate(tmpl string, params map[string]string) Option {
	return func(p *Page) {
		p.url = tmpl
		for k, v := range params {
			p.params[k] = v
		}
	}
}

// WithParam binds a single url template parameter, such as guid
func WithParam(name, value string) Option {
	return func(p *Page) {
		p.params[name] = value
	}
}

// WithIdentity locator that must resolve for the page to verify
func WithIdentity(identity Locator) Option {
	return func(p *Page) {
		p.identity = &identity
	}
}

// WithTimeouts to inherit element, navigation and poll defaults from
func WithTimeouts(timeouts *pagek.TimeoutSettings) Option {
	return func(p *Page) {
		p.timeouts = pagek.NewTimeoutSettings(timeouts)
	}
}

// New unverified page on drv
func New(drv pagek.Driver, opts ...Option) *Page {
	p := &Page{
		id:       uuid.NewV4().String(),
		drv:      drv,
		params:   make(map[string]string),
		timeouts: pagek.NewTimeoutSettings(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open constructs a page and, when verify is set, checks that the driver is
// already on it. Open never navigates.
func Open(ctx context.Context, drv pagek.Driver, verify bool, opts ...Option) (*Page, error) {
	p := New(drv, opts...)
	if verify && !p.Verify(ctx) {
		return p, p.verificationErr(ctx)
	}
	return p, nil
}

func (p *Page) ID() string {
	return p.id
}

func (p *Page) Driver() pagek.Driver {
	return p.drv
}

func (p *Page) Timeouts() *pagek.TimeoutSettings {
	return p.timeouts
}

// Identity locator, nil if the page declares none
func (p *Page) Identity() *Locator {
	return p.identity
}

// URL rendered from the page's template and parameters
func (p *Page) URL() (string, error) {
	if p.url == "" {
		return "", pagek.ErrNoURL
	}
	return RenderURL(p.url, p.params)
}

// Goto navigates to the page url and verifies it. A page that does not verify
// returns a *pagek.VerificationErr.
func (p *Page) Goto(ctx context.Context) error {
	url, err := p.URL()
	if err != nil {
		return err
	}

	p.verified = false
	logger := log.Ctx(ctx).With().Str("page", p.id).Str("url", url).Logger()
	logger.Debug().Msg("navigating")

	navCtx, cancel := context.WithTimeout(ctx, p.timeouts.Navigation())
	defer cancel()

	if err := p.drv.Navigate(navCtx, url); err != nil {
		return errors.Wrapf(err, "navigating to %s", url)
	}

	if !p.Verify(ctx) {
		return p.verificationErr(ctx)
	}
	return nil
}

// Verify resolves the identity locator within its timeout. A page without an
// identity always verifies.
func (p *Page) Verify(ctx context.Context) bool {
	if p.identity == nil {
		p.verified = true
		return true
	}
	p.verified = p.identity.On(p).Present(ctx)
	if !p.verified {
		log.Ctx(ctx).Warn().Str("page", p.id).Str("identity", p.identity.String()).Msg("page failed verification")
	}
	return p.verified
}

func (p *Page) Verified() bool {
	return p.verified
}

// Reload the current document. Everything bound to the page resolves again on
// next use; the page must be verified again.
func (p *Page) Reload(ctx context.Context) error {
	p.verified = false
	navCtx, cancel := context.WithTimeout(ctx, p.timeouts.Navigation())
	defer cancel()
	return p.drv.Reload(navCtx)
}

func (p *Page) CurrentURL(ctx context.Context) (string, error) {
	return p.drv.CurrentURL(ctx)
}

// FindElements searches the whole document
func (p *Page) FindElements(ctx context.Context, by pagek.By, selector string) ([]pagek.Node, error) {
	return p.drv.FindElements(ctx, by, selector)
}

// Find binds loc to the page
func (p *Page) Find(loc Locator) *Element {
	return loc.On(p)
}

// FindAll binds g to the page
func (p *Page) FindAll(g Group) *Elements {
	return g.On(p)
}

// ScrollIntoView resolves el and scrolls it into the viewport
func (p *Page) ScrollIntoView(ctx context.Context, el *Element) error {
	return el.ScrollIntoView(ctx)
}

// verificationErr names the page url, or where the driver is when the page has
// no url of its own
func (p *Page) verificationErr(ctx context.Context) error {
	url, err := p.URL()
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("page", p.id).Msg("falling back to the current url")
		if url, err = p.drv.CurrentURL(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("page", p.id).Msg("unable to read current url")
		}
	}
	identity := ""
	if p.identity != nil {
		identity = p.identity.String()
	}
	return &pagek.VerificationErr{URL: url, Identity: identity}
}
