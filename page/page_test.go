package page_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/osfpages/mock"
	"gitlab.com/osfpages/page"
	"gitlab.com/osfpages/pagek"
)

const projectURL = "https://osf.test/{guid}/"

var projectIdentity = page.ID("projectScope")

func projectPage(d *mock.Driver, guid string, opts ...page.Option) *page.Page {
	opts = append([]page.Option{
		page.WithTimeouts(testTimeouts()),
		page.WithTemplate(projectURL, map[string]string{"guid": guid}),
		page.WithIdentity(projectIdentity),
	}, opts...)
	return page.New(d, opts...)
}

func TestGotoVerifyFailsAfterTimeout(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.Serve("https://osf.test/abc12/", `<div id="notReady"></div>`)
	p := projectPage(d, "abc12", page.WithIdentity(page.CSS("#ready")))

	start := time.Now()
	err := p.Goto(ctx)
	elapsed := time.Since(start)

	var verr *pagek.VerificationErr
	require.True(t, errors.As(err, &verr), "expected verification error, got %v", err)
	assert.ErrorIs(t, err, pagek.ErrVerification)
	assert.Equal(t, "https://osf.test/abc12/", verr.URL)
	assert.False(t, p.Verified())
	assert.GreaterOrEqual(t, elapsed, testTimeout-testPoll)
	assert.Less(t, elapsed, testTimeout+300*time.Millisecond)

	assert.False(t, p.Verify(ctx))
}

func TestGotoVerifiesImmediately(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.Serve("https://osf.test/abc12/", `<div id="projectScope"></div>`)
	p := projectPage(d, "abc12")

	start := time.Now()
	require.NoError(t, p.Goto(ctx))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.True(t, p.Verified())
	assert.Equal(t, 1, d.Navigations())

	url, err := p.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://osf.test/abc12/", url)
}

func TestReloadResolvesFreshNodes(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.Serve("https://osf.test/abc12/", `<div id="projectScope"><h2 id="nodeTitleEditable">Title</h2></div>`)
	p := projectPage(d, "abc12")
	require.NoError(t, p.Goto(ctx))

	title := p.Find(page.ID("nodeTitleEditable"))
	before, err := title.Resolve(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Reload(ctx))
	assert.False(t, p.Verified())
	assert.Equal(t, 1, d.Reloads())

	_, err = before.Text(ctx)
	assert.True(t, pagek.IsStale(err), "old node should be stale after reload: %v", err)

	after, err := title.Resolve(ctx)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	text, err := title.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Title", text)

	assert.True(t, p.Verify(ctx))
	assert.True(t, p.Verified())
}

func TestURLTemplate(t *testing.T) {
	d := mock.NewDriver()

	p := projectPage(d, "abc12")
	url, err := p.URL()
	require.NoError(t, err)
	assert.Equal(t, "https://osf.test/abc12/", url)

	files := page.New(d, page.WithURL("https://osf.test/{guid}/files/{provider}/"), page.WithParam("guid", "abc12"))
	_, err = files.URL()
	assert.ErrorIs(t, err, pagek.ErrMissingURLParam)
	assert.ErrorIs(t, files.Goto(context.Background()), pagek.ErrMissingURLParam)
	assert.Equal(t, 0, d.Navigations())

	_, err = page.New(d).URL()
	assert.ErrorIs(t, err, pagek.ErrNoURL)

	inst, err := page.RenderURL("https://osf.test/institutions/{id}/dashboard", map[string]string{"id": "cos"})
	require.NoError(t, err)
	assert.Equal(t, "https://osf.test/institutions/cos/dashboard", inst)
}

func TestOpenWithVerify(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.SetHTML(`<div id="projectScope"></div>`)

	p, err := page.Open(ctx, d, true, page.WithTimeouts(testTimeouts()), page.WithIdentity(projectIdentity))
	require.NoError(t, err)
	assert.True(t, p.Verified())
	assert.Equal(t, 0, d.Navigations())

	d.SetHTML(`<div id="somethingElse"></div>`)
	var logs bytes.Buffer
	logged := zerolog.New(&logs).WithContext(ctx)
	_, err = page.Open(logged, d, true, page.WithTimeouts(testTimeouts()), page.WithIdentity(projectIdentity.WithTimeout(50*time.Millisecond)))
	assert.ErrorIs(t, err, pagek.ErrVerification)
	var verr *pagek.VerificationErr
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "about:blank", verr.URL)
	assert.Contains(t, logs.String(), pagek.ErrNoURL.Error())

	d.Close()
	logs.Reset()
	_, err = page.Open(logged, d, true, page.WithTimeouts(testTimeouts()), page.WithIdentity(projectIdentity.WithTimeout(50*time.Millisecond)))
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, verr.URL)
	assert.Contains(t, logs.String(), "unable to read current url")
	assert.Contains(t, logs.String(), mock.ErrClosed.Error())

	p, err = page.Open(ctx, d, false, page.WithIdentity(projectIdentity))
	require.NoError(t, err)
	assert.False(t, p.Verified())
	assert.NotEmpty(t, p.ID())
}

func TestPageWithoutIdentityVerifies(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.Serve("https://osf.test/", `<p>home</p>`)

	p := page.New(d, page.WithURL("https://osf.test/"))
	assert.Nil(t, p.Identity())
	require.NoError(t, p.Goto(ctx))
	assert.True(t, p.Verified())
}

func TestGotoNavigationError(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	p := projectPage(d, "missing")

	err := p.Goto(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, mock.ErrNoSuchPage)
	assert.False(t, errors.Is(err, pagek.ErrVerification))
}

func TestLocatorBeforeNavigationTimesOut(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	p := projectPage(d, "abc12")

	assert.False(t, p.Find(page.ID("nodeTitleEditable", 50*time.Millisecond)).Present(ctx))
	assert.Equal(t, 0, d.Navigations())
}

func TestGotoVerifiesXPathIdentity(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	defer d.Close()
	d.Serve("https://osf.test/abc12/", `<div id="loading"></div>`)
	p := projectPage(d, "abc12", page.WithIdentity(page.XPath("//div[@id='projectScope']//h2")))

	require.NoError(t, d.Navigate(ctx, "https://osf.test/abc12/"))
	d.ScheduleHTML(40*time.Millisecond, `<div id="projectScope"><h2>Cats</h2></div>`)
	assert.True(t, p.Verify(ctx))
	assert.True(t, p.Find(page.XPath("//h2[normalize-space(.)='Cats']")).Present(ctx))
}
