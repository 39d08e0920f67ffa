package pwdriver

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/osfpages/pagek"
)

func TestSelector(t *testing.T) {
	var tests = []struct {
		by       pagek.By
		selector string
		want     string
	}{
		{pagek.ByCSS, "div.row", "css=div.row"},
		{pagek.ByID, "title", `css=[id="title"]`},
		{pagek.ByClassName, "btn", "css=.btn"},
		{pagek.ByXPath, "//h1", "xpath=//h1"},
		{pagek.ByLinkText, "Files", "xpath=//a[normalize-space(.)='Files']"},
	}
	for _, tt := range tests {
		got, err := Selector(tt.by, tt.selector)
		require.NoError(t, err, tt.by)
		assert.Equal(t, tt.want, got, tt.by)
	}

	_, err := Selector(pagek.By("shadow"), "x")
	assert.True(t, errors.Is(err, pagek.ErrUnsupportedStrategy))
}

func TestNodesMapsDetached(t *testing.T) {
	_, err := nodes(nil, errors.New("Element is not attached to the DOM"))
	assert.True(t, pagek.IsStale(err))

	found, err := nodes(nil, nil)
	assert.NoError(t, err)
	assert.Empty(t, found)
}

func TestTimeoutMillis(t *testing.T) {
	assert.Nil(t, timeoutMillis(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ms := timeoutMillis(ctx)
	require.NotNil(t, ms)
	assert.InDelta(t, 2000, *ms, 200)
}

type recordingHandle struct {
	playwright.ElementHandle
	queries []string
}

func (h *recordingHandle) QuerySelectorAll(selector string) ([]playwright.ElementHandle, error) {
	h.queries = append(h.queries, selector)
	return nil, nil
}

func TestNodeFindElementsAnchorsXPath(t *testing.T) {
	h := &recordingHandle{}
	n := &Node{h: h}
	ctx := context.Background()

	for _, sel := range []struct {
		by  pagek.By
		sel string
	}{
		{pagek.ByXPath, "//button"},
		{pagek.ByXPath, "/div/span"},
		{pagek.ByLinkText, "Files"},
		{pagek.ByCSS, "li.file"},
	} {
		_, err := n.FindElements(ctx, sel.by, sel.sel)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"xpath=.//button",
		"xpath=./div/span",
		"xpath=.//a[normalize-space(.)='Files']",
		"css=li.file",
	}, h.queries)
}
