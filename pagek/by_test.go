package pagek_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/osfpages/pagek"
)

func TestParseBy(t *testing.T) {
	var inputs = []struct {
		in  string
		out pagek.By
	}{
		{"css", pagek.ByCSS},
		{"CSS Selector", pagek.ByCSS},
		{" xpath ", pagek.ByXPath},
		{"link-text", pagek.ByLinkText},
		{"partial link text", pagek.ByPartialLinkText},
		{"class-name", pagek.ByClassName},
		{"tag name", pagek.ByTagName},
	}

	for _, in := range inputs {
		by, err := pagek.ParseBy(in.in)
		require.NoError(t, err, in.in)
		assert.Equal(t, in.out, by, in.in)
	}

	_, err := pagek.ParseBy("sizzle")
	require.Error(t, err)
	assert.ErrorIs(t, err, pagek.ErrUnsupportedStrategy)
}

func TestByCSS(t *testing.T) {
	var inputs = []struct {
		by  pagek.By
		sel string
		out string
		ok  bool
	}{
		{pagek.ByCSS, "div > a", "div > a", true},
		{pagek.ByID, "projectScope", `[id="projectScope"]`, true},
		{pagek.ByName, "q", `[name="q"]`, true},
		{pagek.ByClassName, "ball-pulse", ".ball-pulse", true},
		{pagek.ByTagName, "table", "table", true},
		{pagek.ByLinkText, "Make Public", "", false},
		{pagek.ByXPath, "//div", "", false},
	}

	for _, in := range inputs {
		out, ok := in.by.CSS(in.sel)
		assert.Equal(t, in.ok, ok, in.by)
		assert.Equal(t, in.out, out, in.by)
	}
}

func TestByXPath(t *testing.T) {
	var inputs = []struct {
		by  pagek.By
		sel string
		out string
	}{
		{pagek.ByID, "projectScope", "//*[@id='projectScope']"},
		{pagek.ByLinkText, " Make Public ", "//a[normalize-space(.)='Make Public']"},
		{pagek.ByPartialLinkText, "Public", "//a[contains(., 'Public')]"},
		{pagek.ByTagName, "tr", "//tr"},
		{pagek.ByID, "it's", `//*[@id="it's"]`},
		{pagek.ByID, `it's "x"`, `//*[@id=concat('it', "'", 's "x"')]`},
	}

	for _, in := range inputs {
		out, ok := in.by.XPath(in.sel)
		require.True(t, ok, in.by)
		assert.Equal(t, in.out, out, in.sel)
	}

	_, ok := pagek.ByCSS.XPath("div")
	assert.False(t, ok)
}

func TestRelativeXPath(t *testing.T) {
	var inputs = []struct {
		in  string
		out string
	}{
		{"//button", ".//button"},
		{"/html/body/div", "./html/body/div"},
		{"(//li)[2]", "(.//li)[2]"},
		{".//button", ".//button"},
		{"button", "button"},
		{"descendant::a", "descendant::a"},
	}

	for _, in := range inputs {
		assert.Equal(t, in.out, pagek.RelativeXPath(in.in), in.in)
	}
}
