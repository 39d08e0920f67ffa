package page_test

import (
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/osfpages/page"
)

const modalHTML = `
<button class="btn-primary">Outside</button>
<div class="modal" id="createProject">
  <input class="title" value="">
  <button class="btn-primary">Create</button>
  <div class="footer"><button class="btn-primary">Cancel</button></div>
</div>`

type createProjectModal struct {
	*page.Region
}

var (
	modalButton = page.CSS("button.btn-primary")
	modalTitle  = page.CSS("input.title")
	modalFooter = page.Component(func(r *page.Region) *page.Region { return r }, page.CSS(".footer"))
)

var createProject = page.Component(func(r *page.Region) *createProjectModal {
	return &createProjectModal{Region: r}
}, page.CSS("#createProject"))

func TestComponentContainment(t *testing.T) {
	ctx := context.Background()
	_, p := testPage(modalHTML)

	modal := createProject.On(p)
	buttons, err := modal.FindAll(modalButton.All()).Texts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Create", "Cancel"}, buttons)

	first, err := modal.Find(modalButton).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Create", first)

	all, err := p.FindAll(modalButton.All()).Texts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	footer := modalFooter.On(modal)
	cancel, err := footer.Find(modalButton).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cancel", cancel)
	assert.Same(t, modal.Driver(), p.Driver())
}

func TestComponentMissingRoot(t *testing.T) {
	ctx := context.Background()
	d, p := testPage(`<button class="btn-primary">Outside</button>`)

	modal := createProject.On(p)
	assert.False(t, modal.Find(modalButton.WithTimeout(60*time.Millisecond)).Present(ctx))
	assert.True(t, modal.Find(modalTitle.WithTimeout(60*time.Millisecond)).Absent(ctx))
	assert.False(t, modal.Root().Present(ctx))

	d.SetHTML(modalHTML)
	assert.True(t, modal.Find(modalTitle).Present(ctx))
}

func TestComponentRootResolvedFreshly(t *testing.T) {
	ctx := context.Background()
	d, p := testPage(modalHTML)
	defer d.Close()

	modal := createProject.On(p)
	require.True(t, modal.Find(modalTitle).Present(ctx))

	d.SetHTML(`<div class="modal" id="createProject"><input class="title" value="second"></div>`)
	v, err := modal.Find(modalTitle).Attribute(ctx, "value")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	d.Schedule(40*time.Millisecond, func(doc *goquery.Document) {
		doc.Find("#createProject").Remove()
	})
	assert.True(t, createProject.On(p).Root().Absent(ctx))
}

func TestUnscopedComponent(t *testing.T) {
	ctx := context.Background()
	_, p := testPage(modalHTML)

	whole := page.Component(func(r *page.Region) *page.Region { return r }).On(p)
	assert.Nil(t, whole.Root())
	all, err := whole.FindAll(modalButton.All()).Texts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

var (
	modalButtonXPath = page.XPath("//button[contains(@class, 'btn-primary')]")
	modalTitleXPath  = page.XPath("//input[@class='title']")
)

func TestComponentContainmentXPath(t *testing.T) {
	ctx := context.Background()
	_, p := testPage(modalHTML)

	modal := createProject.On(p)
	buttons, err := modal.FindAll(modalButtonXPath.All()).Texts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Create", "Cancel"}, buttons)

	all, err := p.FindAll(modalButtonXPath.All()).Texts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Outside", "Create", "Cancel"}, all)

	footer := modalFooter.On(modal)
	cancel, err := footer.Find(modalButtonXPath).Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cancel", cancel)

	assert.True(t, modal.Find(modalTitleXPath).Present(ctx))
	outside := page.Component(func(r *page.Region) *page.Region { return r }, page.XPath("//div[@class='footer']")).On(modal)
	assert.True(t, outside.Find(page.XPath("//input[@class='title']", 60*time.Millisecond)).Absent(ctx))
}
