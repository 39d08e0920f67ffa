package pageutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/osfpages/mock"
	"gitlab.com/osfpages/page"
	"gitlab.com/osfpages/pagek"
	"gitlab.com/osfpages/pageutil"
)

func timeouts() *pagek.TimeoutSettings {
	return pagek.NewTimeoutSettings(nil).SetElement(200 * time.Millisecond).SetPoll(20 * time.Millisecond)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Center for Open Science", pageutil.CleanText("\n  Center for\n   Open Science \t"))
	assert.Equal(t, "", pageutil.CleanText(" \n "))
}

func TestGUIDFromURL(t *testing.T) {
	guid, err := pageutil.GUIDFromURL("https://osf.io/abc12/files/osfstorage", 3)
	require.NoError(t, err)
	assert.Equal(t, "abc12", guid)

	_, err = pageutil.GUIDFromURL("https://osf.io/", 7)
	assert.Error(t, err)
}

const metricsTable = `
<table id="institution-users"><thead><tr><th>Name</th><th>Projects</th></tr></thead>
<tbody>
  <tr><td>Ada Lovelace</td><td>4</td></tr>
  <tr><td>Grace Hopper</td><td>7</td></tr>
  <tr><td>Alan Turing</td><td>2</td></tr>
</tbody></table>`

func TestReadTable(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.SetHTML(metricsTable)
	p := page.New(d, page.WithTimeouts(timeouts()))
	table := page.ID("institution-users")

	n, data, err := pageutil.ReadTable(ctx, p, table, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Ada Lovelace", "4", "Grace Hopper", "7", "Alan Turing", "2"}, data)

	n, data, err = pageutil.ReadTable(ctx, p, table, "Grace")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Ada Lovelace", "4", "Grace Hopper"}, data)

	n, data, err = pageutil.ReadTable(ctx, p, page.ID("missing"), "")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, data)
}

func TestFindRowByText(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.SetHTML(metricsTable)
	p := page.New(d, page.WithTimeouts(timeouts()))

	row, err := pageutil.FindRowByText(ctx, p.FindAll(page.CSS("tbody tr").All()), "Turing")
	require.NoError(t, err)
	text, err := row.Text(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Alan Turing")
}

// windowless hides the mock's window support
type windowless struct {
	pagek.Driver
}

func TestTabs(t *testing.T) {
	ctx := context.Background()
	d := mock.NewDriver()
	d.Serve("https://osf.test/preprint.pdf", `<embed type="application/pdf">`)

	_, err := pageutil.SwitchToNewTab(ctx, d)
	assert.ErrorIs(t, err, pagek.ErrNotFound)

	time.AfterFunc(30*time.Millisecond, func() {
		d.OpenWindow("https://osf.test/preprint.pdf")
	})
	require.NoError(t, pageutil.WaitWindowAt(ctx, d, 1, time.Second))

	main, err := pageutil.SwitchToNewTab(ctx, d)
	require.NoError(t, err)
	url, _ := d.CurrentURL(ctx)
	assert.Equal(t, "https://osf.test/preprint.pdf", url)

	require.NoError(t, pageutil.CloseCurrentTab(ctx, d, main))
	current, _ := d.CurrentWindow(ctx)
	assert.Equal(t, main, current)
	handles, _ := d.WindowHandles(ctx)
	assert.Len(t, handles, 1)

	assert.ErrorIs(t, pageutil.WaitWindowAt(ctx, d, 1, 50*time.Millisecond), pagek.ErrTimedOut)

	_, err = pageutil.SwitchToNewTab(ctx, windowless{d})
	assert.ErrorIs(t, err, pageutil.ErrNoWindows)
}

func TestDownloadDir(t *testing.T) {
	cfg := pagek.DefaultConfig()
	cfg.DownloadDir = "/srv/downloads"
	dir, err := pageutil.DownloadDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/srv/downloads", dir)

	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg.DownloadDir = ""
	dir, err = pageutil.DownloadDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Downloads"), dir)
}

func TestLatestDownload(t *testing.T) {
	dir := t.TempDir()
	_, err := pageutil.LatestDownload(dir)
	assert.ErrorIs(t, err, pageutil.ErrNoDownloads)

	now := time.Now()
	for name, age := range map[string]time.Duration{
		"old.csv":    3 * time.Hour,
		"newest.txt": 0,
		"middle.pdf": time.Hour,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		require.NoError(t, os.Chtimes(path, now.Add(-age), now.Add(-age)))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "partial"), 0o755))

	latest, err := pageutil.LatestDownload(dir)
	require.NoError(t, err)
	assert.Equal(t, "newest.txt", latest)

	_, err = pageutil.LatestDownload(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestVerifyDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.csv"), []byte("a,b"), 0o644))
	assert.NoError(t, pageutil.VerifyDownload(dir, "report.csv"))

	stale := filepath.Join(dir, "last-week.csv")
	require.NoError(t, os.WriteFile(stale, []byte("a,b"), 0o644))
	old := time.Now().AddDate(0, 0, -7)
	require.NoError(t, os.Chtimes(stale, old, old))
	assert.ErrorIs(t, pageutil.VerifyDownload(dir, "last-week.csv"), pageutil.ErrNotDownloadedToday)

	assert.True(t, os.IsNotExist(errors.Cause(pageutil.VerifyDownload(dir, "missing.csv"))))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder"), 0o755))
	assert.Error(t, pageutil.VerifyDownload(dir, "folder"))
}
