package pageutil

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/osfpages/pagek"
)

// revive:exported
var (
	ErrNoDownloads        = errors.New("no downloaded files")
	ErrNotDownloadedToday = errors.New("file was not downloaded today")
)

// DownloadDir the browsers save to: cfg.DownloadDir, or ~/Downloads when unset
func DownloadDir(cfg *pagek.Config) (string, error) {
	if cfg != nil && cfg.DownloadDir != "" {
		return cfg.DownloadDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locating home directory")
	}
	return filepath.Join(home, "Downloads"), nil
}

// LatestDownload is the name of the most recently modified file in dir
func LatestDownload(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, "reading downloads in %s", dir)
	}

	var (
		newest  string
		newestT time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", errors.Wrap(err, entry.Name())
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest, newestT = entry.Name(), info.ModTime()
		}
	}
	if newest == "" {
		return "", errors.Wrap(ErrNoDownloads, dir)
	}
	return newest, nil
}

// VerifyDownload checks that name exists in dir and was modified today, local time
func VerifyDownload(dir, name string) error {
	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		return errors.Wrapf(err, "downloaded file %s", name)
	}
	if info.IsDir() {
		return errors.Errorf("downloaded file %s is a directory", name)
	}
	if !sameDay(info.ModTime(), time.Now()) {
		return errors.Wrapf(ErrNotDownloadedToday, "%s modified %s", name, info.ModTime().Format(time.RFC3339))
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
