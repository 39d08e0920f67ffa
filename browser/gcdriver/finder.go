package gcdriver

import (
	"os"
	"runtime"
)

var linuxChromes = []string{
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
}

// FindChrome on the FS, returns the binary and a tmp dir for profiles
func FindChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\gcd\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/gcd/"
	case "linux":
		for _, c := range linuxChromes {
			if _, err := os.Stat(c); err == nil {
				return c, "/tmp/gcd/"
			}
		}
		return linuxChromes[0], "/tmp/gcd/"
	}
	return "", "tmp"
}
