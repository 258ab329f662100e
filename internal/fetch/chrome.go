package fetch

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// FindChrome locates a Chrome or Chromium executable. An explicit path wins,
// then CHROME_PATH, then the usual install locations and PATH. It returns ""
// when nothing is found so chromedp can try its own default.
func FindChrome(explicit string) string {
	for _, path := range []string{explicit, os.Getenv("CHROME_PATH")} {
		if path == "" {
			continue
		}
		if isExecutable(path) {
			return path
		}
		log.Warn().Str("path", path).Msg("Configured Chrome path is not executable")
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "linux":
		candidates = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
		}
	}
	for _, path := range candidates {
		if isExecutable(path) {
			log.Debug().Str("path", path).Msg("Chrome found at standard location")
			return path
		}
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			log.Debug().Str("path", path).Msg("Chrome found in PATH")
			return path
		}
	}
	return ""
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return !info.IsDir()
	}
	return !info.IsDir() && info.Mode()&0111 != 0
}
