package chrome

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// lookPathNames are tried against PATH after the fixed locations.
var lookPathNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"msedge",
	"brave-browser",
}

// Locate finds a Chrome/Chromium executable. An explicit path wins, then
// CHROME_PATH, then the well-known install locations for the current OS, then
// PATH. An empty result lets chromedp fall back to its own lookup.
func Locate(explicit string) string {
	for _, p := range []string{explicit, os.Getenv("CHROME_PATH")} {
		if p == "" {
			continue
		}
		if isExecutable(p) {
			return p
		}
		log.Warn().Str("path", p).Msg("Configured Chrome path is not executable")
	}

	for _, p := range candidates(runtime.GOOS, os.Getenv("HOME")) {
		if isExecutable(p) {
			log.Debug().Str("path", p).Str("os", runtime.GOOS).Msg("Chrome found at standard location")
			return p
		}
	}

	for _, name := range lookPathNames {
		if p, err := exec.LookPath(name); err == nil {
			log.Debug().Str("path", p).Msg("Chrome found in PATH")
			return p
		}
	}

	log.Warn().Str("os", runtime.GOOS).Msg("Chrome not found, falling back to chromedp default")
	return ""
}

func candidates(goos, home string) []string {
	switch goos {
	case "darwin":
		out := []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
		}
		if home != "" {
			out = append(out, filepath.Join(home, "Applications/Google Chrome.app/Contents/MacOS/Google Chrome"))
		}
		return out
	case "windows":
		var out []string
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if base == "" {
				continue
			}
			out = append(out,
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"),
				filepath.Join(base, "Chromium", "Application", "chrome.exe"),
				filepath.Join(base, "Microsoft", "Edge", "Application", "msedge.exe"),
			)
		}
		return out
	case "linux":
		out := []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
		}
		if home != "" {
			out = append(out,
				filepath.Join(home, ".local/share/flatpak/exports/bin/com.google.Chrome"),
				filepath.Join(home, ".local/share/flatpak/exports/bin/org.chromium.Chromium"),
			)
		}
		return out
	}
	return nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}
