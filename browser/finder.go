package browser

import (
	"os/exec"
	"path/filepath"
	"runtime"
)

var linuxChromes = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// FindChrome on the FS, returns the binary and a directory for temporary profiles.
// The binary is empty when nothing was found.
func FindChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\gcd\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/gcd/"
	case "linux":
		for _, name := range linuxChromes {
			if path, err := exec.LookPath(name); err == nil {
				return path, "/tmp/gcd/"
			}
		}
		return "", "/tmp/gcd/"
	}
	return "", filepath.Join("tmp", "gcd")
}
