// Package browser opens URLs in the user's default browser and files in
// their default application.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// commandFor is swapped in tests.
var commandFor = func(goos, rawURL string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", rawURL), nil
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported OS for browser open: %s", goos)
	}
}

// Open starts the system browser on rawURL without waiting for it to exit.
// Only http, https and mailto URLs are accepted.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "mailto":
	default:
		return fmt.Errorf("refusing to open %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	cmd, err := commandFor(runtime.GOOS, u.String())
	if err != nil {
		return err
	}
	return cmd.Start()
}

// OpenFile opens an existing local file with the desktop's default
// application for its type.
func OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to open %s: is a directory", abs)
	}
	cmd, err := commandFor(runtime.GOOS, abs)
	if err != nil {
		return err
	}
	return cmd.Start()
}
