package docs

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Viewer opens a built site in a browser.
type Viewer interface {
	Open(ctx context.Context, url string) error
}

// BrowserViewer runs the platform's URL opener, or Command when set. A
// Command may contain "{url}"; otherwise the URL is appended.
type BrowserViewer struct {
	Command string
	goos    string
}

// NewBrowserViewer returns a viewer using command, or the platform default
// when command is empty.
func NewBrowserViewer(command string) *BrowserViewer {
	return &BrowserViewer{Command: command, goos: runtime.GOOS}
}

// Open implements Viewer.
func (v *BrowserViewer) Open(ctx context.Context, url string) error {
	name, args, err := v.commandLine(url)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("no browser opener found (%s): set data_docs.open_command", name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	// The opener hands off to the browser; do not wait on it.
	go cmd.Wait() //nolint:errcheck
	return nil
}

func (v *BrowserViewer) commandLine(url string) (string, []string, error) {
	if v.Command != "" {
		fields := strings.Fields(v.Command)
		replaced := false
		for i, f := range fields {
			if strings.Contains(f, "{url}") {
				fields[i] = strings.ReplaceAll(f, "{url}", url)
				replaced = true
			}
		}
		if !replaced {
			fields = append(fields, url)
		}
		return fields[0], fields[1:], nil
	}

	switch v.goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("opening a browser is not supported on %s", v.goos)
	}
}
