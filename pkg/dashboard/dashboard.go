// Package dashboard hands the server URL to the user's default browser.
package dashboard

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/browser"
)

// Browser opens the URL with the OS default handler. The call returns as soon
// as the handler is launched; nobody checks that the server answers.
type Browser struct {
	logger *slog.Logger
}

// NewBrowser creates a browser opener. The helper's own console chatter
// (xdg-open, open, rundll32) is routed to the debug log.
func NewBrowser(logger *slog.Logger) *Browser {
	b := &Browser{logger: logger.With("component", "dashboard")}
	browser.Stdout = io.Discard
	browser.Stderr = logWriter{logger: b.logger}
	return b
}

// Open launches the default browser at url
func (b *Browser) Open(url string) error {
	b.logger.Info("Opening dashboard", "url", url)
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open browser at %s: %w", url, err)
	}
	return nil
}

type logWriter struct {
	logger *slog.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Debug("browser helper output", "output", string(p))
	return len(p), nil
}
