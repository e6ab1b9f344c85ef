// Package notify shows desktop notifications for conditions the user should
// see even when the launcher's console is hidden.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Desktop sends notifications through the platform notification service
type Desktop struct {
	appName string
	enabled bool
	logger  *slog.Logger
	send    func(title, message string) error
}

// NewDesktop creates a notifier; a disabled notifier only logs
func NewDesktop(appName string, enabled bool, logger *slog.Logger) *Desktop {
	return &Desktop{
		appName: appName,
		enabled: enabled,
		logger:  logger.With("component", "notify"),
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Warn shows a warning notification titled with the app name
func (d *Desktop) Warn(message string) error {
	if !d.enabled {
		d.logger.Debug("Notifications disabled, skipping", "message", message)
		return nil
	}
	if err := d.send(d.appName, message); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}
