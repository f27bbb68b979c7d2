// internal/notify/notifier.go

package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"HelmetMonitorAPI/internal/models"
)

// Notifier sends a formatted emergency message to a fixed destination.
// Implementations capture failures into the result and never return an
// error that could block alert persistence.
type Notifier interface {
	Send(ctx context.Context, n models.Notification) models.DispatchResult
}

// FormatMessage builds the fixed-format emergency text body: banner,
// message, location line, alert-id line and a local-time line, separated
// by blank lines.
func FormatMessage(n models.Notification) string {
	locationText := "Location: not provided"
	if n.Location != nil {
		locationText = fmt.Sprintf("Location: https://maps.google.com/?q=%v,%v",
			n.Location.Lat, n.Location.Lng)
	}

	idLine := fmt.Sprintf("Alert ID: %s", n.AlertID)
	if n.AlertID == "" {
		idLine = fmt.Sprintf("Device: %s", n.DeviceID)
	}

	lines := []string{
		"🚨 SMART HELMET ALERT 🚨",
		n.Message,
		locationText,
		idLine,
		fmt.Sprintf("Time: %s", time.Now().Format("2006-01-02 15:04:05")),
	}

	return strings.Join(lines, "\n\n")
}
