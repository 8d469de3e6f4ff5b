// Package notify is the gateway's notification sink: terminal workflow
// outcomes go through a Notifier port so tests can assert on emitted events
// instead of log text.
package notify

import "time"

// Level mirrors the toast styling of the admin UI.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notification is one terminal, user-facing message. Each workflow attempt
// emits exactly one.
type Notification struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Level   Level     `json:"level"`
	At      time.Time `json:"at"`
}

// Notifier delivers notifications. Delivery is fire-and-forget: an
// implementation logs its own failures and never propagates them into the
// workflow that emitted the notification.
type Notifier interface {
	Notify(n Notification)
}
