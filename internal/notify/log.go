package notify

import "log"

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(notification Notification) {
	log.Printf("[%s] %s: %s", notification.Level, notification.Title, notification.Message)
}
