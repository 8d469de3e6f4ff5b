package notify

import (
	"encoding/json"
	"log"

	"tienda/pkg/rabbitmq"

	"github.com/google/uuid"
)

// AMQPNotifier publishes notifications to the admin events queue so other
// consumers (audit log, email digests) can react to workflow outcomes.
type AMQPNotifier struct {
	client *rabbitmq.Client
}

// NewAMQPNotifier creates an AMQPNotifier on top of an existing client.
func NewAMQPNotifier(client *rabbitmq.Client) *AMQPNotifier {
	return &AMQPNotifier{
		client: client,
	}
}

// Notify implements Notifier. Publish failures are logged, never returned.
func (n *AMQPNotifier) Notify(notification Notification) {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	body, err := json.Marshal(notification)
	if err != nil {
		log.Printf("Failed to marshal notification %s: %v", notification.ID, err)
		return
	}
	if err := n.client.Publish(rabbitmq.AdminEventsQueue, body); err != nil {
		log.Printf("Warning: Failed to publish notification %s: %v", notification.ID, err)
	}
}
