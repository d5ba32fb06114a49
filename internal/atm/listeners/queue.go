package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sapliy/atm-network/internal/atm"
	"github.com/sapliy/atm-network/pkg/messaging"
)

// NotificationsQueue is the RabbitMQ queue fed by the Queue listener.
const NotificationsQueue = "atm_notifications"

// Queue enqueues notifications to RabbitMQ for asynchronous consumers
// (statement mailers, audit archivers) that want at-least-once delivery
// rather than a live stream.
type Queue struct {
	client *messaging.RabbitMQClient
	queue  string
}

func NewQueue(client *messaging.RabbitMQClient, queue string) *Queue {
	if queue == "" {
		queue = NotificationsQueue
	}
	return &Queue{client: client, queue: queue}
}

func (q *Queue) HandleNotification(ctx context.Context, n atm.TransactionNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return q.client.Publish(ctx, q.queue, body)
}
