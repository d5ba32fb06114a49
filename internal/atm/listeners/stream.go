package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sapliy/atm-network/internal/atm"
	"github.com/sapliy/atm-network/pkg/messaging"
)

// NotificationsTopic is the Kafka topic carrying every attempted operation.
const NotificationsTopic = "atm.notifications"

// Stream publishes each notification to Kafka, keyed by the primary
// account so one account's attempts land on one partition in order.
type Stream struct {
	producer *messaging.KafkaProducer
}

func NewStream(producer *messaging.KafkaProducer) *Stream {
	return &Stream{producer: producer}
}

func (s *Stream) HandleNotification(ctx context.Context, n atm.TransactionNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return s.producer.Publish(ctx, strconv.FormatInt(n.PrimaryAccount, 10), body)
}
