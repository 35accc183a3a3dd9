package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/example/kaskroutek/internal/services"
)

// Consumer relays SQS notification messages to a Sender.
type Consumer struct {
	sender Sender
}

// NewConsumer constructs Consumer.
func NewConsumer(sender Sender) *Consumer {
	return &Consumer{sender: sender}
}

// Handle processes a batch and reports the messages that should be retried.
// Malformed bodies are logged and dropped.
func (c *Consumer) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, record := range event.Records {
		var n services.OrderNotification
		if err := json.Unmarshal([]byte(record.Body), &n); err != nil {
			log.Printf("[Notifier] Dropping malformed message %s: %v", record.MessageId, err)
			continue
		}
		if err := c.sender.NotifyOrder(ctx, n); err != nil {
			log.Printf("[Notifier] Delivery of %s failed: %v", record.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: record.MessageId,
			})
		}
	}
	return resp, nil
}
