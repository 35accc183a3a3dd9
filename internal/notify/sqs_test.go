package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"

	"github.com/example/kaskroutek/internal/services"
)

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSPublisherSendsJSON(t *testing.T) {
	client := &fakeSQS{}
	p := NewSQSPublisher(client, "https://sqs.local/queue")

	n := services.OrderNotification{Username: "Amine", PhoneNumber: "22123456", PaymentMethod: "cash"}
	if err := p.NotifyOrder(context.Background(), n); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if *client.input.QueueUrl != "https://sqs.local/queue" {
		t.Fatalf("unexpected queue %s", *client.input.QueueUrl)
	}
	var got services.OrderNotification
	if err := json.Unmarshal([]byte(*client.input.MessageBody), &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.Username != "Amine" || got.PhoneNumber != "22123456" {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestSQSPublisherWrapsError(t *testing.T) {
	boom := errors.New("throttled")
	p := NewSQSPublisher(&fakeSQS{err: boom}, "q")
	if err := p.NotifyOrder(context.Background(), services.OrderNotification{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSQSPublisherReportsAPIErrorCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AWS.SimpleQueueService.NonExistentQueue", Message: "queue does not exist"}
	p := NewSQSPublisher(&fakeSQS{err: apiErr}, "q")

	err := p.NotifyOrder(context.Background(), services.OrderNotification{})
	if err == nil || !strings.Contains(err.Error(), "NonExistentQueue") {
		t.Fatalf("expected error code in %v", err)
	}
	var got smithy.APIError
	if !errors.As(err, &got) {
		t.Fatalf("api error not unwrappable: %v", err)
	}
}

func TestConsumerReportsFailedItems(t *testing.T) {
	sender := &flakySender{failures: 1}
	c := NewConsumer(sender)

	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "a", Body: `{"username":"Amine","phoneNumber":"22123456"}`},
		{MessageId: "b", Body: `{"username":"Sara","phoneNumber":"22654321"}`},
		{MessageId: "c", Body: `not json`},
	}}

	resp, err := c.Handle(context.Background(), event)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "a" {
		t.Fatalf("unexpected failures %+v", resp.BatchItemFailures)
	}
	if len(sender.sent) != 1 || sender.sent[0].Username != "Sara" {
		t.Fatalf("unexpected deliveries %+v", sender.sent)
	}
}

func TestConsumerRetriesWhenTelegramUnconfigured(t *testing.T) {
	c := NewConsumer(services.NewTelegramService("", "", time.UTC))

	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "a", Body: `{"username":"Amine","phoneNumber":"22123456"}`},
	}}
	resp, err := c.Handle(context.Background(), event)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "a" {
		t.Fatalf("expected message a to be retried, got %+v", resp.BatchItemFailures)
	}
}
