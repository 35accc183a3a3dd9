package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/notify"
	"github.com/example/kaskroutek/internal/services"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true
	_ = godotenv.Load()

	zone := os.Getenv("APP_TIMEZONE")
	if zone == "" {
		zone = "Africa/Tunis"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", zone, err)
	}

	telegram := services.NewTelegramService(os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"), loc)
	if base := os.Getenv("TELEGRAM_BASE_URL"); base != "" {
		telegram = telegram.WithBaseURL(base)
	}
	consumer := notify.NewConsumer(telegram)

	// RUN_LOCAL=true feeds one message from LOCAL_SQS_BODY through the handler.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"username":"Local Test","phoneNumber":"12345678","sandwich":"Baguette with Tuna","price":7.5,"quantity":1,"paymentMethod":"cash","deliveryMethod":"pickup"}`
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local-1", Body: body}}}
		resp, err := consumer.Handle(context.Background(), event)
		if err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		if len(resp.BatchItemFailures) > 0 {
			log.Fatalf("local delivery failed")
		}
		return
	}

	lambda.Start(consumer.Handle)
}
