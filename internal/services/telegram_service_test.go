package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNotifyOrderPostsHTMLMessage(t *testing.T) {
	var got telegramMessage
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	svc := NewTelegramService("token", "42", tunis).WithBaseURL(server.URL)
	pickup := time.Date(2024, time.June, 5, 13, 30, 0, 0, time.UTC)
	err := svc.NotifyOrder(context.Background(), OrderNotification{
		Username:      "<b>Amine</b>",
		PhoneNumber:   "22123456",
		Sandwich:      "Baguette with Cheese",
		Price:         dec("20"),
		Time:          "06/05/2024, 14:30:00",
		PaymentMethod: "points",
		PickupTime:    &pickup,
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if path != "/bottoken/sendMessage" {
		t.Fatalf("unexpected path %q", path)
	}
	if got.ChatID != "42" || got.ParseMode != "HTML" {
		t.Fatalf("unexpected message %+v", got)
	}
	for _, want := range []string{"&lt;b&gt;Amine&lt;/b&gt;", "20.00 TND", "💎 Points", "Pickup time: 14:30", "Note: -"} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("message missing %q:\n%s", want, got.Text)
		}
	}
}

func TestSendMessageReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	svc := NewTelegramService("token", "42", time.UTC).WithBaseURL(server.URL)
	if err := svc.SendToAdmin(context.Background(), "hi"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendWithoutConfigurationFails(t *testing.T) {
	svc := NewTelegramService("", "", time.UTC)
	if svc.Configured() {
		t.Fatal("expected unconfigured service")
	}
	if err := svc.SendToAdmin(context.Background(), "hi"); !errors.Is(err, ErrTelegramNotConfigured) {
		t.Fatalf("expected ErrTelegramNotConfigured, got %v", err)
	}

	tokenOnly := NewTelegramService("token", "", time.UTC)
	if err := tokenOnly.NotifyOrder(context.Background(), OrderNotification{}); !errors.Is(err, ErrTelegramNotConfigured) {
		t.Fatalf("missing chat: expected ErrTelegramNotConfigured, got %v", err)
	}
	if err := svc.SendMessage(context.Background(), "42", "hi"); !errors.Is(err, ErrTelegramNotConfigured) {
		t.Fatalf("missing token: expected ErrTelegramNotConfigured, got %v", err)
	}
}
