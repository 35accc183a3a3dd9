package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/utils"
)

const defaultTelegramBaseURL = "https://api.telegram.org"

// ErrTelegramNotConfigured means the bot token or admin chat ID is missing.
var ErrTelegramNotConfigured = errors.New("telegram is not configured")

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
	loc         *time.Location
}

// NewTelegramService creates a new TelegramService. Slot times are rendered in loc.
func NewTelegramService(botToken, adminChatID string, loc *time.Location) *TelegramService {
	if loc == nil {
		loc = time.UTC
	}
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     defaultTelegramBaseURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		loc:         loc,
	}
}

// WithBaseURL points the service at another Bot API host.
func (s *TelegramService) WithBaseURL(baseURL string) *TelegramService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Configured reports whether a bot token and chat are set.
func (s *TelegramService) Configured() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return ErrTelegramNotConfigured
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	var result telegramResponse
	_ = json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d %s", resp.StatusCode, result.Description)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	if !result.OK {
		return fmt.Errorf("telegram rejected message: %s", result.Description)
	}
	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return ErrTelegramNotConfigured
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// OrderNotification describes one ordered sandwich configuration.
type OrderNotification struct {
	Username       string          `json:"username" validate:"required"`
	PhoneNumber    string          `json:"phoneNumber" validate:"required"`
	Sandwich       string          `json:"sandwich" validate:"required"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity,omitempty"`
	Time           string          `json:"time"`
	PaymentMethod  string          `json:"paymentMethod" validate:"required,oneof=cash points"`
	Note           string          `json:"note,omitempty"`
	DeliveryMethod string          `json:"deliveryMethod,omitempty" validate:"omitempty,oneof=pickup shipping"`
	PickupTime     *time.Time      `json:"pickupTime,omitempty"`
	ShippingTime   *time.Time      `json:"shippingTime,omitempty"`
}

// NotifyOrder sends the new order alert to the admin chat.
func (s *TelegramService) NotifyOrder(ctx context.Context, order OrderNotification) error {
	return s.SendToAdmin(ctx, s.FormatOrder(order))
}

// FormatOrder renders the admin chat message for order. User supplied text is HTML escaped.
func (s *TelegramService) FormatOrder(order OrderNotification) string {
	payment := "💵 Cash"
	if order.PaymentMethod == "points" {
		payment = "💎 Points"
	}

	delivery := order.DeliveryMethod
	if delivery == "" {
		delivery = "pickup"
	}

	slotLabel := "Pickup time"
	slot := order.PickupTime
	if delivery == "shipping" {
		slotLabel = "Shipping time"
		slot = order.ShippingTime
	}
	slotDisplay := "-"
	if slot != nil {
		slotDisplay = slot.In(s.loc).Format("15:04")
	}

	note := "-"
	if order.Note != "" {
		note = html.EscapeString(order.Note)
	}

	var b strings.Builder
	b.WriteString("🍞 <b>New Order Alert!</b> 🍞\n\n")
	fmt.Fprintf(&b, "👤 User: %s\n", html.EscapeString(order.Username))
	fmt.Fprintf(&b, "📱 Phone: %s\n", html.EscapeString(order.PhoneNumber))
	fmt.Fprintf(&b, "🥪 Sandwich: %s\n", html.EscapeString(order.Sandwich))
	if order.Quantity > 1 {
		fmt.Fprintf(&b, "🔢 Quantity: %d\n", order.Quantity)
	}
	fmt.Fprintf(&b, "💰 Price: %s\n", utils.FormatPrice(order.Price))
	fmt.Fprintf(&b, "💳 Payment: %s\n", payment)
	fmt.Fprintf(&b, "⏰ Time: %s\n", html.EscapeString(order.Time))
	fmt.Fprintf(&b, "📝 Note: %s\n", note)
	fmt.Fprintf(&b, "🚚 Delivery: %s\n", html.EscapeString(delivery))
	fmt.Fprintf(&b, "🕒 %s: %s\n\n", slotLabel, slotDisplay)
	b.WriteString("Order placed successfully! 🎉")
	return b.String()
}
