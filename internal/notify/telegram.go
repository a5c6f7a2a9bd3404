package notify

import (
	"context"
	"fmt"
	"strings"

	"washify/internal/catalog"
	"washify/internal/domain"
	"washify/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier posts new bookings to the owner's chat.
type TelegramNotifier struct {
	bot     domain.TelegramSender
	chatID  int64
	catalog *catalog.Catalog
}

func NewTelegramNotifier(bot domain.TelegramSender, chatID int64, c *catalog.Catalog) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, catalog: c}
}

// NewBotAPI connects to Telegram with the configured token.
func NewBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = debug
	return bot, nil
}

func (n *TelegramNotifier) NotifyOwner(_ context.Context, b *models.Booking) error {
	msg := tgbotapi.NewMessage(n.chatID, ownerMessageText(newBookingView(b, n.catalog)))
	msg.ParseMode = models.ParseModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func ownerMessageText(v bookingView) string {
	esc := tgbotapi.EscapeText
	var sb strings.Builder
	sb.WriteString("<b>New booking</b> <code>" + esc(models.ParseModeHTML, v.ID) + "</code>\n\n")
	fmt.Fprintf(&sb, "👤 %s, %s\n", esc(models.ParseModeHTML, v.Name), esc(models.ParseModeHTML, v.Phone))
	fmt.Fprintf(&sb, "📍 %s, %s\n", esc(models.ParseModeHTML, v.Address), esc(models.ParseModeHTML, v.City))
	fmt.Fprintf(&sb, "📅 %s, %s\n", v.Date, esc(models.ParseModeHTML, v.TimeSlot))
	fmt.Fprintf(&sb, "🚗 %s\n", esc(models.ParseModeHTML, v.Car))
	fmt.Fprintf(&sb, "🧽 %s\n", esc(models.ParseModeHTML, v.Packages))
	fmt.Fprintf(&sb, "💰 %s\n", v.Price)
	fmt.Fprintf(&sb, "💧 Water &amp; electricity: %s", v.WaterPower)
	return sb.String()
}
