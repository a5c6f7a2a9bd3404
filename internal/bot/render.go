package bot

import (
	"fmt"
	"strings"

	"washify/internal/listing"
	"washify/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects messages over 4096 characters.
const maxMessageLen = 4000

const (
	cbMore          = "more"
	cbRefresh       = "refresh"
	cbFilterPrefix  = "f:"
	cbSortPrefix    = "s:"
	cbDonePrefix    = "done:"
	cbReopenPrefix  = "open:"
	cbDeletePrefix  = "del:"
	cbConfirmPrefix = "delok:"
	cbCancel        = "cancel"
)

var filterButtons = []struct{ id, label string }{
	{listing.FilterUpcoming, "Upcoming"},
	{listing.FilterCompleted, "Completed"},
	{listing.FilterAll, "All"},
}

var sortButtons = []struct{ id, label string }{
	{listing.SortDateNewest, "Newest"},
	{listing.SortDateOldest, "Oldest"},
	{listing.SortName, "Name"},
	{listing.SortPriceHigh, "₹ ↓"},
	{listing.SortPriceLow, "₹ ↑"},
}

func esc(s string) string {
	return tgbotapi.EscapeText(models.ParseModeHTML, s)
}

func statusEmoji(status string) string {
	if status == models.StatusCompleted {
		return "🏁"
	}
	return "⏳"
}

func (b *Bot) formatBooking(n int, bk models.Booking) string {
	labels := make([]string, 0, len(bk.Packages))
	for _, p := range bk.Packages {
		labels = append(labels, b.catalog.PackageLabel(p))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%d. %s</b> · %s, %s\n", statusEmoji(bk.Status), n, esc(bk.Name), esc(bk.Date), esc(b.catalog.SlotLabel(bk.TimeSlot)))
	fmt.Fprintf(&sb, "   🚗 %s · %s · ₹ %d\n", esc(b.catalog.CarLabel(bk.Car)), esc(strings.Join(labels, ", ")), bk.Price)
	fmt.Fprintf(&sb, "   📞 %s · %s, %s\n", esc(bk.Phone), esc(bk.Address), esc(bk.City))
	fmt.Fprintf(&sb, "   <code>%s</code>\n", esc(bk.ID))
	return sb.String()
}

// renderList builds the message for the current window. Action buttons are
// only attached to the most recently loaded page.
func (b *Bot) renderList(window listing.Window, params listing.Params) (string, tgbotapi.InlineKeyboardMarkup) {
	var text strings.Builder
	fmt.Fprintf(&text, "📋 <b>Bookings</b> · %s · %s\n", params.Filter, params.Sort)
	if params.Search != "" {
		fmt.Fprintf(&text, "🔎 %s\n", esc(params.Search))
	}
	fmt.Fprintf(&text, "Showing %d of %d\n\n", len(window.Items), window.Total)

	if window.Total == 0 {
		text.WriteString("No bookings found.")
	}

	body := make([]string, 0, len(window.Items))
	for i, bk := range window.Items {
		body = append(body, b.formatBooking(i+1, bk))
	}
	// при переполнении оставляем последние карточки
	for len(body) > 1 && text.Len()+joinedLen(body) > maxMessageLen {
		body = body[1:]
	}
	text.WriteString(strings.Join(body, "\n"))

	var keyboard [][]tgbotapi.InlineKeyboardButton

	firstOnPage := (window.Page - 1) * params.PageSize
	if firstOnPage < 0 || firstOnPage > len(window.Items) {
		firstOnPage = 0
	}
	for i := firstOnPage; i < len(window.Items); i++ {
		bk := window.Items[i]
		action := tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ Complete %d", i+1), cbDonePrefix+bk.ID)
		if bk.Status == models.StatusCompleted {
			action = tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("↩️ Reopen %d", i+1), cbReopenPrefix+bk.ID)
		}
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			action,
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 Delete %d", i+1), cbDeletePrefix+bk.ID),
		))
	}

	if window.HasMore {
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬇️ Load more", cbMore),
		))
	}

	var filters []tgbotapi.InlineKeyboardButton
	for _, f := range filterButtons {
		label := f.label
		if f.id == params.Filter {
			label = "• " + label
		}
		filters = append(filters, tgbotapi.NewInlineKeyboardButtonData(label, cbFilterPrefix+f.id))
	}
	keyboard = append(keyboard, filters)

	var sorts []tgbotapi.InlineKeyboardButton
	for _, s := range sortButtons {
		label := s.label
		if s.id == params.Sort {
			label = "• " + label
		}
		sorts = append(sorts, tgbotapi.NewInlineKeyboardButtonData(label, cbSortPrefix+s.id))
	}
	keyboard = append(keyboard, sorts, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", cbRefresh),
	))

	return text.String(), tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func joinedLen(parts []string) int {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	return n
}

func (b *Bot) sendList(chatID int64, messageID int, window listing.Window, params listing.Params) {
	text, markup := b.renderList(window, params)
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
		edit.ParseMode = models.ParseModeHTML
		b.send(edit)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeHTML
	msg.ReplyMarkup = markup
	b.send(msg)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.tgService.Send(c); err != nil {
		b.logger.Error().Err(err).Msg("telegram send failed")
	}
}
