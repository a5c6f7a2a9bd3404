package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"washify/internal/listing"
	"washify/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const helpText = `Washify bookings console

/bookings - upcoming bookings, newest date first
/upcoming, /completed, /all - switch the status filter
/search <text> - search name, phone, city or address (empty clears)
/sort <date-newest|date-oldest|name|price-high|price-low>
/stats - bookings per status and revenue
/export - XLSX file of all bookings`

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, helpText)
		return
	}

	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	b.countCommand(command)

	switch command {
	case "start", "help":
		b.sendMessage(msg.Chat.ID, helpText)
	case "bookings":
		b.resetList(ctx, msg.Chat.ID)
	case listing.FilterUpcoming, listing.FilterCompleted, listing.FilterAll:
		b.updateList(ctx, msg.Chat.ID, 0, true, func(m *listing.Model) { m.SetFilter(command) })
	case "search":
		b.updateList(ctx, msg.Chat.ID, 0, true, func(m *listing.Model) { m.SetSearch(args) })
	case "sort":
		b.updateList(ctx, msg.Chat.ID, 0, true, func(m *listing.Model) { m.SetSort(args) })
	case "stats":
		b.handleStats(ctx, msg.Chat.ID)
	case "export":
		b.handleExport(ctx, msg.Chat.ID)
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command.\n\n"+helpText)
	}
}

// resetList drops the chat's list state and shows the default view.
func (b *Bot) resetList(ctx context.Context, chatID int64) {
	b.mu.Lock()
	delete(b.lists, chatID)
	b.mu.Unlock()
	b.updateList(ctx, chatID, 0, false, nil)
}

// updateList applies fn to the chat's model and re-renders it. With reload
// set the collection is fetched again first.
func (b *Bot) updateList(ctx context.Context, chatID int64, messageID int, reload bool, fn func(m *listing.Model)) {
	m, err := b.list(ctx, chatID)
	if err == nil && reload {
		err = m.Reload(ctx)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("load bookings")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if fn != nil {
		fn(m)
	}
	b.sendList(chatID, messageID, m.View(), m.Params())
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	all, err := b.bookings.ListBookings(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("stats: list bookings")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, formatStats(all))
}

func formatStats(all []models.Booking) string {
	counts := make(map[string]int)
	revenue := make(map[string]int)
	for _, bk := range all {
		counts[bk.Status]++
		revenue[bk.Status] += bk.Price
	}

	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Total bookings: %d\n", len(all))
	total := 0
	for _, s := range statuses {
		fmt.Fprintf(&sb, "%s %s: %d (₹ %d)\n", statusEmoji(s), s, counts[s], revenue[s])
		total += revenue[s]
	}
	fmt.Fprintf(&sb, "💰 Revenue: ₹ %d", total)
	return sb.String()
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	if b.exporter == nil {
		b.sendMessage(chatID, msgExportUnavail)
		return
	}

	path, err := b.exporter.Export(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("export bookings")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "Bookings export"
	b.send(doc)
}
