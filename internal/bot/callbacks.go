package bot

import (
	"context"
	"strings"

	"washify/internal/listing"
	"washify/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Отвечаем на callback сразу, чтобы убрать "часики"
	if _, err := b.tgService.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("answer callback")
	}
	if callback.Message == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data

	switch {
	case data == cbMore:
		b.countCommand("load_more")
		b.updateList(ctx, chatID, messageID, false, func(m *listing.Model) { m.LoadMore() })

	case data == cbRefresh, data == cbCancel:
		b.countCommand("refresh")
		b.updateList(ctx, chatID, messageID, true, nil)

	case strings.HasPrefix(data, cbFilterPrefix):
		b.countCommand("filter")
		filter := strings.TrimPrefix(data, cbFilterPrefix)
		b.updateList(ctx, chatID, messageID, false, func(m *listing.Model) { m.SetFilter(filter) })

	case strings.HasPrefix(data, cbSortPrefix):
		b.countCommand("sort")
		order := strings.TrimPrefix(data, cbSortPrefix)
		b.updateList(ctx, chatID, messageID, false, func(m *listing.Model) { m.SetSort(order) })

	case strings.HasPrefix(data, cbDonePrefix):
		b.countCommand("complete")
		b.setStatus(ctx, chatID, messageID, strings.TrimPrefix(data, cbDonePrefix), models.StatusCompleted)

	case strings.HasPrefix(data, cbReopenPrefix):
		b.countCommand("reopen")
		b.setStatus(ctx, chatID, messageID, strings.TrimPrefix(data, cbReopenPrefix), models.StatusUpcoming)

	case strings.HasPrefix(data, cbDeletePrefix):
		b.confirmDelete(chatID, messageID, strings.TrimPrefix(data, cbDeletePrefix))

	case strings.HasPrefix(data, cbConfirmPrefix):
		b.countCommand("delete")
		b.remove(ctx, chatID, messageID, strings.TrimPrefix(data, cbConfirmPrefix))
	}
}

func (b *Bot) setStatus(ctx context.Context, chatID int64, messageID int, id, status string) {
	m, err := b.list(ctx, chatID)
	if err == nil {
		err = m.SetStatus(ctx, id, status)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("booking_id", id).Str("status", status).Msg("update booking status")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendList(chatID, messageID, m.View(), m.Params())
}

func (b *Bot) confirmDelete(chatID int64, messageID int, id string) {
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗑 Yes, delete", cbConfirmPrefix+id),
		tgbotapi.NewInlineKeyboardButtonData("Cancel", cbCancel),
	))
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		"Delete booking <code>"+esc(id)+"</code>? This cannot be undone.", markup)
	edit.ParseMode = models.ParseModeHTML
	b.send(edit)
}

func (b *Bot) remove(ctx context.Context, chatID int64, messageID int, id string) {
	m, err := b.list(ctx, chatID)
	if err == nil {
		err = m.Remove(ctx, id)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("booking_id", id).Msg("delete booking")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendList(chatID, messageID, m.View(), m.Params())
}
