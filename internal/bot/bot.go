// Package bot is the owner's Telegram console for bookings: list with
// filters and "load more", mark completed, delete, export and stats.
package bot

import (
	"context"
	"sync"
	"time"

	"washify/internal/catalog"
	"washify/internal/domain"
	"washify/internal/listing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BotWrapper adapts *tgbotapi.BotAPI to domain.TelegramService.
type BotWrapper struct {
	*tgbotapi.BotAPI
}

func NewBotWrapper(api *tgbotapi.BotAPI) *BotWrapper {
	return &BotWrapper{BotAPI: api}
}

func (w *BotWrapper) GetSelf() tgbotapi.User {
	return w.Self
}

// Exporter produces an XLSX file of all bookings.
type Exporter interface {
	Export(ctx context.Context) (string, error)
}

type Bot struct {
	tgService domain.TelegramService
	bookings  listing.Store
	catalog   *catalog.Catalog
	exporter  Exporter
	managers  map[int64]struct{}
	pageSize  int
	metrics   *Metrics
	logger    *zerolog.Logger

	// список заявок на каждый чат
	mu    sync.Mutex
	lists map[int64]*listing.Model
}

type Options struct {
	Catalog    *catalog.Catalog
	Exporter   Exporter
	ManagerIDs []int64
	PageSize   int
	Metrics    *Metrics
}

func NewBot(tgService domain.TelegramService, bookings listing.Store, opts Options, logger *zerolog.Logger) *Bot {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}

	managers := make(map[int64]struct{}, len(opts.ManagerIDs))
	for _, id := range opts.ManagerIDs {
		managers[id] = struct{}{}
	}

	return &Bot{
		tgService: tgService,
		bookings:  bookings,
		catalog:   opts.Catalog,
		exporter:  opts.Exporter,
		managers:  managers,
		pageSize:  opts.PageSize,
		metrics:   opts.Metrics,
		logger:    logger,
		lists:     make(map[int64]*listing.Model),
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	l := b.logger.With().Str("request_id", uuid.NewString()).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var userID int64
		if update.Message != nil && update.Message.From != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
			userID = update.CallbackQuery.From.ID
		}
		if userID == 0 {
			return
		}

		if !b.isManager(userID) {
			l.Warn().Int64("user_id", userID).Msg("update from non-manager ignored")
			if update.Message != nil {
				b.sendMessage(update.Message.Chat.ID, msgNotAllowed)
			}
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update.CallbackQuery)
			return
		}
		if update.Message != nil {
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

// Stop stops receiving Telegram updates (best-effort).
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	b.tgService.StopReceivingUpdates()
}

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func (b *Bot) isManager(userID int64) bool {
	_, ok := b.managers[userID]
	return ok
}

// list returns the chat's list model, creating and loading it on first use.
func (b *Bot) list(ctx context.Context, chatID int64) (*listing.Model, error) {
	b.mu.Lock()
	m, ok := b.lists[chatID]
	b.mu.Unlock()
	if ok {
		return m, nil
	}

	params := listing.DefaultParams()
	if b.pageSize > 0 {
		params.PageSize = b.pageSize
	}
	m = listing.NewModel(b.bookings, params)
	if err := m.Reload(ctx); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.lists[chatID]; ok {
		return existing, nil
	}
	b.lists[chatID] = m
	return m, nil
}
