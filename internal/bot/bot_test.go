package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"washify/internal/catalog"
	"washify/internal/database"
	"washify/internal/domain"
	"washify/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const managerID int64 = 100

type mockTelegramService struct {
	domain.TelegramService
	mu           sync.Mutex
	updatesChan  chan tgbotapi.Update
	sentMessages []tgbotapi.Chattable
	requests     int
}

func (m *mockTelegramService) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentMessages = append(m.sentMessages, c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "washify_bot"}
}

func (m *mockTelegramService) last(t *testing.T) tgbotapi.Chattable {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sentMessages)
	return m.sentMessages[len(m.sentMessages)-1]
}

// lastText returns the text and keyboard of the last sent or edited message.
func (m *mockTelegramService) lastText(t *testing.T) (string, *tgbotapi.InlineKeyboardMarkup) {
	t.Helper()
	switch c := m.last(t).(type) {
	case tgbotapi.MessageConfig:
		markup, _ := c.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		return c.Text, &markup
	case tgbotapi.EditMessageTextConfig:
		return c.Text, c.ReplyMarkup
	default:
		t.Fatalf("unexpected chattable %T", c)
		return "", nil
	}
}

type fakeExporter struct {
	path string
	err  error
}

func (f fakeExporter) Export(context.Context) (string, error) {
	return f.path, f.err
}

func newTestBot(t *testing.T) (*Bot, *mockTelegramService, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 4)}
	b := NewBot(tg, db, Options{
		Catalog:    catalog.Default(),
		Exporter:   fakeExporter{path: "/tmp/bookings.xlsx"},
		ManagerIDs: []int64{managerID},
		PageSize:   2,
	}, &logger)
	return b, tg, db
}

func seed(t *testing.T, db *database.DB, name, date string, price int) string {
	t.Helper()
	bk := &models.Booking{
		Name: name, Phone: "9876543210", City: "Jaipur", Address: "MI Road",
		Date: date, TimeSlot: "slot1", Packages: []string{catalog.PackageQuick},
		Car: catalog.CarSedan, Price: price,
	}
	require.NoError(t, db.CreateBooking(context.Background(), bk))
	return bk.ID
}

func command(from int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.Index(text, " "); i > 0 {
		cmdLen = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: from},
		Chat:     &tgbotapi.Chat{ID: from},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: from}},
	}}
}

func buttons(markup *tgbotapi.InlineKeyboardMarkup) map[string]string {
	out := map[string]string{}
	if markup == nil {
		return out
	}
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				out[btn.Text] = *btn.CallbackData
			}
		}
	}
	return out
}

func TestBotStart(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	tg.updatesChan <- command(managerID, "/start")
	require.Eventually(t, func() bool {
		tg.mu.Lock()
		defer tg.mu.Unlock()
		return len(tg.sentMessages) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestNonManagerRejected(t *testing.T) {
	b, tg, db := newTestBot(t)
	seed(t, db, "Ravi", "2099-01-01", 399)

	b.processUpdate(context.Background(), command(555, "/bookings"))
	text, _ := tg.lastText(t)
	assert.Equal(t, msgNotAllowed, text)

	b.processUpdate(context.Background(), callback(555, cbMore))
	tg.mu.Lock()
	assert.Len(t, tg.sentMessages, 1)
	assert.Zero(t, tg.requests)
	tg.mu.Unlock()
}

func TestBookingsListAndLoadMore(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()
	seed(t, db, "Asha", "2099-01-03", 399)
	seed(t, db, "Bela", "2099-01-02", 999)
	seed(t, db, "Chetan", "2099-01-01", 1599)

	b.processUpdate(ctx, command(managerID, "/bookings"))
	text, markup := tg.lastText(t)
	assert.Contains(t, text, "Showing 2 of 3")
	assert.Contains(t, text, "1. Asha")
	assert.Contains(t, text, "2. Bela")
	assert.NotContains(t, text, "Chetan")
	assert.Contains(t, text, "Quick Shine")
	assert.Contains(t, text, "9am - 11am")
	assert.Equal(t, cbMore, buttons(markup)["⬇️ Load more"])

	b.processUpdate(ctx, callback(managerID, cbMore))
	text, markup = tg.lastText(t)
	assert.Contains(t, text, "Showing 3 of 3")
	assert.Contains(t, text, "3. Chetan")
	btns := buttons(markup)
	assert.NotContains(t, btns, "⬇️ Load more")
	// действия только для последней страницы
	assert.Contains(t, btns, "✅ Complete 3")
	assert.NotContains(t, btns, "✅ Complete 1")

	_, isEdit := tg.last(t).(tgbotapi.EditMessageTextConfig)
	assert.True(t, isEdit)
}

func TestCompleteMovesBetweenFilters(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()
	id := seed(t, db, "Asha", "2099-01-03", 399)

	b.processUpdate(ctx, command(managerID, "/bookings"))
	b.processUpdate(ctx, callback(managerID, cbDonePrefix+id))
	text, _ := tg.lastText(t)
	assert.Contains(t, text, "Showing 0 of 0")

	stored, err := db.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	b.processUpdate(ctx, callback(managerID, cbFilterPrefix+"completed"))
	text, markup := tg.lastText(t)
	assert.Contains(t, text, "1. Asha")
	assert.Contains(t, buttons(markup), "↩️ Reopen 1")

	b.processUpdate(ctx, callback(managerID, cbReopenPrefix+id))
	stored, err = db.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpcoming, stored.Status)
}

func TestDeleteWithConfirmation(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()
	id := seed(t, db, "Asha", "2099-01-03", 399)

	b.processUpdate(ctx, command(managerID, "/bookings"))
	b.processUpdate(ctx, callback(managerID, cbDeletePrefix+id))
	text, markup := tg.lastText(t)
	assert.Contains(t, text, "Delete booking")
	assert.Equal(t, cbConfirmPrefix+id, buttons(markup)["🗑 Yes, delete"])

	_, err := db.GetBooking(ctx, id)
	require.NoError(t, err)

	b.processUpdate(ctx, callback(managerID, cbConfirmPrefix+id))
	_, err = db.GetBooking(ctx, id)
	assert.ErrorIs(t, err, database.ErrBookingNotFound)

	// повторное удаление
	b.processUpdate(ctx, callback(managerID, cbConfirmPrefix+id))
	text, _ = tg.lastText(t)
	assert.Equal(t, msgNotFound, text)
}

func TestSearchAndSortCommands(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()
	seed(t, db, "Asha", "2099-01-03", 399)
	seed(t, db, "Bela", "2099-01-02", 999)

	b.processUpdate(ctx, command(managerID, "/search bel"))
	text, _ := tg.lastText(t)
	assert.Contains(t, text, "🔎 bel")
	assert.Contains(t, text, "1. Bela")
	assert.NotContains(t, text, "Asha")

	b.processUpdate(ctx, command(managerID, "/search"))
	b.processUpdate(ctx, command(managerID, "/sort price-high"))
	text, _ = tg.lastText(t)
	assert.Contains(t, text, "price-high")
	assert.Less(t, strings.Index(text, "Bela"), strings.Index(text, "Asha"))
}

func TestStatsAndExport(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()
	id := seed(t, db, "Asha", "2099-01-03", 399)
	seed(t, db, "Bela", "2099-01-02", 999)
	_, err := db.UpdateBookingStatus(ctx, id, models.StatusCompleted)
	require.NoError(t, err)

	b.processUpdate(ctx, command(managerID, "/stats"))
	text, _ := tg.lastText(t)
	assert.Contains(t, text, "Total bookings: 2")
	assert.Contains(t, text, "completed: 1 (₹ 399)")
	assert.Contains(t, text, "upcoming: 1 (₹ 999)")
	assert.Contains(t, text, "Revenue: ₹ 1398")

	b.processUpdate(ctx, command(managerID, "/export"))
	doc, ok := tg.last(t).(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FilePath("/tmp/bookings.xlsx"), doc.File)

	b.exporter = fakeExporter{err: errors.New("disk full")}
	b.processUpdate(ctx, command(managerID, "/export"))
	text, _ = tg.lastText(t)
	assert.Equal(t, msgGenericError, text)
}

func TestRenderEscapesHTML(t *testing.T) {
	b, _, _ := newTestBot(t)
	bk := models.Booking{ID: "x", Name: "<b>Evil</b>", Car: catalog.CarSUV7, Packages: []string{"unknown"}}
	out := b.formatBooking(1, bk)
	assert.Contains(t, out, "&lt;b&gt;Evil&lt;/b&gt;")
	assert.Contains(t, out, "SUV 7 Seater")
	assert.Contains(t, out, "unknown")
}

func TestPanicInHandlerIsRecovered(t *testing.T) {
	tg := &mockTelegramService{}
	b := NewBot(tg, nil, Options{ManagerIDs: []int64{managerID}}, nil)

	assert.NotPanics(t, func() {
		b.processUpdate(context.Background(), command(managerID, "/stats"))
	})
	tg.mu.Lock()
	assert.Empty(t, tg.sentMessages)
	tg.mu.Unlock()
}
