package models

const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
)

const DateLayout = "2006-01-02"

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

const (
	// DefaultDraftTTL время жизни черновика формы в Redis
	DefaultDraftTTL = 30 * 24 * 60 * 60 // 30 дней в секундах

	// DefaultDraftKey ключ черновика, если клиент не передал свой
	DefaultDraftKey = "washify_booking_draft"

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// DefaultPageSize размер страницы списка заявок
	DefaultPageSize = 10

	// SheetsCacheTTL время жизни кэша строк Google Sheets
	SheetsCacheTTL = 60 * 60 // 1 час в секундах
)
