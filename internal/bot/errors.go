package bot

import (
	"errors"

	"washify/internal/database"
)

const (
	msgNotAllowed    = "⛔ This bot is only available to the business owner."
	msgNotFound      = "⚠️ Booking not found. It may have been deleted already."
	msgGenericError  = "❌ Something went wrong. Please try again later."
	msgExportUnavail = "Export is not configured."
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if b.metrics != nil {
		b.metrics.ErrorsTotal.Inc()
	}

	if errors.Is(err, database.ErrBookingNotFound) {
		return msgNotFound
	}
	return msgGenericError
}
