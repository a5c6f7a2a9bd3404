package notify

import (
	"context"
	"errors"
	"fmt"

	"washify/internal/domain"
	"washify/internal/metrics"
	"washify/internal/models"

	"github.com/rs/zerolog"
)

// Channel is a named owner notifier.
type Channel struct {
	Name     string
	Notifier domain.OwnerNotifier
}

// Multi fans a notification out to every channel. Each channel is tried even
// when an earlier one fails.
type Multi struct {
	channels []Channel
	logger   *zerolog.Logger
}

func NewMulti(logger *zerolog.Logger, channels ...Channel) *Multi {
	return &Multi{channels: channels, logger: logger}
}

func (m *Multi) Len() int {
	return len(m.channels)
}

func (m *Multi) NotifyOwner(ctx context.Context, b *models.Booking) error {
	var errs []error
	for _, ch := range m.channels {
		err := ch.Notifier.NotifyOwner(ctx, b)
		metrics.IncNotification(ch.Name, err == nil)
		if err != nil {
			m.logger.Warn().Err(err).Str("channel", ch.Name).Str("booking_id", b.ID).Msg("owner notification failed")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name, err))
			continue
		}
		m.logger.Info().Str("channel", ch.Name).Str("booking_id", b.ID).Msg("owner notified")
	}
	return errors.Join(errs...)
}
