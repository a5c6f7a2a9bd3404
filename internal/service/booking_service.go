package service

import (
	"context"
	"fmt"

	"washify/internal/database"
	"washify/internal/domain"
	"washify/internal/events"
	"washify/internal/metrics"
	"washify/internal/models"

	"github.com/rs/zerolog"
)

// BookingService wraps the booking store with the side effects every
// mutation carries: metrics, domain events and background tasks.
type BookingService struct {
	repo     domain.BookingRepository
	eventBus domain.EventPublisher
	worker   domain.SyncWorker
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.BookingRepository, eventBus domain.EventPublisher, worker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		worker:   worker,
		logger:   logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return err
	}
	metrics.IncBookingCreated()

	s.publishEvent(events.EventBookingCreated, *booking, "")

	// Зеркало в таблицу и уведомление владельца идут в фоне
	s.enqueue(ctx, models.TaskUpsert, booking)
	s.enqueue(ctx, models.TaskNotifyOwner, booking)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("city", booking.City).
		Str("date", booking.Date).
		Int("price", booking.Price).
		Msg("booking created")
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// ListBookings returns all bookings, newest first.
func (s *BookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

func (s *BookingService) UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	if !models.IsValidStatus(status) {
		return nil, database.ErrInvalidStatus
	}

	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	metrics.IncStatusChange(status)

	s.publishEvent(events.EventBookingStatusChanged, *updated, current.Status)
	s.enqueue(ctx, models.TaskUpdateStatus, updated)
	return updated, nil
}

// DeleteBooking removes the booking and returns the removed record.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	deleted, err := s.repo.DeleteBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingDeleted()

	s.publishEvent(events.EventBookingDeleted, *deleted, "")
	s.enqueue(ctx, models.TaskDelete, deleted)
	return deleted, nil
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking, previousStatus string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:      booking.ID,
		Name:           booking.Name,
		City:           booking.City,
		Date:           booking.Date,
		TimeSlot:       booking.TimeSlot,
		Packages:       booking.Packages,
		Car:            booking.Car,
		Price:          booking.Price,
		Status:         booking.Status,
		PreviousStatus: previousStatus,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueue(ctx context.Context, taskType string, booking *models.Booking) {
	if s.worker == nil {
		return
	}

	if err := s.worker.EnqueueTask(ctx, taskType, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Str("task", taskType).Msg("enqueue task error")
	}
}
