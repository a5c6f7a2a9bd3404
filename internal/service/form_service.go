package service

import (
	"context"
	"errors"
	"fmt"

	"washify/internal/booking"
	"washify/internal/catalog"
	"washify/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyDraftKey = errors.New("draft key is required")
	ErrNoDraftStore  = errors.New("draft storage is not configured")
)

// SubmitResult is the outcome of a form submission. Exactly one of Booking
// and Errors is set.
type SubmitResult struct {
	Booking *models.Booking
	Errors  []string
	// Form is what the customer should see next: after a successful submit
	// the per-booking fields are cleared.
	Form booking.Form
}

// FormService drives the booking form: drafts, validation, pricing and
// submission through BookingService.
type FormService struct {
	bookings  *BookingService
	validator *booking.Validator
	drafts    booking.DraftRepository
	catalog   *catalog.Catalog
	logger    *zerolog.Logger
}

func NewFormService(bookings *BookingService, validator *booking.Validator, drafts booking.DraftRepository, c *catalog.Catalog, logger *zerolog.Logger) *FormService {
	return &FormService{
		bookings:  bookings,
		validator: validator,
		drafts:    drafts,
		catalog:   c,
		logger:    logger,
	}
}

// LoadForm returns a fresh form seeded from the stored draft. A missing or
// unreadable draft yields the default form.
func (s *FormService) LoadForm(ctx context.Context, key string) booking.Form {
	if key == "" || s.drafts == nil {
		return booking.ApplyDraft(nil, s.catalog.DefaultCity())
	}
	draft, err := s.drafts.Load(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("draft_key", key).Msg("draft load failed")
		draft = nil
	}
	return booking.ApplyDraft(draft, s.catalog.DefaultCity())
}

func (s *FormService) SaveDraft(ctx context.Context, key string, form booking.Form) error {
	if key == "" {
		return ErrEmptyDraftKey
	}
	if s.drafts == nil {
		return ErrNoDraftStore
	}
	if err := s.drafts.Save(ctx, key, booking.DraftFromForm(form)); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *FormService) ClearDraft(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyDraftKey
	}
	if s.drafts == nil {
		return ErrNoDraftStore
	}
	if err := s.drafts.Clear(ctx, key); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// Quote prices a selection against the current table.
func (s *FormService) Quote(packages []string, car string) (int, []catalog.LineItem) {
	return s.catalog.CalculateTotal(packages, car), s.catalog.Breakdown(packages, car)
}

// Submit saves the draft when a key is given, validates the form and creates
// the booking. Validation failures come back in the result, not as an error.
func (s *FormService) Submit(ctx context.Context, form booking.Form, draftKey string) (*SubmitResult, error) {
	if draftKey != "" && s.drafts != nil {
		// Черновик сохраняется даже при ошибках валидации
		if err := s.drafts.Save(ctx, draftKey, booking.DraftFromForm(form)); err != nil {
			s.logger.Warn().Err(err).Str("draft_key", draftKey).Msg("draft save failed")
		}
	}

	req, errs := s.validator.Validate(form)
	if len(errs) > 0 {
		return &SubmitResult{Errors: errs, Form: form}, nil
	}

	b := req.Booking()
	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	return &SubmitResult{Booking: b, Form: booking.ResetAfterSubmit(form)}, nil
}
