package listing

import (
	"context"
	"fmt"
	"sync"

	"washify/internal/models"
)

// Store is the booking persistence the list view talks to.
type Store interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) (*models.Booking, error)
}

// Model keeps the fetched collection and the current list parameters.
// Mutations go to the store first; the local copy changes only after the
// store confirms.
type Model struct {
	mu       sync.Mutex
	store    Store
	bookings []models.Booking
	params   Params
}

func NewModel(store Store, params Params) *Model {
	return &Model{store: store, params: params.Normalize()}
}

// Reload replaces the collection with a fresh read. On failure the list is
// left empty and the error is returned.
func (m *Model) Reload(ctx context.Context) error {
	bookings, err := m.store.ListBookings(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.Page = 1
	if err != nil {
		m.bookings = nil
		return fmt.Errorf("failed to load bookings: %w", err)
	}
	m.bookings = bookings
	return nil
}

func (m *Model) SetFilter(filter string) {
	m.update(func(p *Params) { p.Filter = filter })
}

func (m *Model) SetSearch(search string) {
	m.update(func(p *Params) { p.Search = search })
}

func (m *Model) SetSort(order string) {
	m.update(func(p *Params) { p.Sort = order })
}

func (m *Model) update(fn func(p *Params)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.params)
	m.params.Page = 1
	m.params = m.params.Normalize()
}

// LoadMore extends the visible window by one page.
func (m *Model) LoadMore() Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.Page++
	return Apply(m.bookings, m.params)
}

func (m *Model) View() Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Apply(m.bookings, m.params)
}

func (m *Model) Params() Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params
}

// SetStatus changes a booking status in the store and then in the local collection.
func (m *Model) SetStatus(ctx context.Context, id, status string) error {
	updated, err := m.store.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID != id {
			continue
		}
		if updated != nil {
			m.bookings[i] = updated.Clone()
		} else {
			m.bookings[i].Status = status
		}
	}
	m.params.Page = 1
	return nil
}

// Remove deletes a booking in the store and then drops it locally.
func (m *Model) Remove(ctx context.Context, id string) error {
	if _, err := m.store.DeleteBooking(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]models.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	m.bookings = kept
	m.params.Page = 1
	return nil
}
