package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"washify/internal/catalog"
	"washify/internal/listing"
	"washify/internal/models"
)

type viewItem struct {
	models.Booking
	Breakdown    []catalog.LineItem `json:"breakdown"`
	CurrentTotal int                `json:"currentTotal"`
}

type viewResponse struct {
	Items   []viewItem     `json:"items"`
	Total   int            `json:"total"`
	HasMore bool           `json:"hasMore"`
	Page    int            `json:"page"`
	Params  listing.Params `json:"params"`
}

// readOnlyStore lets the list model load without exposing mutations.
type readOnlyStore struct {
	BookingStore
}

func (readOnlyStore) UpdateBookingStatus(context.Context, string, string) (*models.Booking, error) {
	return nil, fmt.Errorf("read-only view")
}

func (readOnlyStore) DeleteBooking(context.Context, string) (*models.Booking, error) {
	return nil, fmt.Errorf("read-only view")
}

func (s *HTTPServer) handleBookingsView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listing.DefaultParams()
	params.PageSize = s.deps.PageSize
	if v := q.Get("filter"); v != "" {
		params.Filter = v
	}
	if v := q.Get("sort"); v != "" {
		params.Sort = v
	}
	params.Search = strings.TrimSpace(q.Get("search"))
	page := 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			page = n
		}
	}

	model := listing.NewModel(readOnlyStore{s.deps.Bookings}, params)
	if err := model.Reload(r.Context()); err != nil {
		s.log(r).Err(err).Msg("error fetching bookings")
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	// Страницы набираются через "load more", как в списке администратора
	window := model.View()
	for window.Page < page && window.HasMore {
		window = model.LoadMore()
	}

	items := make([]viewItem, 0, len(window.Items))
	for _, b := range window.Items {
		breakdown := s.deps.Catalog.Breakdown(b.Packages, b.Car)
		if breakdown == nil {
			breakdown = []catalog.LineItem{}
		}
		items = append(items, viewItem{
			Booking:      b,
			Breakdown:    breakdown,
			CurrentTotal: s.deps.Catalog.CalculateTotal(b.Packages, b.Car),
		})
	}

	writeJSON(w, http.StatusOK, viewResponse{
		Items:   items,
		Total:   window.Total,
		HasMore: window.HasMore,
		Page:    window.Page,
		Params:  model.Params(),
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not available")
		return
	}

	path, err := s.deps.Exporter.Export(r.Context())
	if err != nil {
		s.log(r).Err(err).Msg("export error")
		writeError(w, http.StatusInternalServerError, "Failed to export bookings")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
