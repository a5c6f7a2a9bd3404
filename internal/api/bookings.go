package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"washify/internal/models"
)

const (
	msgMissingFields = "Missing required fields"
	msgCreateFailed  = "Failed to create booking"
	msgFetchFailed   = "Failed to fetch bookings"
	msgIDRequired    = "Booking ID is required"
	msgDeleteFailed  = "Failed to delete booking"
	msgUpdateFailed  = "Failed to update booking"
	msgInvalidStatus = "Invalid status"
)

// lenientInt accepts a JSON number or a numeric string and keeps the leading
// integer part. Anything else decodes to 0. Values beyond the int32 price
// column are kept so the handler can refuse them.
type lenientInt int64

func (n *lenientInt) UnmarshalJSON(data []byte) error {
	*n = 0
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x) || math.IsInf(x, 0):
		case x >= math.MaxInt64:
			*n = math.MaxInt64
		case x <= math.MinInt64:
			*n = math.MinInt64
		default:
			*n = lenientInt(int64(x))
		}
	case string:
		*n = lenientInt(leadingInt(x))
	}
	return nil
}

func (n lenientInt) fitsColumn() bool {
	return n >= math.MinInt32 && n <= math.MaxInt32
}

// leadingInt parses the leading integer of s. Overflow saturates.
func leadingInt(s string) int64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	// на переполнении ParseInt возвращает граничное значение
	v, _ := strconv.ParseInt(s[:end], 10, 64)
	return v
}

// truthy treats any JSON value other than false, 0, "", null as true.
type truthy bool

func (b *truthy) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		*b = false
		return nil
	}
	switch x := v.(type) {
	case bool:
		*b = truthy(x)
	case float64:
		*b = x != 0
	case string:
		*b = x != ""
	case nil:
		*b = false
	default:
		*b = true
	}
	return nil
}

type createBookingRequest struct {
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	City       string     `json:"city"`
	Address    string     `json:"address"`
	Date       string     `json:"date"`
	TimeSlot   string     `json:"timeSlot"`
	Packages   []string   `json:"packages"`
	Car        string     `json:"car"`
	Price      lenientInt `json:"price"`
	WaterPower truthy     `json:"waterPower"`
}

func (r createBookingRequest) complete() bool {
	return r.Name != "" && r.Phone != "" && r.City != "" && r.Address != "" &&
		r.Date != "" && r.TimeSlot != "" && len(r.Packages) > 0 && r.Car != ""
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log(r).Err(err).Msg("decode booking body")
		writeError(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	if !req.Price.fitsColumn() {
		s.log(r).Int64("price", int64(req.Price)).Msg("price out of range")
		writeError(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	booking := &models.Booking{
		Name:       req.Name,
		Phone:      req.Phone,
		City:       req.City,
		Address:    req.Address,
		Date:       req.Date,
		TimeSlot:   req.TimeSlot,
		Packages:   req.Packages,
		Car:        req.Car,
		Price:      int(req.Price),
		WaterPower: bool(req.WaterPower),
	}
	if err := s.deps.Bookings.CreateBooking(r.Context(), booking); err != nil {
		s.log(r).Err(err).Msg("booking creation error")
		writeError(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "bookingId": booking.ID})
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.deps.Bookings.ListBookings(r.Context())
	if err != nil {
		s.log(r).Err(err).Msg("error fetching bookings")
		writeError(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, msgIDRequired)
		return
	}

	// Ненайденная заявка тоже отдается как 500
	booking, err := s.deps.Bookings.DeleteBooking(r.Context(), id)
	if err != nil {
		s.log(r).Err(err).Str("booking_id", id).Msg("delete booking error")
		writeError(w, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking deleted successfully",
		"booking": booking,
	})
}

func (s *HTTPServer) handleUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status json.RawMessage `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.log(r).Err(err).Msg("decode status body")
		writeError(w, http.StatusInternalServerError, msgUpdateFailed)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, msgIDRequired)
		return
	}
	// числа, массивы и прочие не-строки считаются неверным статусом
	var status string
	if err := json.Unmarshal(body.Status, &status); err != nil || !models.IsValidStatus(status) {
		writeError(w, http.StatusBadRequest, msgInvalidStatus)
		return
	}

	booking, err := s.deps.Bookings.UpdateBookingStatus(r.Context(), id, status)
	if err != nil {
		s.log(r).Err(err).Str("booking_id", id).Msg("update booking error")
		writeError(w, http.StatusInternalServerError, msgUpdateFailed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking status updated successfully",
		"booking": booking,
	})
}
