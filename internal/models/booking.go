package models

import "time"

// Booking is a single doorstep wash appointment.
type Booking struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	City       string    `json:"city"`
	Address    string    `json:"address"`
	Date       string    `json:"date"` // YYYY-MM-DD
	TimeSlot   string    `json:"timeSlot"`
	Packages   []string  `json:"packages"`
	Car        string    `json:"car"`
	Price      int       `json:"price"`
	WaterPower bool      `json:"waterPower"`
	Status     string    `json:"status"` // upcoming, completed
	CreatedAt  time.Time `json:"createdAt"`
}

// Clone returns a copy that does not share the packages slice.
func (b Booking) Clone() Booking {
	out := b
	if b.Packages != nil {
		out.Packages = append([]string(nil), b.Packages...)
	}
	return out
}

// IsValidStatus reports whether status is one of the booking statuses.
func IsValidStatus(status string) bool {
	return status == StatusUpcoming || status == StatusCompleted
}
