// Package booking validates booking form input and turns it into a
// submittable request priced from the catalog.
package booking

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	"washify/internal/catalog"
	"washify/internal/models"
)

const (
	MsgName     = "Please enter your full name."
	MsgPhone    = "Phone number must be exactly 10 digits."
	MsgDate     = "Please select a booking date."
	MsgPastDate = "Booking date must be today or later."
	MsgSlot     = "Please choose a time slot."
	MsgPackages = "Please select at least one package."
	MsgCar      = "Please select a car type."
	MsgAgree    = "You must agree to the Terms and Conditions."
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// Form is the raw booking form as entered by the customer.
type Form struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	City       string   `json:"city"`
	Address    string   `json:"address"`
	Date       string   `json:"date"`
	TimeSlot   string   `json:"timeSlot"`
	Packages   []string `json:"packages"`
	Car        string   `json:"car"`
	Agree      bool     `json:"agree"`
	WaterPower bool     `json:"waterPower"`
}

// Request is the payload sent to the booking store.
type Request struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	City       string   `json:"city"`
	Address    string   `json:"address"`
	Date       string   `json:"date"`
	TimeSlot   string   `json:"timeSlot"`
	Packages   []string `json:"packages"`
	Car        string   `json:"car"`
	Price      int      `json:"price"`
	WaterPower bool     `json:"waterPower"`
}

// Booking converts the request into an unsaved booking.
func (r Request) Booking() *models.Booking {
	return &models.Booking{
		Name:       r.Name,
		Phone:      r.Phone,
		City:       r.City,
		Address:    r.Address,
		Date:       r.Date,
		TimeSlot:   r.TimeSlot,
		Packages:   append([]string(nil), r.Packages...),
		Car:        r.Car,
		Price:      r.Price,
		WaterPower: r.WaterPower,
	}
}

type Validator struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewValidator builds a validator; a nil now defaults to time.Now.
func NewValidator(c *catalog.Catalog, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{catalog: c, now: now}
}

// Validate checks every rule and collects all failures in a fixed order.
// The returned request is only meaningful when errs is empty.
func (v *Validator) Validate(form Form) (Request, []string) {
	var errs []string

	// длина в UTF-16 единицах, как считает браузерная форма
	if len(utf16.Encode([]rune(strings.TrimSpace(form.Name)))) < 2 {
		errs = append(errs, MsgName)
	}

	if !phonePattern.MatchString(form.Phone) {
		errs = append(errs, MsgPhone)
	}

	if form.Date == "" {
		errs = append(errs, MsgDate)
	} else if !v.notBeforeToday(form.Date) {
		errs = append(errs, MsgPastDate)
	}

	if !v.catalog.HasSlot(form.TimeSlot) {
		errs = append(errs, MsgSlot)
	}

	if len(form.Packages) == 0 {
		errs = append(errs, MsgPackages)
	}

	if !v.catalog.HasCar(form.Car) {
		errs = append(errs, MsgCar)
	}

	if !form.Agree {
		errs = append(errs, MsgAgree)
	}

	if len(errs) > 0 {
		return Request{}, errs
	}

	return Request{
		Name:       form.Name,
		Phone:      form.Phone,
		City:       form.City,
		Address:    form.Address,
		Date:       form.Date,
		TimeSlot:   form.TimeSlot,
		Packages:   append([]string(nil), form.Packages...),
		Car:        form.Car,
		Price:      v.catalog.CalculateTotal(form.Packages, form.Car),
		WaterPower: form.WaterPower,
	}, nil
}

// notBeforeToday compares against local midnight of the current day.
func (v *Validator) notBeforeToday(date string) bool {
	now := v.now()
	day, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !day.Before(today)
}
