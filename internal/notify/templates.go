package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"washify/internal/catalog"
	"washify/internal/models"
)

// bookingView is the booking as shown to people: labels instead of ids.
type bookingView struct {
	ID         string
	Name       string
	Phone      string
	City       string
	Address    string
	Date       string
	TimeSlot   string
	Car        string
	Packages   string
	Price      string
	WaterPower string
}

func newBookingView(b *models.Booking, c *catalog.Catalog) bookingView {
	labels := make([]string, 0, len(b.Packages))
	for _, p := range b.Packages {
		labels = append(labels, c.PackageLabel(p))
	}
	water := "No"
	if b.WaterPower {
		water = "Yes"
	}
	return bookingView{
		ID:         b.ID,
		Name:       b.Name,
		Phone:      b.Phone,
		City:       b.City,
		Address:    b.Address,
		Date:       b.Date,
		TimeSlot:   c.SlotLabel(b.TimeSlot),
		Car:        c.CarLabel(b.Car),
		Packages:   strings.Join(labels, ", "),
		Price:      fmt.Sprintf("₹ %d", b.Price),
		WaterPower: water,
	}
}

var ownerTemplate = template.Must(template.New("owner").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #E81E25;">New Booking Received!</h1>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="padding: 10px; font-weight: bold;">Booking ID:</td><td style="padding: 10px; font-family: monospace;">{{.ID}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Customer Name:</td><td style="padding: 10px;">{{.Name}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Phone:</td><td style="padding: 10px;"><a href="tel:{{.Phone}}">{{.Phone}}</a></td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">City:</td><td style="padding: 10px;">{{.City}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Address:</td><td style="padding: 10px;">{{.Address}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Booking Date:</td><td style="padding: 10px;">{{.Date}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Time Slot:</td><td style="padding: 10px;">{{.TimeSlot}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Car Type:</td><td style="padding: 10px;">{{.Car}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Services:</td><td style="padding: 10px;">{{.Packages}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Price:</td><td style="padding: 10px; color: #E81E25; font-weight: bold;">{{.Price}}</td></tr>
    <tr><td style="padding: 10px; font-weight: bold;">Water &amp; Electricity Available:</td><td style="padding: 10px;">{{.WaterPower}}</td></tr>
  </table>
  <p style="color: #666; font-size: 12px;">This is an automated notification from Washify Booking System</p>
  <p style="color: #666; font-size: 12px;">Please respond to the customer as soon as possible to confirm the booking.</p>
</div>`))

var customerTemplate = template.Must(template.New("customer").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #E81E25;">Booking Confirmed!</h1>
  <p>Dear <strong>{{.Name}}</strong>,</p>
  <p>Thank you for booking with Washify! Your booking has been confirmed.</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="padding: 8px; font-weight: bold;">Service ID:</td><td style="padding: 8px; font-family: monospace;">{{.ID}}</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">Date:</td><td style="padding: 8px;">{{.Date}}</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">Time:</td><td style="padding: 8px;">{{.TimeSlot}}</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">Services:</td><td style="padding: 8px;">{{.Packages}}</td></tr>
    <tr><td style="padding: 8px; font-weight: bold;">Amount:</td><td style="padding: 8px; color: #E81E25; font-weight: bold;">{{.Price}}</td></tr>
  </table>
  <p>Our team will contact you shortly to confirm the exact location. Please keep your phone available.</p>
  <p style="color: #666; font-size: 12px;">If you need to cancel or reschedule, please contact us at least 12 hours before your scheduled time.</p>
</div>`))

func render(t *template.Template, v bookingView) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
