package notify

import (
	"context"
	"fmt"

	"washify/internal/catalog"
	"washify/internal/models"
)

// EmailNotifier renders booking e-mails and hands them to a Sender.
type EmailNotifier struct {
	sender     Sender
	ownerEmail string
	catalog    *catalog.Catalog
}

func NewEmailNotifier(sender Sender, ownerEmail string, c *catalog.Catalog) *EmailNotifier {
	return &EmailNotifier{sender: sender, ownerEmail: ownerEmail, catalog: c}
}

func OwnerSubject(bookingID string) string {
	return fmt.Sprintf("New Booking Received - ID: %s", bookingID)
}

// NotifyOwner sends the new-booking summary to the configured owner address.
func (n *EmailNotifier) NotifyOwner(ctx context.Context, b *models.Booking) error {
	body, err := render(ownerTemplate, newBookingView(b, n.catalog))
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, n.ownerEmail, OwnerSubject(b.ID), body)
}

// SendCustomerConfirmation mails a booking summary to the customer.
// No booking flow calls it yet: bookings do not carry a customer address.
func (n *EmailNotifier) SendCustomerConfirmation(ctx context.Context, to string, b *models.Booking) error {
	body, err := render(customerTemplate, newBookingView(b, n.catalog))
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, to, fmt.Sprintf("Booking Confirmed - Your Service ID: %s", b.ID), body)
}
