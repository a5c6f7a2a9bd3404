package booking

import (
	"context"

	"washify/internal/models"
)

// DraftRepository persists the in-progress form between visits.
// Load returns nil, nil when no draft is stored under key.
type DraftRepository interface {
	Load(ctx context.Context, key string) (*models.Draft, error)
	Save(ctx context.Context, key string, draft *models.Draft) error
	Clear(ctx context.Context, key string) error
}

// DraftFromForm keeps the identity and vehicle fields only.
func DraftFromForm(form Form) *models.Draft {
	return &models.Draft{
		Name:       form.Name,
		Phone:      form.Phone,
		City:       form.City,
		Address:    form.Address,
		Packages:   append([]string(nil), form.Packages...),
		Car:        form.Car,
		WaterPower: form.WaterPower,
	}
}

// ApplyDraft seeds a fresh form from a stored draft. Date, slot and
// agreement always start empty.
func ApplyDraft(draft *models.Draft, defaultCity string) Form {
	form := Form{City: defaultCity}
	if draft == nil {
		return form
	}
	form.Name = draft.Name
	form.Phone = draft.Phone
	form.Address = draft.Address
	form.Packages = append([]string(nil), draft.Packages...)
	form.Car = draft.Car
	form.WaterPower = draft.WaterPower
	if draft.City != "" {
		form.City = draft.City
	}
	return form
}

// ResetAfterSubmit clears the per-booking fields and keeps the rest for the next booking.
func ResetAfterSubmit(form Form) Form {
	form.Date = ""
	form.TimeSlot = ""
	form.Agree = false
	return form
}
