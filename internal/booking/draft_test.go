package booking

import (
	"testing"

	"washify/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDraftFromForm_ExcludesPerBookingFields(t *testing.T) {
	form := validForm()
	form.WaterPower = true

	draft := DraftFromForm(form)

	assert.Equal(t, &models.Draft{
		Name:       "Asha Rao",
		Phone:      "9876543210",
		City:       "Jaipur",
		Address:    "12 MI Road",
		Packages:   []string{"quick"},
		Car:        "hatchback",
		WaterPower: true,
	}, draft)
}

func TestApplyDraft(t *testing.T) {
	t.Run("NoDraft", func(t *testing.T) {
		form := ApplyDraft(nil, "Jaipur")
		assert.Equal(t, Form{City: "Jaipur"}, form)
	})

	t.Run("Restores", func(t *testing.T) {
		form := ApplyDraft(&models.Draft{Name: "Ravi", City: "Pune", Packages: []string{"deep"}, Car: "sedan"}, "Jaipur")
		assert.Equal(t, "Ravi", form.Name)
		assert.Equal(t, "Pune", form.City)
		assert.Equal(t, []string{"deep"}, form.Packages)
		assert.Empty(t, form.Date)
		assert.Empty(t, form.TimeSlot)
		assert.False(t, form.Agree)
	})

	t.Run("EmptyCityFallsBack", func(t *testing.T) {
		form := ApplyDraft(&models.Draft{Name: "Ravi"}, "Jaipur")
		assert.Equal(t, "Jaipur", form.City)
	})
}

func TestResetAfterSubmit(t *testing.T) {
	form := validForm()
	reset := ResetAfterSubmit(form)

	assert.Empty(t, reset.Date)
	assert.Empty(t, reset.TimeSlot)
	assert.False(t, reset.Agree)
	assert.Equal(t, form.Name, reset.Name)
	assert.Equal(t, form.Phone, reset.Phone)
	assert.Equal(t, form.Packages, reset.Packages)
	assert.Equal(t, form.Car, reset.Car)
}
