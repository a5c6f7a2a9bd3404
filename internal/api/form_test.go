package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"washify/internal/booking"
	"washify/internal/catalog"
	"washify/internal/config"
	"washify/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var def catalog.Definition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &def))
	assert.Equal(t, "Jaipur", def.DefaultCity)
	assert.Len(t, def.Packages, 4)
	assert.Len(t, def.Cars, 5)
	assert.Equal(t, 1399, def.Packages[1].Prices[catalog.CarSUV7])
}

func TestQuoteEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/quote", `{"packages":["quick","rubbing"],"car":"suv5"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 449+1799, out.Total)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Quick Shine", out.Items[0].Label)

	// без класса машины цена нулевая
	rec = env.do(t, http.MethodPost, "/api/v1/quote", `{"packages":["quick"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 0, out.Total)

	rec = env.do(t, http.MethodPost, "/api/v1/quote", `nope`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const formBody = `{"name":"Asha Rao","phone":"9876543210","city":"Pune","address":"12 FC Road",
"date":"2099-05-01","timeSlot":"slot3","packages":["deep"],"car":"compact","agree":true,"waterPower":true,"draftKey":"device-1"}`

func TestSubmitForm(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/booking-form", formBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Success   bool         `json:"success"`
		BookingID string       `json:"bookingId"`
		Price     int          `json:"price"`
		Form      booking.Form `json:"form"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, 999, out.Price)
	assert.Empty(t, out.Form.Date)
	assert.Empty(t, out.Form.TimeSlot)
	assert.False(t, out.Form.Agree)
	assert.Equal(t, "Asha Rao", out.Form.Name)

	stored, err := env.db.GetBooking(t.Context(), out.BookingID)
	require.NoError(t, err)
	assert.Equal(t, 999, stored.Price)
	assert.True(t, stored.WaterPower)

	// черновик сохранен под ключом формы
	rec = env.do(t, http.MethodGet, "/api/v1/drafts/device-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var draft booking.Form
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &draft))
	assert.Equal(t, "12 FC Road", draft.Address)
	assert.Equal(t, []string{"deep"}, draft.Packages)
	assert.Empty(t, draft.Date)
}

func TestSubmitForm_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/booking-form",
		`{"name":"A","phone":"12345","date":"2000-01-01","packages":[],"car":"truck"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var out struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{
		booking.MsgName,
		booking.MsgPhone,
		booking.MsgPastDate,
		booking.MsgSlot,
		booking.MsgPackages,
		booking.MsgCar,
		booking.MsgAgree,
	}, out.Errors)

	list, err := env.db.ListBookings(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitForm_Unavailable(t *testing.T) {
	env := newTestEnv(t, func(_ *config.APIConfig, deps *Deps) {
		deps.Forms = nil
	})

	rec := env.do(t, http.MethodPost, "/api/v1/booking-form", formBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/drafts/x", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDrafts_NoDraftStore(t *testing.T) {
	env := newTestEnv(t, func(_ *config.APIConfig, deps *Deps) {
		logger := zerolog.Nop()
		bookings := deps.Bookings.(*service.BookingService)
		deps.Forms = service.NewFormService(bookings, booking.NewValidator(deps.Catalog, nil), nil, deps.Catalog, &logger)
	})

	rec := env.do(t, http.MethodPut, "/api/v1/drafts/k", `{"name":"Asha"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, msgFormsUnavailable, decodeMap(t, rec)["error"])

	rec = env.do(t, http.MethodDelete, "/api/v1/drafts/k", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/drafts/k", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDraftLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/drafts/k", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var form booking.Form
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.Equal(t, "Jaipur", form.City)
	assert.Empty(t, form.Name)

	rec = env.do(t, http.MethodPut, "/api/v1/drafts/k",
		`{"name":"Kiran","phone":"9000000000","city":"Delhi","date":"2099-01-01","timeSlot":"slot1","agree":true}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/drafts/k", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.Equal(t, "Kiran", form.Name)
	assert.Equal(t, "Delhi", form.City)
	assert.Empty(t, form.Date)
	assert.Empty(t, form.TimeSlot)
	assert.False(t, form.Agree)

	rec = env.do(t, http.MethodPut, "/api/v1/drafts/k", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/drafts/k", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/drafts/k", "")
	form = booking.Form{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.Empty(t, form.Name)
	assert.Equal(t, "Jaipur", form.City)
}
