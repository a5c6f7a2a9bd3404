package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"washify/internal/booking"
	"washify/internal/catalog"
	"washify/internal/service"
)

const msgFormsUnavailable = "booking form is not available"

func (s *HTTPServer) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.Definition())
}

type quoteRequest struct {
	Packages []string `json:"packages"`
	Car      string   `json:"car"`
}

type quoteResponse struct {
	Total int                `json:"total"`
	Items []catalog.LineItem `json:"items"`
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	items := s.deps.Catalog.Breakdown(req.Packages, req.Car)
	if items == nil {
		items = []catalog.LineItem{}
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Total: s.deps.Catalog.CalculateTotal(req.Packages, req.Car),
		Items: items,
	})
}

type submitFormRequest struct {
	booking.Form
	DraftKey string `json:"draftKey"`
}

func (s *HTTPServer) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	if s.deps.Forms == nil {
		writeError(w, http.StatusServiceUnavailable, msgFormsUnavailable)
		return
	}

	var req submitFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.deps.Forms.Submit(r.Context(), req.Form, strings.TrimSpace(req.DraftKey))
	if err != nil {
		s.log(r).Err(err).Msg("booking form submit error")
		writeError(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}
	if len(res.Errors) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": res.Errors})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"bookingId": res.Booking.ID,
		"price":     res.Booking.Price,
		"form":      res.Form,
	})
}

func (s *HTTPServer) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Forms == nil {
		writeError(w, http.StatusServiceUnavailable, msgFormsUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Forms.LoadForm(r.Context(), r.PathValue("key")))
}

func (s *HTTPServer) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Forms == nil {
		writeError(w, http.StatusServiceUnavailable, msgFormsUnavailable)
		return
	}

	var form booking.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.deps.Forms.SaveDraft(r.Context(), r.PathValue("key"), form); err != nil {
		if errors.Is(err, service.ErrNoDraftStore) {
			writeError(w, http.StatusServiceUnavailable, msgFormsUnavailable)
			return
		}
		s.log(r).Err(err).Msg("save draft error")
		writeError(w, http.StatusInternalServerError, "Failed to save draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Forms == nil {
		writeError(w, http.StatusServiceUnavailable, msgFormsUnavailable)
		return
	}
	if err := s.deps.Forms.ClearDraft(r.Context(), r.PathValue("key")); err != nil {
		if errors.Is(err, service.ErrNoDraftStore) {
			writeError(w, http.StatusServiceUnavailable, msgFormsUnavailable)
			return
		}
		s.log(r).Err(err).Msg("clear draft error")
		writeError(w, http.StatusInternalServerError, "Failed to clear draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
