package handler

import (
	"encoding/json"
	"net/http"

	"podium/internal/model"
	"podium/internal/service"
	"podium/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// CommitteeHandler handles committee and country endpoints
type CommitteeHandler struct {
	committeeSvc *service.CommitteeService
}

// NewCommitteeHandler creates a new committee handler
func NewCommitteeHandler(committeeSvc *service.CommitteeService) *CommitteeHandler {
	return &CommitteeHandler{committeeSvc: committeeSvc}
}

// Snapshot handles GET /v1/committee
func (h *CommitteeHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	snapshot, err := h.committeeSvc.Snapshot(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// UpdateInfo handles PATCH /v1/committee
func (h *CommitteeHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		Name   *string `json:"name"`
		Agenda *string `json:"agenda"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.committeeSvc.UpdateInfo(r.Context(), caller, req.Name, req.Agenda); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCountries handles GET /v1/committee/countries
func (h *CommitteeHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	countries, err := h.committeeSvc.ListCountries(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

// OwnCountry handles GET /v1/committee/countries/own
func (h *CommitteeHandler) OwnCountry(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	country, err := h.committeeSvc.OwnCountry(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, country)
}

// UpdateRoll handles PUT /v1/committee/countries/{countryId}/roll
func (h *CommitteeHandler) UpdateRoll(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	countryID := mux.Vars(r)["countryId"]

	var req struct {
		Roll model.Roll `json:"roll"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.committeeSvc.UpdateRoll(r.Context(), caller, countryID, req.Roll); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
