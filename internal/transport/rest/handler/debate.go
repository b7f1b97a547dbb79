package handler

import (
	"encoding/json"
	"net/http"

	"podium/internal/model"
	"podium/internal/service"
	"podium/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// DebateHandler handles the debate-mode command endpoints
type DebateHandler struct {
	debateSvc *service.DebateService
}

// NewDebateHandler creates a new debate handler
func NewDebateHandler(debateSvc *service.DebateService) *DebateHandler {
	return &DebateHandler{debateSvc: debateSvc}
}

// ChangeMode handles PUT /v1/debate/mode
func (h *DebateHandler) ChangeMode(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		Mode model.DebateMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.ChangeMode(r.Context(), caller, req.Mode); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateGsl handles PATCH /v1/debate/gsl
func (h *DebateHandler) UpdateGsl(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var upd service.GslUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.UpdateGslData(r.Context(), caller, upd); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateMod handles PATCH /v1/debate/mod
func (h *DebateHandler) UpdateMod(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var upd service.ModUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.UpdateModData(r.Context(), caller, upd); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateUnmod handles PATCH /v1/debate/unmod
func (h *DebateHandler) UpdateUnmod(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var upd service.UnmodUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.UpdateUnmodData(r.Context(), caller, upd); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateSingle handles PATCH /v1/debate/single
func (h *DebateHandler) UpdateSingle(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var upd service.SingleUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.UpdateSingleSpeakerData(r.Context(), caller, upd); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateVoting handles PATCH /v1/debate/voting
func (h *DebateHandler) UpdateVoting(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var upd service.VotingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.UpdateVotingData(r.Context(), caller, upd); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddListParticipant handles POST /v1/debate/gsl/list
func (h *DebateHandler) AddListParticipant(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		CountryID string `json:"countryId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.AddListParticipant(r.Context(), caller, req.CountryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// RemoveListParticipant handles DELETE /v1/debate/gsl/list/{countryId}
func (h *DebateHandler) RemoveListParticipant(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	countryID := mux.Vars(r)["countryId"]

	if err := h.debateSvc.RemoveListParticipant(r.Context(), caller, countryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NextSpeaker handles POST /v1/debate/gsl/next
func (h *DebateHandler) NextSpeaker(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	if err := h.debateSvc.NextSpeaker(r.Context(), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// YieldTime handles POST /v1/debate/yield
func (h *DebateHandler) YieldTime(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		CountryID string `json:"countryId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.YieldTime(r.Context(), caller, req.CountryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RaiseHand handles POST /v1/debate/mod/hands
func (h *DebateHandler) RaiseHand(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		CountryID string `json:"countryId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.RaiseHand(r.Context(), caller, req.CountryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LowerHand handles DELETE /v1/debate/mod/hands/{countryId}
func (h *DebateHandler) LowerHand(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	countryID := mux.Vars(r)["countryId"]

	if err := h.debateSvc.LowerHand(r.Context(), caller, countryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetSpeaker handles PUT /v1/debate/speaker
func (h *DebateHandler) SetSpeaker(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		CountryID string `json:"countryId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.SetSpeaker(r.Context(), caller, req.CountryID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Vote handles POST /v1/debate/voting/votes
func (h *DebateHandler) Vote(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		CountryID string           `json:"countryId"`
		Vote      model.VoteChoice `json:"vote"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.debateSvc.Vote(r.Context(), caller, req.CountryID, req.Vote); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearVotes handles DELETE /v1/debate/voting/votes
func (h *DebateHandler) ClearVotes(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	if err := h.debateSvc.ClearVotes(r.Context(), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
