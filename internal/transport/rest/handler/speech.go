package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"podium/internal/service"
	"podium/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// SpeechHandler handles the speech ledger endpoints
type SpeechHandler struct {
	speechSvc *service.SpeechService
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(speechSvc *service.SpeechService) *SpeechHandler {
	return &SpeechHandler{speechSvc: speechSvc}
}

// List handles GET /v1/speeches
func (h *SpeechHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	speeches, err := h.speechSvc.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, speeches)
}

// Rate handles PATCH /v1/speeches/{speechId}
func (h *SpeechHandler) Rate(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	speechID := mux.Vars(r)["speechId"]

	var req struct {
		Rating     *int    `json:"rating"`
		Comments   *string `json:"comments"`
		DelegateID *string `json:"delegateId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.speechSvc.Rate(r.Context(), caller, speechID, req.Rating, req.Comments, req.DelegateID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Clear handles DELETE /v1/speeches
func (h *SpeechHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	if err := h.speechSvc.Clear(r.Context(), caller); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats handles GET /v1/speeches/stats
func (h *SpeechHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	stats, err := h.speechSvc.Stats(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Table handles GET /v1/speeches/table
func (h *SpeechHandler) Table(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	rows, err := h.speechSvc.Table(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// TopSpeakers handles GET /v1/speeches/top
func (h *SpeechHandler) TopSpeakers(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.speechSvc.TopSpeakers(r.Context(), caller, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
