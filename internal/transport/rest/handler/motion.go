package handler

import (
	"encoding/json"
	"net/http"

	"podium/internal/service"
	"podium/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// MotionHandler handles the motion queue endpoints
type MotionHandler struct {
	motionSvc *service.MotionService
}

// NewMotionHandler creates a new motion handler
func NewMotionHandler(motionSvc *service.MotionService) *MotionHandler {
	return &MotionHandler{motionSvc: motionSvc}
}

// Propose handles POST /v1/motions
func (h *MotionHandler) Propose(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var in service.MotionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	motion, err := h.motionSvc.Propose(r.Context(), caller, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, motion)
}

// List handles GET /v1/motions
func (h *MotionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	motions, err := h.motionSvc.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, motions)
}

// Accept handles POST /v1/motions/{motionId}/accept
func (h *MotionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	motionID := mux.Vars(r)["motionId"]

	if err := h.motionSvc.Accept(r.Context(), caller, motionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reject handles POST /v1/motions/{motionId}/reject
func (h *MotionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	motionID := mux.Vars(r)["motionId"]

	if err := h.motionSvc.Reject(r.Context(), caller, motionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
