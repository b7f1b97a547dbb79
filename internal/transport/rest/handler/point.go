package handler

import (
	"encoding/json"
	"net/http"

	"podium/internal/model"
	"podium/internal/service"
	"podium/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// PointHandler handles the parliamentary point endpoints
type PointHandler struct {
	pointSvc *service.PointService
}

// NewPointHandler creates a new point handler
func NewPointHandler(pointSvc *service.PointService) *PointHandler {
	return &PointHandler{pointSvc: pointSvc}
}

// Raise handles POST /v1/points
func (h *PointHandler) Raise(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		CountryID string          `json:"countryId"`
		Type      model.PointType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CountryID == "" {
		req.CountryID = caller.CountryID
	}

	point, err := h.pointSvc.Raise(r.Context(), caller, req.CountryID, req.Type)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, point)
}

// List handles GET /v1/points
func (h *PointHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	points, err := h.pointSvc.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// Resolve handles DELETE /v1/points/{pointId}
func (h *PointHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	pointID := mux.Vars(r)["pointId"]

	if err := h.pointSvc.Resolve(r.Context(), caller, pointID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
