package handler

import (
	"encoding/json"
	"net/http"

	"podium/internal/model"
	"podium/internal/repository"
	"podium/internal/service"
	"podium/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// DocumentHandler handles the document endpoints
type DocumentHandler struct {
	documentSvc *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentSvc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// Submit handles POST /v1/documents
func (h *DocumentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	var req struct {
		CountryID string             `json:"countryId"`
		Type      model.DocumentType `json:"type"`
		Title     string             `json:"title"`
		URL       string             `json:"url"`
		Comments  string             `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CountryID == "" {
		req.CountryID = caller.CountryID
	}

	doc, err := h.documentSvc.Submit(r.Context(), caller, req.CountryID, req.Type, req.Title, req.URL, req.Comments)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /v1/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	docs, err := h.documentSvc.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Get handles GET /v1/documents/{documentId}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	documentID := mux.Vars(r)["documentId"]

	doc, err := h.documentSvc.Get(r.Context(), caller, documentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Update handles PATCH /v1/documents/{documentId}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	documentID := mux.Vars(r)["documentId"]

	var req struct {
		Type     *model.DocumentType  `json:"type"`
		State    *model.DocumentState `json:"state"`
		Title    *string              `json:"title"`
		URL      *string              `json:"url"`
		Comments *string              `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	upd := repository.DocumentUpdate{
		Type:     req.Type,
		State:    req.State,
		Title:    req.Title,
		URL:      req.URL,
		Comments: req.Comments,
	}

	doc, err := h.documentSvc.Update(r.Context(), caller, documentID, upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /v1/documents/{documentId}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())
	documentID := mux.Vars(r)["documentId"]

	if err := h.documentSvc.Delete(r.Context(), caller, documentID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
