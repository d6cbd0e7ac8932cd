package handlers

import (
	"errors"
	"log"
	"net/http"
	"property-insight-service/internal/api/dto"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"property-insight-service/internal/services"
	"strings"

	"github.com/gorilla/mux"
)

// PropertyHandler drives the listing analysis pipeline over HTTP.
type PropertyHandler struct {
	Service  *services.PropertyService
	Personas []string
}

// Initialize scrapes a listing and computes its distances. Failures caused by
// the input (bad URL, unreachable listing) come back as a session in status
// "error" with HTTP 200.
func (h *PropertyHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req dto.InitializeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		writeError(w, r, http.StatusBadRequest, "url is required")
		return
	}
	if err := validateCategories(req.Categories, h.Service.Engine.Categories()); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.Service.InitializeProperty(r.Context(), url, req.Categories)
	if err != nil {
		log.Printf("req_id=%s initialize property failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewSessionResponse(sess))
}

// Analyze produces a narrative analysis for an initialized session.
func (h *PropertyHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, r, http.StatusBadRequest, "session_id is required")
		return
	}

	analysis, err := h.Service.AnalyzeSession(r.Context(), req.SessionID, req.Agent, req.Quick)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, services.ErrSessionNotReady):
		writeError(w, r, http.StatusConflict, services.ErrSessionNotReady.Error())
		return
	case errors.Is(err, ports.ErrUnknownPersona):
		writeError(w, r, http.StatusBadRequest, "unknown agent "+strings.TrimSpace(req.Agent))
		return
	case errors.Is(err, services.ErrNarratorDisabled):
		writeError(w, r, http.StatusServiceUnavailable, services.ErrNarratorDisabled.Error())
		return
	default:
		log.Printf("req_id=%s analyze session=%s failed: %v", obs.RequestID(r.Context()), req.SessionID, err)
		writeError(w, r, http.StatusBadGateway, "analysis failed")
		return
	}

	res := dto.AnalyzeResponse{
		SessionID: req.SessionID,
		Analysis:  analysis,
	}
	res.Agent, _ = analysis["agent"].(string)
	res.Timestamp, _ = analysis["timestamp"].(string)

	writeJSON(w, r, http.StatusOK, res)
}

// Session returns a stored session by id.
func (h *PropertyHandler) Session(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	sess, err := h.Service.Sessions.Get(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		log.Printf("req_id=%s get session=%s failed: %v", obs.RequestID(r.Context()), id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewSessionResponse(sess))
}

// ListPersonas reports the analysis personas the narrator supports.
func (h *PropertyHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	personas := h.Personas
	if personas == nil {
		personas = []string{}
	}
	writeJSON(w, r, http.StatusOK, dto.PersonasResponse{Personas: personas})
}
