package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"hepevd/internal/codec"
	"hepevd/internal/domain"
	"hepevd/internal/repository"
	"hepevd/internal/service"
)

// maxEventBytes bounds uploaded event files
const maxEventBytes = 64 << 20

// EventHandler serves the current event and the stored event library
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// dimension reads the optional ?dim= filter. An empty value means both.
func dimension(r *http.Request) (domain.Dim, error) {
	d := domain.Dim(r.URL.Query().Get("dim"))
	if d != "" && !d.Valid() {
		return "", fmt.Errorf("unknown dimension %q", d)
	}
	return d, nil
}

// current returns the current event, restricted to ?dim= when given
func (h *EventHandler) current(w http.ResponseWriter, r *http.Request) (*domain.Event, bool) {
	dim, err := dimension(r)
	if err != nil {
		h.writeError(w, "Invalid dimension", err.Error(), http.StatusBadRequest)
		return nil, false
	}

	ev, _ := h.svc.Current()
	if dim == "" {
		return ev, true
	}

	s := ev.ForDim(dim)
	out := domain.NewEvent(ev.Name)
	for _, hit := range s.Hits {
		out.Hits = append(out.Hits, *hit)
	}
	for _, mc := range s.MCHits {
		out.MCHits = append(out.MCHits, *mc)
	}
	for _, m := range s.Markers {
		out.Markers = append(out.Markers, *m)
	}
	out.Particles = append(out.Particles, s.Particles...)
	out.Geometry = s.Geometry
	return out, true
}

// GetHits returns the hits of the current event
func (h *EventHandler) GetHits(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.current(w, r); ok {
		h.writeJSON(w, ev.Hits, http.StatusOK)
	}
}

// GetMCHits returns the MC hits of the current event
func (h *EventHandler) GetMCHits(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.current(w, r); ok {
		h.writeJSON(w, ev.MCHits, http.StatusOK)
	}
}

// GetMarkers returns the markers of the current event
func (h *EventHandler) GetMarkers(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.current(w, r); ok {
		h.writeJSON(w, ev.Markers, http.StatusOK)
	}
}

// GetParticles returns the particles of the current event
func (h *EventHandler) GetParticles(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.current(w, r); ok {
		h.writeJSON(w, ev.Particles, http.StatusOK)
	}
}

// GetGeometry returns the detector geometry of the current event
func (h *EventHandler) GetGeometry(w http.ResponseWriter, r *http.Request) {
	if ev, ok := h.current(w, r); ok {
		h.writeJSON(w, ev.Geometry, http.StatusOK)
	}
}

// CurrentResponse describes the event on screen
type CurrentResponse struct {
	Version uint64              `json:"version"`
	Record  *domain.EventRecord `json:"record,omitempty"`
	Summary domain.Summary      `json:"summary"`
}

// GetCurrent returns the record and counts of the current event
func (h *EventHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	ev, version := h.svc.Current()
	h.writeJSON(w, CurrentResponse{
		Version: version,
		Record:  h.svc.CurrentRecord(),
		Summary: ev.Summarize(),
	}, http.StatusOK)
}

// ListEvents returns every stored event
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("Failed to list events: %v", err)
		h.writeError(w, "Failed to list events", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, records, http.StatusOK)
}

// GetEvent returns a stored event
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, "Invalid event ID", "Event ID is required", http.StatusBadRequest)
		return
	}

	ev, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get event", err)
		return
	}
	h.writeJSON(w, ev, http.StatusOK)
}

// CreateEvent imports an uploaded event and makes it current. The codec is
// chosen by Content-Type, JSON unless it names YAML.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}

	imp := codec.ForContentType(r.Header.Get("Content-Type"))
	rec, err := h.svc.Import(r.Context(), bytes.NewReader(data), imp, service.SourceAPI)
	if err != nil {
		log.Printf("Failed to import event: %v", err)
		h.writeServiceError(w, "Failed to import event", err)
		return
	}
	h.writeJSON(w, rec, http.StatusCreated)
}

// SelectEvent makes a stored event current
func (h *EventHandler) SelectEvent(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Select(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to select event", err)
		return
	}
	h.writeJSON(w, rec, http.StatusOK)
}

// DeleteEvent removes a stored event
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export writes a stored event, or the current one when ?id= is absent, in
// the format named by the path
func (h *EventHandler) Export(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(r.PathValue("format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		id = "current"
	}

	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), id, c, &buf); err != nil {
		h.writeServiceError(w, "Failed to export event", err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=event.%s", c.Format()))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Failed to write export: %v", err)
	}
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *EventHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	h.writeError(w, msg, err.Error(), statusFor(err))
}

func (h *EventHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	writeJSON(w, data, statusCode)
}

func (h *EventHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeError(w, error, details, statusCode)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
