package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/abhinaya/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

type listEventsResponse struct {
	Events []*store.Event `json:"events"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

// EventsHandler serves GET /api/events. With ?session=ID it lists that
// session's clicks in firing order; otherwise the most recent clicks.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var (
		events []*store.Event
		err    error
	)
	if id := r.URL.Query().Get("session"); id != "" {
		if _, err := h.store.Sessions().GetByID(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get session")
			return
		}
		events, err = h.store.Events().ListBySession(id)
	} else {
		limit, ok := queryLimit(r, defaultListLimit, maxListLimit)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		events, err = h.store.Events().Recent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	if events == nil {
		events = []*store.Event{}
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

// SessionsHandler serves GET /api/sessions, newest first.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a SessionsHandler.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, ok := queryLimit(r, defaultListLimit, maxListLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}
