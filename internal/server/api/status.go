package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/abhinaya/internal/app"
)

// Controller is the part of the running app the API drives.
type Controller interface {
	Status() app.Status
	IsEnabled() bool
	SetEnabled(enabled bool)
	ResetCalibration()
}

// StatusHandler serves GET /api/status.
type StatusHandler struct {
	ctrl Controller
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(ctrl Controller) *StatusHandler {
	return &StatusHandler{ctrl: ctrl}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

type enabledBody struct {
	Enabled *bool `json:"enabled"`
}

type enabledResponse struct {
	Enabled bool `json:"enabled"`
}

// EnabledHandler serves /api/enabled: GET reads the toggle, PUT sets it.
type EnabledHandler struct {
	ctrl Controller
}

// NewEnabledHandler creates an EnabledHandler.
func NewEnabledHandler(ctrl Controller) *EnabledHandler {
	return &EnabledHandler{ctrl: ctrl}
}

func (h *EnabledHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, enabledResponse{Enabled: h.ctrl.IsEnabled()})
	case http.MethodPut, http.MethodPost:
		var body enabledBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if body.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.ctrl.SetEnabled(*body.Enabled)
		writeJSON(w, http.StatusOK, enabledResponse{Enabled: h.ctrl.IsEnabled()})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// CalibrationHandler serves POST /api/calibration/reset.
type CalibrationHandler struct {
	ctrl Controller
}

// NewCalibrationHandler creates a CalibrationHandler.
func NewCalibrationHandler(ctrl Controller) *CalibrationHandler {
	return &CalibrationHandler{ctrl: ctrl}
}

func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.ctrl.ResetCalibration()
	writeJSON(w, http.StatusOK, h.ctrl.Status().Engine)
}
