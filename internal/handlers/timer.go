package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/tasks"
	"github.com/benvon/focusdock/internal/timer"
)

// TimerHandler drives the focus timer
type TimerHandler struct {
	timer          *timer.Machine
	tasks          *tasks.Service
	defaultMinutes int
	logger         *zap.Logger
}

// NewTimerHandler creates a new timer handler. taskService resolves linked
// task titles and may be nil.
func NewTimerHandler(machine *timer.Machine, taskService *tasks.Service, defaultMinutes int, logger *zap.Logger) *TimerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimerHandler{timer: machine, tasks: taskService, defaultMinutes: defaultMinutes, logger: logger}
}

// RegisterRoutes registers timer routes on a router with the /timer prefix
func (h *TimerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetState).Methods("GET")
	r.HandleFunc("/start", h.Start).Methods("POST")
	r.HandleFunc("/pause", h.Pause).Methods("POST")
	r.HandleFunc("/resume", h.Resume).Methods("POST")
	r.HandleFunc("/stop", h.Stop).Methods("POST")
	r.HandleFunc("/dismiss", h.Dismiss).Methods("POST")
}

// TimerResponse is a timer snapshot plus the MM:SS readout
type TimerResponse struct {
	timer.Snapshot
	Clock string `json:"clock"`
}

// NewTimerResponse renders a snapshot for clients
func NewTimerResponse(s timer.Snapshot) TimerResponse {
	return TimerResponse{Snapshot: s, Clock: timer.FormatClock(s.RemainingSeconds)}
}

// StartTimerRequest starts a session. Zero minutes uses the default.
type StartTimerRequest struct {
	Minutes int    `json:"minutes" validate:"gte=0,lte=1440"`
	TaskID  string `json:"task_id,omitempty"`
}

// GetState returns the current timer state
func (h *TimerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewTimerResponse(h.timer.State()))
}

// Start begins a new session, optionally linked to a saved task
func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartTimerRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	minutes := req.Minutes
	if minutes == 0 {
		minutes = h.defaultMinutes
	}

	var title string
	if req.TaskID != "" && h.tasks != nil {
		task, err := h.tasks.Store().Get(r.Context(), req.TaskID)
		if err != nil {
			if errors.Is(err, tasks.ErrTaskNotFound) {
				respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
				return
			}
			h.logger.Error("failed_to_load_linked_task", zap.String("task_id", req.TaskID), zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load task")
			return
		}
		title = task.Title
	}

	snap, err := h.timer.Start(r.Context(), minutes, req.TaskID, title)
	if err != nil {
		if errors.Is(err, timer.ErrInvalidDuration) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start timer")
		return
	}
	respondJSON(w, http.StatusOK, NewTimerResponse(snap))
}

// Pause freezes a running session
func (h *TimerHandler) Pause(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewTimerResponse(h.timer.Pause(r.Context())))
}

// Resume continues a paused session
func (h *TimerHandler) Resume(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewTimerResponse(h.timer.Resume(r.Context())))
}

// Stop ends the session
func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewTimerResponse(h.timer.Stop(r.Context())))
}

// Dismiss clears the finished notice
func (h *TimerHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewTimerResponse(h.timer.DismissFinished()))
}
