package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/logger"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/queue"
	"github.com/benvon/focusdock/internal/tasks"
	"github.com/benvon/focusdock/internal/validation"
)

// JobEnqueuer accepts background jobs
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// TaskHandler handles the saved-page task list
type TaskHandler struct {
	service *tasks.Service
	jobs    JobEnqueuer
	logger  *zap.Logger
}

// NewTaskHandler creates a new task handler. jobs may be nil, in which case
// saved pages are not analyzed ahead of time.
func NewTaskHandler(service *tasks.Service, jobs JobEnqueuer, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{service: service, jobs: jobs, logger: logger}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix (e.g., from apiRouter.PathPrefix("/tasks"))
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.SavePage).Methods("POST")
	r.HandleFunc("/find", h.FindTask).Methods("GET")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTask).Methods("POST")
}

// SavePageBody is a save request plus the page text, which feeds the
// background analysis when present
type SavePageBody struct {
	tasks.SavePageRequest
	Text string `json:"text,omitempty" validate:"max=200000"`
}

// ListTasksResponse is the task list split the way the sidebar shows it
type ListTasksResponse struct {
	Tasks []models.Task `json:"tasks"`
	Open  int           `json:"open"`
	Done  int           `json:"done"`
}

// ListTasks lists tasks newest first, optionally filtered by status
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" {
		if err := validation.ValidateTaskStatus(status); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed_to_list_tasks", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	open, done := models.OpenTasks(list), models.DoneTasks(list)
	response := ListTasksResponse{Tasks: list, Open: len(open), Done: len(done)}
	switch models.TaskStatus(status) {
	case models.TaskStatusOpen:
		response.Tasks = open
	case models.TaskStatusDone:
		response.Tasks = done
	}
	if response.Tasks == nil {
		response.Tasks = []models.Task{}
	}
	respondJSON(w, http.StatusOK, response)
}

// SavePage saves a page as a new open task
func (h *TaskHandler) SavePage(w http.ResponseWriter, r *http.Request) {
	var body SavePageBody
	if err := decodeJSON(r, &body, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	body.Title = validation.SanitizeText(body.Title)
	body.Notes = validation.SanitizeText(body.Notes)

	task, err := h.service.SavePage(r.Context(), body.SavePageRequest)
	if err != nil {
		h.logger.Error("failed_to_save_page", zap.String("url", logger.SanitizeURL(body.URL)), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save page")
		return
	}

	h.enqueueAnalysis(r.Context(), task, body.Text)
	respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) enqueueAnalysis(ctx context.Context, task models.Task, text string) {
	if h.jobs == nil || strings.TrimSpace(text) == "" {
		return
	}
	job := queue.NewPageAnalysisJob(task.ID, models.PageContent{
		Text:    text,
		Title:   task.Title,
		URL:     task.URL,
		Favicon: task.Favicon,
	})
	if err := h.jobs.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		// Analysis is an optimization; the save itself succeeded
		h.logger.Warn("failed_to_enqueue_page_analysis",
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}

// GetTask returns one task
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Store().Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondTaskError(w, err, "Failed to retrieve task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// FindTask resolves a 1-based index or a title fragment, the way chat does
func (h *TaskHandler) FindTask(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "query parameter q is required")
		return
	}

	task, ok, err := h.service.Find(r.Context(), query)
	if err != nil {
		h.logger.Error("failed_to_find_task", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No task matches "+query)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var update models.TaskUpdate
	if err := decodeJSON(r, &update, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validateUpdate(&update); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	task, err := h.service.Update(r.Context(), mux.Vars(r)["id"], update)
	if err != nil {
		h.respondTaskError(w, err, "Failed to update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func validateUpdate(u *models.TaskUpdate) error {
	if u.Title != nil {
		title := validation.SanitizeText(*u.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		u.Title = &title
	}
	if u.Notes != nil {
		notes := validation.SanitizeText(*u.Notes)
		u.Notes = &notes
	}
	if u.Priority != nil {
		if err := validation.ValidatePriority(string(*u.Priority)); err != nil {
			return err
		}
	}
	if u.Status != nil {
		if err := validation.ValidateTaskStatus(string(*u.Status)); err != nil {
			return err
		}
	}
	if u.DueDate != nil && *u.DueDate != "" {
		if err := validation.Validate.Var(*u.DueDate, "datetime=2006-01-02"); err != nil {
			return errors.New("invalid due_date: must be YYYY-MM-DD")
		}
	}
	return nil
}

// ToggleTask flips a task between open and done
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Toggle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondTaskError(w, err, "Failed to toggle task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondTaskError(w, err, "Failed to delete task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *TaskHandler) respondTaskError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, tasks.ErrTaskNotFound) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	h.logger.Error("task_operation_failed", zap.String("message", message), zap.Error(err))
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", message)
}
