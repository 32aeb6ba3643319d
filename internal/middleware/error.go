package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/logger"
	"github.com/benvon/focusdock/internal/request"
)

// ErrorResponse is the body of every error the middleware chain writes itself.
// It matches the envelope the handlers use for failures.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

func newErrorResponse(r *http.Request, status int, message string) ErrorResponse {
	return ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Path:      logger.SanitizePath(r.URL.Path),
		RequestID: request.RequestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler turns a handler panic into a 500 response. http.ErrAbortHandler
// is re-raised so net/http still aborts the connection.
func ErrorHandler(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic_recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", logger.SanitizePath(r.URL.Path)),
					zap.String("request_id", request.RequestID(r.Context())),
					zap.Stack("stack"),
				)
				writeError(w, r, http.StatusInternalServerError, "An unexpected error occurred", log)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeError sends an ErrorResponse with the given status
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(newErrorResponse(r, status, message)); err != nil {
		log.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
		)
	}
}
