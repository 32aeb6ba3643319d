package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/focusdock/internal/request"
)

// DefaultRequestTimeout bounds ordinary API requests
const DefaultRequestTimeout = 30 * time.Second

var timeoutBody = func() string {
	body, _ := json.Marshal(ErrorResponse{
		Error:   http.StatusText(http.StatusServiceUnavailable),
		Message: "request took too long",
	})
	return string(body)
}()

// Timeout cancels the request context and answers 503 once d has passed.
// Websocket upgrades are long-lived and skip the deadline.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		timed := http.TimeoutHandler(next, d, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if request.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}
