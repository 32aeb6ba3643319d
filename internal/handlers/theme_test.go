package handlers

import (
	"net/http"
	"testing"

	"github.com/benvon/focusdock/internal/models"
)

func TestThemeHandler(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)

	steps := []struct {
		method     string
		path       string
		body       any
		wantStatus int
		wantTheme  models.Theme
	}{
		{method: "GET", path: "/api/v1/theme", wantStatus: http.StatusOK, wantTheme: models.ThemeLight},
		{method: "POST", path: "/api/v1/theme/toggle", wantStatus: http.StatusOK, wantTheme: models.ThemeDark},
		{method: "PUT", path: "/api/v1/theme", body: map[string]any{"theme": "light"}, wantStatus: http.StatusOK, wantTheme: models.ThemeLight},
		{method: "PUT", path: "/api/v1/theme", body: map[string]any{"theme": "sepia"}, wantStatus: http.StatusBadRequest},
		{method: "GET", path: "/api/v1/theme", wantStatus: http.StatusOK, wantTheme: models.ThemeLight},
	}

	for i, step := range steps {
		w := h.do(t, step.method, step.path, step.body)
		if w.Code != step.wantStatus {
			t.Fatalf("step %d status = %d, want %d", i, w.Code, step.wantStatus)
		}
		if step.wantStatus != http.StatusOK {
			continue
		}
		var body ThemeBody
		decodeEnvelope(t, w, &body)
		if body.Theme != step.wantTheme {
			t.Errorf("step %d theme = %q, want %q", i, body.Theme, step.wantTheme)
		}
	}
}
