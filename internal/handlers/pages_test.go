package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/benvon/focusdock/internal/pagetext"
)

func TestPageHandler_SummaryAndCache(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	page := pagetext.DemoPage()
	body := map[string]any{"text": page.Text, "title": page.Title, "url": page.URL}

	if w := h.do(t, "GET", "/api/v1/pages/summary?url="+page.URL, nil); w.Code != http.StatusNotFound {
		t.Errorf("cached summary before analysis = %d, want 404", w.Code)
	}

	w := h.do(t, "POST", "/api/v1/pages/summary", body)
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d: %s", w.Code, w.Body.String())
	}
	var resp SummaryResponse
	decodeEnvelope(t, w, &resp)
	if len(resp.Bullets) == 0 {
		t.Fatal("expected bullets")
	}
	if resp.PageTitle != page.Title {
		t.Errorf("page_title = %q", resp.PageTitle)
	}
	if !strings.HasPrefix(resp.Text, "• "+resp.Bullets[0]) {
		t.Errorf("text = %q", resp.Text)
	}

	w = h.do(t, "GET", "/api/v1/pages/summary?url="+page.URL, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cached summary status = %d", w.Code)
	}
	var cached SummaryResponse
	decodeEnvelope(t, w, &cached)
	if cached.Text != resp.Text {
		t.Errorf("cached text = %q, want %q", cached.Text, resp.Text)
	}
}

func TestPageHandler_Keywords(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	page := pagetext.DemoPage()

	w := h.do(t, "POST", "/api/v1/pages/keywords", map[string]any{"text": page.Text, "url": page.URL})
	if w.Code != http.StatusOK {
		t.Fatalf("keywords status = %d: %s", w.Code, w.Body.String())
	}
	var resp KeywordsResponse
	decodeEnvelope(t, w, &resp)
	if resp.Count == 0 || resp.Count != len(resp.All()) {
		t.Errorf("count = %d, all = %v", resp.Count, resp.All())
	}
	if resp.Text != strings.Join(resp.All(), ", ") {
		t.Errorf("text = %q", resp.Text)
	}

	if w := h.do(t, "GET", "/api/v1/pages/keywords?url="+page.URL, nil); w.Code != http.StatusOK {
		t.Errorf("cached keywords status = %d", w.Code)
	}
}

func TestPageHandler_Errors(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{name: "short summary", method: "POST", path: "/api/v1/pages/summary", body: map[string]any{"text": "too short"}, wantStatus: http.StatusUnprocessableEntity},
		{name: "short keywords", method: "POST", path: "/api/v1/pages/keywords", body: map[string]any{"text": "tiny"}, wantStatus: http.StatusUnprocessableEntity},
		{
			name:       "no keywords",
			method:     "POST",
			path:       "/api/v1/pages/keywords",
			body:       map[string]any{"text": strings.Repeat("the weather was pleasant all afternoon ", 3)},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{name: "bad url", method: "POST", path: "/api/v1/pages/summary", body: map[string]any{"text": "x", "url": "not a url"}, wantStatus: http.StatusBadRequest},
		{name: "cached without url", method: "GET", path: "/api/v1/pages/summary", wantStatus: http.StatusBadRequest},
		{name: "cached keywords without url", method: "GET", path: "/api/v1/pages/keywords?url=", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
