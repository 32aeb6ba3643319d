package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/analysis"
	"github.com/benvon/focusdock/internal/models"
)

// PageHandler serves summaries and ATS keywords for page text
type PageHandler struct {
	analysis *analysis.Service
	logger   *zap.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(svc *analysis.Service, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{analysis: svc, logger: logger}
}

// RegisterRoutes registers page routes on a router with the /pages prefix
func (h *PageHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/summary", h.Summarize).Methods("POST")
	r.HandleFunc("/summary", h.CachedSummary).Methods("GET")
	r.HandleFunc("/keywords", h.Keywords).Methods("POST")
	r.HandleFunc("/keywords", h.CachedKeywords).Methods("GET")
}

// SummaryResponse is a summary plus its clipboard rendering
type SummaryResponse struct {
	models.SummaryResult
	Text string `json:"text"`
}

// KeywordsResponse is a keyword result plus its clipboard rendering
type KeywordsResponse struct {
	models.KeywordResult
	Count int    `json:"count"`
	Text  string `json:"text"`
}

// PageRequest is the page text a caller wants analyzed
type PageRequest struct {
	Text    string `json:"text" validate:"max=200000"`
	Title   string `json:"title"`
	URL     string `json:"url" validate:"omitempty,url"`
	Favicon string `json:"favicon,omitempty"`
}

func (p PageRequest) page() models.PageContent {
	return models.PageContent{Text: p.Text, Title: p.Title, URL: p.URL, Favicon: p.Favicon}
}

func newSummaryResponse(r models.SummaryResult) SummaryResponse {
	return SummaryResponse{SummaryResult: r, Text: r.CopyText()}
}

func newKeywordsResponse(r models.KeywordResult) KeywordsResponse {
	return KeywordsResponse{KeywordResult: r, Count: len(r.All()), Text: r.CopyText()}
}

// Summarize summarizes the posted page text
func (h *PageHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	result, err := h.analysis.Summarize(r.Context(), req.page())
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newSummaryResponse(result))
}

// Keywords extracts ATS keywords from the posted page text
func (h *PageHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	result, err := h.analysis.Keywords(r.Context(), req.page())
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newKeywordsResponse(result))
}

// CachedSummary returns the last summary computed for url
func (h *PageHandler) CachedSummary(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "query parameter url is required")
		return
	}
	result, ok := h.analysis.CachedSummary(r.Context(), url)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No summary cached for this page")
		return
	}
	respondJSON(w, http.StatusOK, newSummaryResponse(result))
}

// CachedKeywords returns the last keywords computed for url
func (h *PageHandler) CachedKeywords(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "query parameter url is required")
		return
	}
	result, ok := h.analysis.CachedKeywords(r.Context(), url)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No keywords cached for this page")
		return
	}
	respondJSON(w, http.StatusOK, newKeywordsResponse(result))
}

func (h *PageHandler) respondAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrInsufficientContent), errors.Is(err, analysis.ErrNoKeywords):
		respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	default:
		h.logger.Error("page_analysis_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to analyze page")
	}
}
