package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/theme"
)

// ThemeHandler reads and switches the sidebar theme
type ThemeHandler struct {
	manager *theme.Manager
}

func NewThemeHandler(manager *theme.Manager) *ThemeHandler {
	return &ThemeHandler{manager: manager}
}

// RegisterRoutes registers theme routes on a router with the /theme prefix
func (h *ThemeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetTheme).Methods("GET")
	r.HandleFunc("", h.SetTheme).Methods("PUT")
	r.HandleFunc("/toggle", h.ToggleTheme).Methods("POST")
}

// ThemeBody carries a theme in both directions
type ThemeBody struct {
	Theme models.Theme `json:"theme" validate:"required,theme"`
}

func (h *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ThemeBody{Theme: h.manager.Current()})
}

func (h *ThemeHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var body ThemeBody
	if err := decodeJSON(r, &body, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	t, err := h.manager.Set(r.Context(), body.Theme)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ThemeBody{Theme: t})
}

func (h *ThemeHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ThemeBody{Theme: h.manager.Toggle(r.Context())})
}
