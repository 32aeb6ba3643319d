package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/chat"
	"github.com/benvon/focusdock/internal/models"
)

// ChatHandler handles assistant chat requests
type ChatHandler struct {
	orchestrator *chat.Orchestrator
	logger       *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(orchestrator *chat.Orchestrator, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers chat routes on a router with the /chat prefix
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/messages", h.SendMessage).Methods("POST")
	r.HandleFunc("/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/history", h.ClearHistory).Methods("DELETE")
}

// ChatMessageRequest represents a chat message request. Page is the page the
// user has open, if any.
type ChatMessageRequest struct {
	Message string       `json:"message" validate:"required,max=2000"`
	Page    *PageRequest `json:"page,omitempty"`
}

func (req ChatMessageRequest) pageSource() chat.PageSource {
	if req.Page == nil {
		return nil
	}
	return chat.StaticPage(req.Page.page())
}

// SendMessage runs one utterance through the assistant and returns its reply
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatMessageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	reply, err := h.orchestrator.Handle(r.Context(), req.Message, req.pageSource())
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		h.logger.Error("failed_to_handle_chat_message", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to process message")
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

// GetHistory returns the chat log oldest first
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, historyResponse(h.orchestrator.History(r.Context())))
}

// ClearHistory empties the chat log
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, historyResponse(h.orchestrator.ClearHistory(r.Context())))
}

// HistoryResponse wraps the chat log
type HistoryResponse struct {
	Messages []models.ChatMessage `json:"messages"`
}

func historyResponse(list []models.ChatMessage) HistoryResponse {
	return HistoryResponse{Messages: list}
}
