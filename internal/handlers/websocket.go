package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/benvon/focusdock/internal/chat"
	"github.com/benvon/focusdock/internal/timer"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 256 << 10
	wsSendBuffer     = 32
)

// Websocket frame types
const (
	FrameTimer = "timer"
	FrameChat  = "chat"
	FramePing  = "ping"
	FramePong  = "pong"
	FrameError = "error"
)

// Frame is one message on the websocket in either direction
type Frame struct {
	Type    string       `json:"type"`
	Message string       `json:"message,omitempty"`
	Page    *PageRequest `json:"page,omitempty"`
	Data    any          `json:"data,omitempty"`
}

// WebSocketHandler streams timer snapshots and carries chat turns over one
// connection per sidebar
type WebSocketHandler struct {
	timer        *timer.Machine
	orchestrator *chat.Orchestrator
	upgrader     websocket.Upgrader
	logger       *zap.Logger
}

// NewWebSocketHandler creates a websocket handler. allowedOrigins uses the
// same forms as the CORS list; an empty Origin header is always accepted.
func NewWebSocketHandler(machine *timer.Machine, orchestrator *chat.Orchestrator, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		timer:        machine,
		orchestrator: orchestrator,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowedOrigins)
			},
		},
	}
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, pattern := range allowed {
		if pattern == "*" || pattern == origin {
			return true
		}
		if prefix, suffix, ok := strings.Cut(pattern, "*"); ok &&
			len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// RegisterRoutes registers /ws on a router with the /api/v1 prefix
func (h *WebSocketHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.Serve).Methods("GET")
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan Frame
}

// Serve upgrades the connection, pushes the current timer state and then
// every change, and answers chat frames until the client goes away
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket_upgrade_failed", zap.Error(err))
		return
	}
	client := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan Frame, wsSendBuffer)}
	h.logger.Info("websocket_connected", zap.String("client_id", client.id))

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	updates, unsubscribe := h.timer.Subscribe()

	client.push(Frame{Type: FrameTimer, Data: NewTimerResponse(h.timer.State())})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writer(ctx, client, updates)
	}()

	h.reader(ctx, client)

	cancel()
	unsubscribe()
	<-done
	h.logger.Info("websocket_disconnected", zap.String("client_id", client.id))
}

// push queues a frame, dropping it if the client is not keeping up
func (c *wsClient) push(f Frame) {
	select {
	case c.send <- f:
	default:
	}
}

func (h *WebSocketHandler) writer(ctx context.Context, c *wsClient, updates <-chan timer.Snapshot) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	write := func(f Frame) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteJSON(f); err != nil {
			h.logger.Debug("websocket_write_failed", zap.String("client_id", c.id), zap.Error(err))
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if !write(Frame{Type: FrameTimer, Data: NewTimerResponse(snap)}) {
				return
			}
		case f := <-c.send:
			if !write(f) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) reader(ctx context.Context, c *wsClient) {
	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var in Frame
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket_read_failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))

		switch in.Type {
		case FramePing:
			c.push(Frame{Type: FramePong})
		case FrameChat:
			c.push(h.chatFrame(ctx, in))
		default:
			c.push(Frame{Type: FrameError, Message: "unknown frame type " + in.Type})
		}
	}
}

func (h *WebSocketHandler) chatFrame(ctx context.Context, in Frame) Frame {
	var page chat.PageSource
	if in.Page != nil {
		page = chat.StaticPage(in.Page.page())
	}
	reply, err := h.orchestrator.Handle(ctx, in.Message, page)
	if err != nil {
		if !errors.Is(err, chat.ErrEmptyMessage) {
			h.logger.Error("failed_to_handle_chat_message", zap.Error(err))
		}
		return Frame{Type: FrameError, Message: err.Error()}
	}
	return Frame{Type: FrameChat, Data: reply}
}
