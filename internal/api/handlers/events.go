package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/themescreen/internal/notify"
	"github.com/wonny/themescreen/pkg/logger"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventMessage is one frame on the events stream
type EventMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// EventsHandler streams broadcaster events to websocket clients
// ⭐ SSOT: 실시간 이벤트 WebSocket은 여기서만
type EventsHandler struct {
	bus    *notify.Broadcaster
	logger *logger.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *notify.Broadcaster, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    bus,
		logger: log,
	}
}

// Stream upgrades the connection and forwards every event until the client leaves.
// Events are dropped for a client whose buffer is full; the publisher never blocks.
// GET /api/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade WebSocket connection")
		return
	}

	send := make(chan EventMessage, sendBuffer)
	unsubscribe := h.bus.Subscribe(func(event string, payload interface{}) {
		select {
		case send <- EventMessage{Event: event, Data: payload}:
		default:
			h.logger.WithField("event", event).Warn("WebSocket client too slow, event dropped")
		}
	})

	done := make(chan struct{})
	go h.writeLoop(conn, send, done)

	h.logger.WithField("clients", h.bus.Len()).Debug("WebSocket client connected")

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Warn("WebSocket error")
			}
			break
		}
	}

	unsubscribe()
	close(done)
	conn.Close()
	h.logger.Debug("WebSocket client disconnected")
}

func (h *EventsHandler) writeLoop(conn *websocket.Conn, send <-chan EventMessage, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
