package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anstrom/netsight/internal/api/middleware"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
	"github.com/anstrom/netsight/internal/session"
)

const (
	// WebSocket configuration constants.
	writeWait       = 10 * time.Second                                   // Time allowed to write a message to the peer
	pongWait        = 60 * time.Second                                   // Time to read next pong message from peer
	pingPeriodRatio = 0.9                                                // Ratio of pongWait for pingPeriod
	pingPeriod      = time.Duration(float64(pongWait) * pingPeriodRatio) // Send pings to peer (must be < pongWait)
	maxMessageSize  = 512                                                // Maximum message size allowed from peer
	bufferSize      = 256                                                // Size of the broadcast channel buffer
	clientBuffer    = 64                                                 // Per-client queue before the client is dropped
)

// Message types pushed to console clients.
const (
	MessageSessionUpdate = "session_update"
)

// WebSocketMessage represents a WebSocket message structure.
type WebSocketMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// SessionHub streams session snapshots to WebSocket clients. Every client
// receives the current snapshot on connect followed by each transition.
type SessionHub struct {
	logger   *logging.Logger
	metrics  metrics.Recorder
	current  func() session.Snapshot
	upgrader websocket.Upgrader

	clients    map[*wsClient]struct{}
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	shutdown   chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	mutex      sync.RWMutex
}

type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	requestID string
}

// NewSessionHub creates a hub and starts its run loop. current supplies
// the snapshot sent to newly connected clients.
func NewSessionHub(current func() session.Snapshot, logger *logging.Logger, recorder metrics.Recorder) *SessionHub {
	h := &SessionHub{
		logger:  logger.WithComponent("websocket"),
		metrics: recorder,
		current: current,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:    make(map[*wsClient]struct{}),
		broadcast:  make(chan []byte, bufferSize),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}

	go h.run()

	return h
}

// Publish is a session.Listener broadcasting s to every client. It never
// blocks. When the broadcast queue is full a Scanning update is dropped;
// any other update evicts the oldest queued one so phase changes always
// reach clients.
func (h *SessionHub) Publish(s session.Snapshot) {
	data, err := encodeSnapshot(s)
	if err != nil {
		h.logger.Error("Failed to encode session update", "error", err)
		return
	}

	for {
		select {
		case h.broadcast <- data:
			return
		case <-h.done:
			return
		default:
		}

		if s.Scanning() {
			h.logger.Warn("Session broadcast channel full, dropping update", "phase", s.Phase)
			return
		}
		select {
		case <-h.broadcast:
			h.logger.Warn("Session broadcast channel full, evicting oldest update", "phase", s.Phase)
		default:
		}
	}
}

func encodeSnapshot(s session.Snapshot) ([]byte, error) {
	data, err := json.Marshal(WebSocketMessage{
		Type:      MessageSessionUpdate,
		Timestamp: time.Now().UTC(),
		Data:      s,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session update: %w", err)
	}
	return data, nil
}

// ServeWS godoc
// @Summary Session update stream
// @Description Upgrades to a WebSocket streaming session_update messages.
// @Tags Session
// @Success 101 {object} WebSocketMessage
// @Router /ws [get]
func (h *SessionHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", "request_id", requestID, "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientBuffer), requestID: requestID}
	if initial, err := encodeSnapshot(h.current()); err == nil {
		c.send <- initial
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	h.logger.Info("WebSocket client connected", "request_id", requestID, "remote_addr", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

// run manages client registration and fan-out.
func (h *SessionHub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.shutdown:
			h.mutex.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			h.logger.Debug("WebSocket hub shutting down")
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = struct{}{}
			h.mutex.Unlock()
			h.logger.Debug("Client registered", "total_clients", h.ClientCount())

		case c := <-h.unregister:
			h.drop(c)
			h.logger.Debug("Client unregistered", "total_clients", h.ClientCount())

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *SessionHub) fanOut(message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("Client too slow, disconnecting", "request_id", c.requestID)
			close(c.send)
			delete(h.clients, c)
		}
	}
	h.metrics.IncrementWebSocketMessages(MessageSessionUpdate)
}

func (h *SessionHub) drop(c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// readPump discards client input and detects disconnects.
func (h *SessionHub) readPump(c *wsClient) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("Failed to set read deadline", "request_id", c.requestID, "error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket unexpected close", "request_id", c.requestID, "error", err)
			}
			return
		}
	}
}

// writePump is the only writer of c.conn.
func (h *SessionHub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("Write failed, closing connection", "request_id", c.requestID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug("Ping failed, closing connection", "request_id", c.requestID, "error", err)
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *SessionHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and stops the hub.
func (h *SessionHub) Close() {
	h.closeOnce.Do(func() {
		close(h.shutdown)
		<-h.done
		h.logger.Info("WebSocket hub closed")
	})
}
