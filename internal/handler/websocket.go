package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
)

// Feed connection limits.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
	closeGrace     = 100 * time.Millisecond
)

// subscriber is one connection to the event feed. Only its writer
// goroutine writes to conn.
type subscriber struct {
	conn   *websocket.Conn
	events chan model.CatalogEvent
	quit   chan struct{}
	once   sync.Once
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{
		conn:   conn,
		events: make(chan model.CatalogEvent, sendBufferSize),
		quit:   make(chan struct{}),
	}
}

// stop asks the writer to send a close frame and exit. Safe to call twice.
func (s *subscriber) stop() {
	s.once.Do(func() { close(s.quit) })
}

func (s *subscriber) addr() string {
	return s.conn.RemoteAddr().String()
}

func (s *subscriber) write(messageType int, payload []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, payload)
}

// WebSocketHandler streams catalog events to connected clients.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*subscriber]struct{}
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*subscriber]struct{}),
	}
}

// RegisterRoutes registers the feed route with the router.
func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
}

// HandleWebSocket upgrades the connection and subscribes it to the feed.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("feed upgrade failed", zap.Error(err))
		return
	}

	sub := newSubscriber(conn)

	h.mu.Lock()
	h.clients[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("feed subscriber joined", zap.String("remote_addr", sub.addr()))

	go h.deliver(sub)
	go h.drain(sub)
}

// Publish queues e for every subscriber. A subscriber whose buffer is
// full misses the event.
func (h *WebSocketHandler) Publish(e model.CatalogEvent) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.clients {
		select {
		case sub.events <- e:
		default:
			h.logger.Warn("feed subscriber lagging, event dropped",
				zap.String("remote_addr", sub.addr()),
				zap.String("event_type", string(e.Type)),
			)
		}
	}
}

// ClientCount returns the number of subscribers.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// drain reads until the peer goes away so pongs and close frames are
// handled, then unsubscribes.
func (h *WebSocketHandler) drain(sub *subscriber) {
	defer h.unsubscribe(sub)

	sub.conn.SetReadLimit(maxMessageSize)
	if err := sub.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("feed read error", zap.Error(err))
			}
			return
		}
		h.logger.Debug("ignoring feed message", zap.ByteString("message", msg))
	}
}

// deliver writes queued events and keepalive pings until the subscriber
// is stopped or a write fails.
func (h *WebSocketHandler) deliver(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		var err error

		select {
		case <-sub.quit:
			bye := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
			if err := sub.write(websocket.CloseMessage, bye); err != nil {
				h.logger.Debug("feed close frame not sent", zap.Error(err))
			}
			return
		case e := <-sub.events:
			var payload []byte
			if payload, err = json.Marshal(e); err == nil {
				err = sub.write(websocket.TextMessage, payload)
			}
		case <-ticker.C:
			err = sub.write(websocket.PingMessage, nil)
		}

		if err != nil {
			h.logger.Debug("feed write failed", zap.String("remote_addr", sub.addr()), zap.Error(err))
			sub.stop()
			return
		}
	}
}

// unsubscribe drops sub and closes its connection.
func (h *WebSocketHandler) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.clients[sub]
	delete(h.clients, sub)
	h.mu.Unlock()

	if !ok {
		return
	}

	sub.stop()
	if err := sub.conn.Close(); err != nil {
		h.logger.Debug("feed connection close", zap.Error(err))
	}
	h.logger.Info("feed subscriber left", zap.String("remote_addr", sub.addr()))
}

// CloseAllConnections sends every subscriber a close frame, waits briefly
// for the frames to flush, then closes the connections.
func (h *WebSocketHandler) CloseAllConnections() {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.clients))
	for sub := range h.clients {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.stop()
	}

	time.Sleep(closeGrace)

	for _, sub := range subs {
		h.unsubscribe(sub)
	}

	h.logger.Info("feed closed", zap.Int("subscribers", len(subs)))
}
