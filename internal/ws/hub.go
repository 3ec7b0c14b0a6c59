package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/monitoring"
	"github.com/rezforge/launchpad/backend/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local trusted surface; the GUI shell is the only caller
	},
}

// Hub fans stage lifecycle events out to connected stream clients.
type Hub struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan interface{}
	once sync.Once
}

// NewHub creates an event hub
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// WithMetrics adds client-count tracking to the hub
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

// Publish broadcasts an event to every connected client. Slow clients
// drop events rather than stalling the publisher.
func (h *Hub) Publish(evt types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients {
		select {
		case cl.send <- evt:
		default:
		}
	}
}

// HandleConnection upgrades the request and streams events until the
// client disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cl := &client{conn: conn, send: make(chan interface{}, 16)}
	h.add(cl)
	defer h.remove(cl)

	cl.send <- map[string]interface{}{
		"type":    "system",
		"message": "connected to launcher event stream",
	}

	go cl.writePump()

	// Read loop: detects disconnect, answers pings.
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			select {
			case cl.send <- map[string]interface{}{"type": "pong"}:
			default:
			}
		}
	}
}

func (cl *client) writePump() {
	for msg := range cl.send {
		if err := cl.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.StreamClients.Set(float64(count))
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl)
	count := len(h.clients)
	h.mu.Unlock()

	cl.once.Do(func() { close(cl.send) })

	if h.metrics != nil {
		h.metrics.StreamClients.Set(float64(count))
	}
}
