package tracking

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"cabs-service/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// safeConn wraps a websocket.Conn with a write mutex.
// gorilla/websocket allows one concurrent writer; this enforces that.
type safeConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *safeConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *safeConn) readMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

func (c *safeConn) close() { c.ws.Close() }

// SnapshotFunc returns the current view of a device, or false if the device
// is unknown.
type SnapshotFunc func(deviceID string) (any, bool)

// Hub fans view snapshots out to every socket a device has open.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string][]*safeConn
	snapshot SnapshotFunc
	log      *slog.Logger
}

// NewHub creates a hub. snapshot is sent to each socket as it connects.
func NewHub(snapshot SnapshotFunc, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		conns:    make(map[string][]*safeConn),
		snapshot: snapshot,
		log:      log.With("component", "ws"),
	}
}

// Routes returns a chi.Router for the /ws mount point.
func (h *Hub) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleWS)
	return r
}

// HandleWS authenticates ?token=, upgrades the connection and subscribes it
// to the token's device.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.Validate(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	deviceID := claims.DeviceID

	var initial any
	if h.snapshot != nil {
		v, ok := h.snapshot(deviceID)
		if !ok {
			http.Error(w, `{"error":"unknown device"}`, http.StatusNotFound)
			return
		}
		initial = v
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "err", err)
		return
	}
	conn := &safeConn{ws: ws}

	h.mu.Lock()
	h.conns[deviceID] = append(h.conns[deviceID], conn)
	h.mu.Unlock()
	h.log.Info("client connected", "device_id", deviceID)

	if initial != nil {
		if err := conn.writeJSON(initial); err != nil {
			h.log.Warn("write failed", "device_id", deviceID, "err", err)
		}
	}

	// Block until the client disconnects
	for {
		if _, _, err := conn.readMessage(); err != nil {
			break
		}
	}

	h.removeConn(deviceID, conn)
	conn.close()
	h.log.Info("client disconnected", "device_id", deviceID)
}

// Broadcast pushes v to every subscriber of a device.
// Safe for concurrent calls; each safeConn serialises its own writes.
func (h *Hub) Broadcast(deviceID string, v any) {
	h.mu.RLock()
	conns := append([]*safeConn(nil), h.conns[deviceID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeJSON(v); err != nil {
			h.log.Warn("write failed", "device_id", deviceID, "err", err)
		}
	}
}

// Subscribers reports how many sockets a device has open.
func (h *Hub) Subscribers(deviceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[deviceID])
}

func (h *Hub) removeConn(deviceID string, conn *safeConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[deviceID]
	for i, c := range conns {
		if c == conn {
			h.conns[deviceID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[deviceID]) == 0 {
		delete(h.conns, deviceID)
	}
}
