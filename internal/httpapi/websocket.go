package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shapedtime/fmp4segmenter/internal/publish"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// segmentNotification is pushed to every connected websocket client each
// time the session publishes a segment, so a browser player can refresh
// its playlist without polling.
type segmentNotification struct {
	Event    string `json:"event"`
	Sequence int    `json:"sequence"`
}

// wsHub fans out segment notifications to connected websocket clients.
// It is a second subscriber on the same publish.Session event dispatch
// that feeds Session.Subscribe callbacks; see session.go's own note about
// merging the pushed-stream and 'segment' event steps.
type wsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	log     *slog.Logger
}

func newWSHub() *wsHub {
	return &wsHub{
		clients: make(map[*websocket.Conn]struct{}),
		log:     slog.With("component", "ws-hub"),
	}
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *wsHub) broadcast(msg segmentNotification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal notification", "error", err)
		return
	}

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warn("write to client failed, dropping", "error", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// wireSegmentNotifications subscribes the hub to the session's segment
// event, mirroring the listener-count check spec.md §9 calls out for the
// core dispatcher: broadcast is a no-op with zero clients.
func (s *Server) wireSegmentNotifications() {
	s.session.Subscribe(publish.EventSegment, func(ev publish.Event) {
		s.hub.broadcast(segmentNotification{
			Event:    "segment",
			Sequence: s.session.Sequence(),
		})
	})
}

// serveWS upgrades the connection and registers it with the hub. The
// connection is read-only from the client's perspective; incoming frames
// are drained and discarded to keep the read pump honoring ping/pong
// control frames.
func (s *Server) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.hub.log.Error("upgrade failed", "error", err)
		return
	}
	s.hub.add(conn)

	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
