package caption

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/foxseedlab/livecaption/internal/observe"
)

const wsWriteTimeout = 5 * time.Second

type captionMessage struct {
	Transcription string    `json:"transcription"`
	Translation   string    `json:"translation"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type wsClient struct {
	send chan []byte
}

// offer replaces any unsent message with msg.
func (c *wsClient) offer(msg []byte) {
	for {
		select {
		case c.send <- msg:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

// WebSocketHub broadcasts caption snapshots to browser overlays. A new client
// immediately receives the latest snapshot.
type WebSocketHub struct {
	metrics *observe.Metrics

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	last    []byte
}

func NewWebSocketHub(metrics *observe.Metrics) *WebSocketHub {
	return &WebSocketHub{
		metrics: metrics,
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *WebSocketHub) OnTranscriptUpdated(transcription, translation string) {
	msg, err := json.Marshal(captionMessage{
		Transcription: transcription,
		Translation:   translation,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to encode caption message", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	for c := range h.clients {
		c.offer(msg)
	}
}

func (h *WebSocketHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("caption websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := conn.CloseRead(r.Context())
	c := h.register()
	defer h.unregister(c)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			if err := h.write(ctx, conn, msg); err != nil {
				slog.Debug("caption websocket write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}

func (h *WebSocketHub) write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

func (h *WebSocketHub) register() *wsClient {
	c := &wsClient{send: make(chan []byte, 1)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.CaptionSubscribers.Add(context.Background(), 1)
	}
	return c
}

func (h *WebSocketHub) unregister(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.CaptionSubscribers.Add(context.Background(), -1)
	}
}
