// internal/preview/hub.go
//
// Per-site fan-out of debounced preview updates over WebSocket.
//
// Context
// -------
// The preview page at /preview/{site}/{page} opens a socket to
// /preview/{site}/ws.  Editor bridges publish into the Hub; every socket
// subscribed to the same site slug receives the update as JSON and swaps
// the section fragment in place.
//
// Notes
// -----
//   - Each subscriber owns a bounded channel.  A slow browser loses
//     updates rather than stalling the editor; the next update carries the
//     whole section fragment, so nothing is lost for good.
//   - The socket is write-only from the server's point of view.  CloseRead
//     drains control frames and cancels the context when the peer leaves.
package preview

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/metrics"
)

const (
	defaultBuffer = 16
	writeTimeout  = 5 * time.Second
)

// Message is the wire envelope.  Type is "ready" once per connection, then
// "update" for every delivered Update.
type Message struct {
	Type   string  `json:"type"`
	Update *Update `json:"update,omitempty"`
}

type subscriber struct {
	ch chan Update
}

// Hub is safe for concurrent use.  The zero value is not usable; call NewHub.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
	log    *zap.Logger

	// OriginPatterns is passed to websocket.Accept.  Empty means same-origin.
	OriginPatterns []string
}

// NewHub returns an empty hub.  buffer <= 0 uses a small default.
func NewHub(buffer int, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if log == nil {
		log = zap.L()
	}
	return &Hub{subs: make(map[string]map[*subscriber]struct{}), buffer: buffer, log: log}
}

// Subscribe registers interest in site.  The returned func unsubscribes and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(site string) (<-chan Update, func()) {
	s := &subscriber{ch: make(chan Update, h.buffer)}

	h.mu.Lock()
	set, ok := h.subs[site]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[site] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	metrics.PreviewSubscribers.Inc()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[site], s)
			if len(h.subs[site]) == 0 {
				delete(h.subs, site)
			}
			close(s.ch)
			h.mu.Unlock()
			metrics.PreviewSubscribers.Dec()
		})
	}
}

// Publish delivers u to every subscriber of u.Site without blocking.  It
// returns how many subscribers accepted the update.
func (h *Hub) Publish(u Update) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for s := range h.subs[u.Site] {
		select {
		case s.ch <- u:
			n++
		default:
			h.log.Debug("preview subscriber full, dropping update",
				zap.String("site", u.Site), zap.String("key", u.Key))
		}
	}
	return n
}

// Subscribers reports the live subscriber count for site.
func (h *Hub) Subscribers(site string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[site])
}

// ServeWS upgrades the request and streams updates for site until either
// side goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, site string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.OriginPatterns,
	})
	if err != nil {
		h.log.Warn("preview websocket accept", zap.String("site", site), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	updates, unsubscribe := h.Subscribe(site)
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())
	if err := h.write(ctx, conn, Message{Type: "ready"}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(ctx, conn, Message{Type: "update", Update: &u}); err != nil {
				if websocket.CloseStatus(err) == -1 {
					h.log.Debug("preview websocket write", zap.String("site", site), zap.Error(err))
				}
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
