package realtime

import (
	"context"
	"sync"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/utils/logging"
)

const defaultSendBuffer = 16

// Conn is the subset of *websocket.Conn the hub needs. Keeping it narrow
// lets tests drive the hub without a live socket.
type Conn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Hub tracks live connections per user and pushes events to them. A user may
// hold several connections at once (multiple tabs, devices); Publish fans the
// event to all of them. Slow consumers are dropped rather than blocking the
// publisher.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[types.UserID]map[*session]struct{}
	sendBuffer int
}

type session struct {
	conn      Conn
	send      chan model.Event
	closeOnce sync.Once
	done      chan struct{}
}

// Option is a functional option for Hub configuration
type Option func(*Hub)

// WithSendBuffer sets the per-connection outbound event buffer
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// NewHub creates an empty connection hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:   make(map[types.UserID]map[*session]struct{}),
		sendBuffer: defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve registers the connection for the user and blocks until the peer
// disconnects or the context is cancelled. The read loop only drains incoming
// frames; the protocol is server-to-client.
func (h *Hub) Serve(ctx context.Context, userID types.UserID, conn Conn) {
	s := &session{
		conn: conn,
		send: make(chan model.Event, h.sendBuffer),
		done: make(chan struct{}),
	}

	h.register(userID, s)
	defer h.unregister(userID, s)

	go s.writePump(ctx, userID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logging.From(ctx).Debug("realtime client disconnected",
				"user_id", userID, "error", err)
			return
		}
	}
}

// Publish sends the event to the user's live connections. Connections whose
// buffer is full are dropped; they reconnect and catch up from the persisted
// notifications.
func (h *Hub) Publish(ctx context.Context, userID types.UserID, event model.Event) error {
	h.mu.RLock()
	sessions := make([]*session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		select {
		case s.send <- event:
		default:
			logging.From(ctx).Warn("dropping slow realtime connection",
				"user_id", userID)
			s.close()
		}
	}
	return nil
}

// IsConnected reports whether the user currently has a live connection
func (h *Hub) IsConnected(userID types.UserID) bool {
	return h.ConnectionCount(userID) > 0
}

// ConnectionCount returns the number of live connections held by the user
func (h *Hub) ConnectionCount(userID types.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) register(userID types.UserID, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*session]struct{})
	}
	h.sessions[userID][s] = struct{}{}
}

func (h *Hub) unregister(userID types.UserID, s *session) {
	h.mu.Lock()
	if set := h.sessions[userID]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, userID)
		}
	}
	h.mu.Unlock()
	s.close()
}

func (s *session) writePump(ctx context.Context, userID types.UserID) {
	for {
		select {
		case event := <-s.send:
			if err := s.conn.WriteJSON(event); err != nil {
				logging.From(ctx).Debug("realtime write failed",
					"user_id", userID, "error", err)
				s.close()
				return
			}
		case <-s.done:
			return
		case <-ctx.Done():
			s.close()
			return
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
