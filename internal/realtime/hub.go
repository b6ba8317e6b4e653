package realtime

import (
	"encoding/json"
	"sync"
)

// Client event names
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
)

// Server event names
const (
	EventReceiveMessage = "receiveMessage"
	EventUserTyping     = "userTyping"
)

// Frame is a single JSON frame on the realtime channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutFrame is a server-to-client frame with an arbitrary payload.
type OutFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// sessionBuffer bounds the per-session outgoing queue. A session that cannot
// drain fast enough loses frames; delivery is at-most-once.
const sessionBuffer = 32

// Session is one connection's delivery handle. It is unaddressable until its
// client announces an identity via join; no automatic re-join happens on
// reconnect.
type Session struct {
	hub    *Hub
	userID string
	out    chan OutFrame
	closed bool
}

// UserID returns the identity this session joined as, or "" before join.
func (s *Session) UserID() string {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	return s.userID
}

// Frames returns the channel of outgoing frames for the transport to drain.
// The channel is closed when the session leaves the hub.
func (s *Session) Frames() <-chan OutFrame {
	return s.out
}

// deliver enqueues a frame without blocking. Callers must hold at least the
// hub read lock. A full buffer drops the frame.
func (s *Session) deliver(f OutFrame) bool {
	if s.closed {
		return false
	}
	select {
	case s.out <- f:
		return true
	default:
		return false
	}
}

// Hub is the registry mapping user ids to their active sessions. It is the
// unit of addressing: a user with multiple open sessions receives every event
// on all of them. The hub never persists anything; it is a delivery hint, not
// the source of truth.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*Session]struct{})}
}

// NewSession creates a session that is not yet joined to any user
func (h *Hub) NewSession() *Session {
	return &Session{hub: h, out: make(chan OutFrame, sessionBuffer)}
}

// Join registers the session under userID. A session that joins again under a
// different identity is moved, not duplicated.
func (h *Hub) Join(s *Session, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	if s.userID != "" {
		h.removeLocked(s)
	}
	s.userID = userID
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*Session]struct{})
	}
	h.sessions[userID][s] = struct{}{}
}

// Leave drops the session from the registry and closes its frame channel.
// Safe to call for sessions that never joined.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	h.removeLocked(s)
	s.closed = true
	close(s.out)
}

func (h *Hub) removeLocked(s *Session) {
	if s.userID == "" {
		return
	}
	if set, ok := h.sessions[s.userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, s.userID)
		}
	}
	s.userID = ""
}

// EmitToUser fans an event out to every session of userID, fire-and-forget.
// It returns the number of sessions the frame was enqueued on; zero means the
// user is not connected, which is the acceptable degraded mode.
func (h *Hub) EmitToUser(userID, event string, data interface{}) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.sessions[userID] {
		if s.deliver(OutFrame{Event: event, Data: data}) {
			delivered++
		}
	}
	return delivered
}

// SessionCount reports how many sessions userID currently has
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}
