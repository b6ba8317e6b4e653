package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainOne(t *testing.T, s *Session) OutFrame {
	t.Helper()
	select {
	case f := <-s.Frames():
		return f
	default:
		t.Fatal("expected a frame to be queued")
		return OutFrame{}
	}
}

func TestJoinAndEmit(t *testing.T) {
	hub := NewHub()
	s := hub.NewSession()

	assert.Equal(t, "", s.UserID())
	assert.Equal(t, 0, hub.SessionCount("alice"))

	hub.Join(s, "alice")
	assert.Equal(t, "alice", s.UserID())
	assert.Equal(t, 1, hub.SessionCount("alice"))

	delivered := hub.EmitToUser("alice", EventReceiveMessage, "hello")
	assert.Equal(t, 1, delivered)

	frame := drainOne(t, s)
	assert.Equal(t, EventReceiveMessage, frame.Event)
	assert.Equal(t, "hello", frame.Data)
}

func TestEmitToAbsentUserIsNoOp(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.EmitToUser("nobody", EventReceiveMessage, "hello"))
}

func TestEmitFansOutToAllSessions(t *testing.T) {
	hub := NewHub()
	s1 := hub.NewSession()
	s2 := hub.NewSession()
	hub.Join(s1, "alice")
	hub.Join(s2, "alice")

	assert.Equal(t, 2, hub.SessionCount("alice"))
	assert.Equal(t, 2, hub.EmitToUser("alice", EventUserTyping, true))

	assert.Equal(t, EventUserTyping, drainOne(t, s1).Event)
	assert.Equal(t, EventUserTyping, drainOne(t, s2).Event)
}

func TestRejoinMovesSession(t *testing.T) {
	hub := NewHub()
	s := hub.NewSession()
	hub.Join(s, "alice")
	hub.Join(s, "bob")

	assert.Equal(t, 0, hub.SessionCount("alice"))
	assert.Equal(t, 1, hub.SessionCount("bob"))
	assert.Equal(t, "bob", s.UserID())

	assert.Equal(t, 0, hub.EmitToUser("alice", EventReceiveMessage, "x"))
	assert.Equal(t, 1, hub.EmitToUser("bob", EventReceiveMessage, "x"))
}

func TestLeaveClosesFrameChannel(t *testing.T) {
	hub := NewHub()
	s := hub.NewSession()
	hub.Join(s, "alice")
	hub.Leave(s)

	assert.Equal(t, 0, hub.SessionCount("alice"))
	assert.Equal(t, 0, hub.EmitToUser("alice", EventReceiveMessage, "x"))

	_, open := <-s.Frames()
	assert.False(t, open, "frame channel should be closed after leave")

	// Leaving twice must not panic
	hub.Leave(s)
}

func TestLeaveWithoutJoin(t *testing.T) {
	hub := NewHub()
	s := hub.NewSession()
	hub.Leave(s)

	_, open := <-s.Frames()
	assert.False(t, open)
}

func TestFullBufferDropsFrames(t *testing.T) {
	hub := NewHub()
	s := hub.NewSession()
	hub.Join(s, "alice")

	for i := 0; i < sessionBuffer; i++ {
		assert.Equal(t, 1, hub.EmitToUser("alice", EventReceiveMessage, i))
	}
	// The buffer is full now; the next emit is dropped, not blocked.
	assert.Equal(t, 0, hub.EmitToUser("alice", EventReceiveMessage, "overflow"))

	// Draining one slot makes room again.
	drainOne(t, s)
	assert.Equal(t, 1, hub.EmitToUser("alice", EventReceiveMessage, "refill"))
}

func TestHandleFrameJoin(t *testing.T) {
	hub := NewHub()
	s := hub.NewSession()

	data, err := json.Marshal("alice")
	require.NoError(t, err)
	handleFrame(hub, s, Frame{Event: EventJoin, Data: data})

	assert.Equal(t, "alice", s.UserID())
	assert.Equal(t, 1, hub.SessionCount("alice"))
}

func TestHandleFrameSendMessageRelaysVerbatim(t *testing.T) {
	hub := NewHub()
	sender := hub.NewSession()
	receiver := hub.NewSession()
	hub.Join(receiver, "bob")

	payload := []byte(`{"receiverId":"bob","message":{"content":"hi"}}`)
	handleFrame(hub, sender, Frame{Event: EventSendMessage, Data: payload})

	frame := drainOne(t, receiver)
	assert.Equal(t, EventReceiveMessage, frame.Event)
	assert.JSONEq(t, `{"content":"hi"}`, string(frame.Data.(json.RawMessage)))
}

func TestHandleFrameSendMessageDoesNotRequireJoin(t *testing.T) {
	hub := NewHub()
	sender := hub.NewSession()
	receiver := hub.NewSession()
	hub.Join(receiver, "bob")

	payload := []byte(`{"receiverId":"bob","message":"hi"}`)
	handleFrame(hub, sender, Frame{Event: EventSendMessage, Data: payload})

	assert.Equal(t, EventReceiveMessage, drainOne(t, receiver).Event)
}

func TestHandleFrameTypingRequiresJoin(t *testing.T) {
	hub := NewHub()
	sender := hub.NewSession()
	receiver := hub.NewSession()
	hub.Join(receiver, "bob")

	payload := []byte(`{"receiverId":"bob","isTyping":true}`)
	handleFrame(hub, sender, Frame{Event: EventTyping, Data: payload})
	assert.Equal(t, 0, len(receiver.Frames()), "un-joined sender must not relay typing")

	hub.Join(sender, "alice")
	handleFrame(hub, sender, Frame{Event: EventTyping, Data: payload})

	frame := drainOne(t, receiver)
	assert.Equal(t, EventUserTyping, frame.Event)
	out, ok := frame.Data.(userTypingPayload)
	require.True(t, ok)
	assert.Equal(t, "alice", out.UserID)
	assert.True(t, out.IsTyping)
}

func TestHandleFrameMalformedPayloadsAreDropped(t *testing.T) {
	hub := NewHub()
	s := hub.NewSession()
	hub.Join(s, "alice")

	handleFrame(hub, s, Frame{Event: EventJoin, Data: []byte(`{"not":"a string"}`)})
	handleFrame(hub, s, Frame{Event: EventSendMessage, Data: []byte(`nonsense`)})
	handleFrame(hub, s, Frame{Event: EventTyping, Data: []byte(`{"isTyping":true}`)})
	handleFrame(hub, s, Frame{Event: "unknown", Data: []byte(`{}`)})

	assert.Equal(t, "alice", s.UserID())
	assert.Equal(t, 0, len(s.Frames()))
}
