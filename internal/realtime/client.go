package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// maxFrameSize bounds incoming frames; chat payloads are small.
	maxFrameSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// sendMessagePayload is the client sendMessage frame. The message itself is
// relayed verbatim to the receiver; persistence happens on the HTTP path, not
// here.
type sendMessagePayload struct {
	ReceiverID string          `json:"receiverId"`
	Message    json.RawMessage `json:"message"`
}

// typingPayload is the client typing frame, a transient signal with no
// persistence and no delivery guarantee.
type typingPayload struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

// userTypingPayload is the server userTyping frame
type userTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// ServeWS upgrades the HTTP request to a WebSocket connection and runs the
// session until the client disconnects. Membership is dropped implicitly on
// disconnect.
func ServeWS(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		session := hub.NewSession()
		go writePump(conn, session)
		readPump(conn, hub, session)
		return nil
	}
}

// readPump consumes client frames until the connection drops, then removes
// the session from the hub.
func readPump(conn *websocket.Conn, hub *Hub, session *Session) {
	defer func() {
		hub.Leave(session)
		conn.Close()
	}()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
		handleFrame(hub, session, frame)
	}
}

// handleFrame dispatches one client frame. Unknown events are ignored;
// malformed payloads are dropped without closing the connection.
func handleFrame(hub *Hub, session *Session, frame Frame) {
	switch frame.Event {
	case EventJoin:
		var userID string
		if err := json.Unmarshal(frame.Data, &userID); err != nil || userID == "" {
			return
		}
		hub.Join(session, userID)

	case EventSendMessage:
		var payload sendMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.ReceiverID == "" {
			return
		}
		hub.EmitToUser(payload.ReceiverID, EventReceiveMessage, payload.Message)

	case EventTyping:
		// Typing carries the sender's identity, so an un-joined session
		// has nothing meaningful to relay.
		userID := session.UserID()
		if userID == "" {
			return
		}
		var payload typingPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.ReceiverID == "" {
			return
		}
		hub.EmitToUser(payload.ReceiverID, EventUserTyping, userTypingPayload{
			UserID:   userID,
			IsTyping: payload.IsTyping,
		})
	}
}

// writePump drains the session's frame channel onto the connection and keeps
// the connection alive with pings.
func writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-session.Frames():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
