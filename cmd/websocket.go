package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dispatchBack/internal/models"
)

const (
	readLimit          = 1 << 20           // 1 MB
	readDeadline       = 120 * time.Second // extended by pongs
	writeDeadline      = 5 * time.Second
	pingInterval       = 15 * time.Second
	firstFrameDeadline = 30 * time.Second // time allowed for the join frame
)

// wsConn serializes writes to a single connection. The hub's broadcast, the
// ping loop and the reader's error frames all write; gorilla permits only
// one concurrent writer per connection.
type wsConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) writeClose(code int, reason string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}

// session is the authenticated identity attached to a room member.
type session struct {
	userID   string
	username string
	role     string
}

type joinEvt struct {
	requestID string
	conn      *wsConn
	sess      session
}

type leaveEvt struct {
	conn *wsConn
}

type roomBroadcast struct {
	requestID string
	msg       models.Message
}

// clientEvent is the single envelope for client frames.
type clientEvent struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Token     string `json:"token"`
	Content   string `json:"content"`
}

type serverEvent struct {
	Type  string          `json:"type"`
	Data  *models.Message `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// RoomHub fans chat messages out to the members of a request's room.
// Membership is connection-scoped: a disconnect removes the connection and
// nothing else; the other party is not notified.
type RoomHub struct {
	join      chan joinEvt
	leave     chan leaveEvt
	broadcast chan roomBroadcast

	rooms  map[string]map[*wsConn]session
	byConn map[*wsConn]string
}

func NewRoomHub() *RoomHub {
	return &RoomHub{
		join:      make(chan joinEvt),
		leave:     make(chan leaveEvt),
		broadcast: make(chan roomBroadcast),
		rooms:     make(map[string]map[*wsConn]session),
		byConn:    make(map[*wsConn]string),
	}
}

// Run owns the room maps; all membership changes go through its channels.
func (h *RoomHub) Run() {
	for {
		select {
		case evt := <-h.join:
			h.removeConn(evt.conn)
			room, ok := h.rooms[evt.requestID]
			if !ok {
				room = make(map[*wsConn]session)
				h.rooms[evt.requestID] = room
			}
			room[evt.conn] = evt.sess
			h.byConn[evt.conn] = evt.requestID
			log.Printf("room %s: user %s joined as %s", evt.requestID, evt.sess.userID, evt.sess.role)

		case evt := <-h.leave:
			h.removeConn(evt.conn)

		case b := <-h.broadcast:
			for conn := range h.rooms[b.requestID] {
				if err := conn.writeJSON(serverEvent{Type: "message", Data: &b.msg}); err != nil {
					log.Printf("room %s: broadcast error: %v", b.requestID, err)
					_ = conn.Close()
					h.removeConn(conn)
				}
			}
		}
	}
}

func (h *RoomHub) removeConn(conn *wsConn) {
	requestID, ok := h.byConn[conn]
	if !ok {
		return
	}
	delete(h.byConn, conn)
	if room, ok := h.rooms[requestID]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(h.rooms, requestID)
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// ChatWebSocketHandler upgrades the connection and expects a join frame
// carrying {request_id, token} before any messages.
func (app *application) ChatWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	conn := &wsConn{Conn: raw}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(firstFrameDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go pingLoop(app.roomHub, conn)
	go app.handleChatMessages(conn)
}

func pingLoop(hub *RoomHub, conn *wsConn) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		if err := conn.ping(); err != nil {
			_ = conn.writeClose(websocket.CloseGoingAway, "ping error")
			hub.leave <- leaveEvt{conn: conn}
			return
		}
	}
}

func (app *application) handleChatMessages(conn *wsConn) {
	defer func() {
		app.roomHub.leave <- leaveEvt{conn: conn}
		_ = conn.Close()
	}()

	var (
		joined bool
		sess   session
	)

	for {
		var evt clientEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("chat read error:", err)
			}
			return
		}

		switch evt.Type {
		case "join":
			if evt.RequestID == "" {
				_ = conn.writeJSON(serverEvent{Type: "error", Error: "Request id missing"})
				_ = conn.writeClose(websocket.ClosePolicyViolation, "request id missing")
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			user, role, err := app.authService.Authenticate(ctx, evt.Token)
			cancel()
			if err != nil {
				// An unverified connection must not linger.
				_ = conn.writeJSON(serverEvent{Type: "error", Error: "Authentication failed"})
				_ = conn.writeClose(websocket.ClosePolicyViolation, "authentication failed")
				return
			}
			conn.SetReadDeadline(time.Now().Add(readDeadline))
			sess = session{userID: user.ID, username: user.Username, role: role}
			joined = true
			app.roomHub.join <- joinEvt{requestID: evt.RequestID, conn: conn, sess: sess}

		case "message":
			// Permissive drop: an unjoined or empty frame is ignored, not
			// answered. Clients rely on this during transient unjoined state.
			if !joined || evt.RequestID == "" || strings.TrimSpace(evt.Content) == "" {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			message, err := app.chatService.SaveMessage(ctx, evt.RequestID,
				models.User{ID: sess.userID, Username: sess.username}, sess.role, evt.Content)
			cancel()
			if err != nil {
				log.Println("save message error:", err)
				continue
			}
			app.roomHub.broadcast <- roomBroadcast{requestID: evt.RequestID, msg: message}
		}
	}
}
