package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dispatchBack/internal/models"
	services "dispatchBack/internal/services"
	"dispatchBack/utils"
)

type stubUserStore struct {
	users map[string]models.User
}

func (s *stubUserStore) GetUserByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNoRecord
	}
	return user, nil
}

func (s *stubUserStore) GetSessionByToken(context.Context, string) (models.Session, error) {
	return models.Session{}, models.ErrNoRecord
}

func (s *stubUserStore) SetSession(context.Context, string, models.Session) error {
	return nil
}

type stubMessageStore struct {
	mu       sync.Mutex
	messages []models.Message
}

func (s *stubMessageStore) InsertMessage(_ context.Context, message models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

func (s *stubMessageStore) ListByRequest(_ context.Context, requestID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.RequestID == requestID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMessageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

type stubRequestStore struct {
	requests map[string]models.Request
}

func (s *stubRequestStore) InsertRequest(_ context.Context, req models.Request) error {
	s.requests[req.ID] = req
	return nil
}

func (s *stubRequestStore) GetRequestByID(_ context.Context, id string) (models.Request, error) {
	req, ok := s.requests[id]
	if !ok {
		return models.Request{}, models.ErrNoRecord
	}
	return req, nil
}

func (s *stubRequestStore) ConditionalUpdateStatus(context.Context, string, string, string, *string) (bool, error) {
	return false, nil
}

func (s *stubRequestStore) UpdateFeedback(context.Context, string, models.Feedback) error {
	return nil
}

func (s *stubRequestStore) ListByRequester(context.Context, string) ([]models.Request, error) {
	return nil, nil
}

func (s *stubRequestStore) ListUnassignedPending(context.Context) ([]models.Request, error) {
	return nil, nil
}

func (s *stubRequestStore) FindActiveForProvider(context.Context, string) (models.Request, error) {
	return models.Request{}, models.ErrNoRecord
}

func (s *stubRequestStore) ListCompletedForParty(context.Context, string, string) ([]models.Request, error) {
	return nil, nil
}

func newSocketTestApp(t *testing.T) (*application, *stubMessageStore, *utils.Manager) {
	t.Helper()

	tokens, err := utils.NewManager("socket-test-key")
	if err != nil {
		t.Fatal(err)
	}
	users := &stubUserStore{users: map[string]models.User{
		"user-r": {ID: "user-r", Username: "rita", Role: models.RoleRequester},
		"user-p": {ID: "user-p", Username: "pavel", Role: models.RoleProvider},
	}}
	messages := &stubMessageStore{}
	requests := &stubRequestStore{requests: map[string]models.Request{
		"req-1": {ID: "req-1", RequesterID: "user-r", Status: models.StatusAccepted},
		"req-2": {ID: "req-2", RequesterID: "user-r", Status: models.StatusAccepted},
	}}

	app := &application{
		errorLog:    log.New(io.Discard, "", 0),
		infoLog:     log.New(io.Discard, "", 0),
		authService: &services.AuthService{UserRepo: users, Tokens: tokens, AccessTTL: time.Hour},
		chatService: &services.ChatService{MessageRepo: messages, RequestRepo: requests},
		roomHub:     NewRoomHub(),
	}
	go app.roomHub.Run()
	return app, messages, tokens
}

func dialSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) serverEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt serverEvent
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return evt
}

func TestChatSocketRejectsBadJoin(t *testing.T) {
	app, messages, _ := newSocketTestApp(t)
	srv := httptest.NewServer(http.HandlerFunc(app.ChatWebSocketHandler))
	defer srv.Close()

	conn := dialSocket(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(clientEvent{Type: "join", RequestID: "req-1", Token: "garbage"}); err != nil {
		t.Fatalf("write join: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.Type != "error" || evt.Error != "Authentication failed" {
		t.Fatalf("got event %+v, want authentication error", evt)
	}

	// The server must close the connection; the next read fails.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var next serverEvent
	if err := conn.ReadJSON(&next); err == nil {
		t.Fatal("expected closed connection after rejected join")
	}
	if got := messages.count(); got != 0 {
		t.Fatalf("persisted %d messages through a rejected connection", got)
	}
}

func TestChatSocketJoinRequiresRequestID(t *testing.T) {
	app, _, tokens := newSocketTestApp(t)
	srv := httptest.NewServer(http.HandlerFunc(app.ChatWebSocketHandler))
	defer srv.Close()

	conn := dialSocket(t, srv)
	defer conn.Close()

	token, err := tokens.NewJWT("user-r", models.RoleRequester, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(clientEvent{Type: "join", Token: token}); err != nil {
		t.Fatalf("write join: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.Type != "error" || evt.Error != "Request id missing" {
		t.Fatalf("got event %+v, want missing request id error", evt)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var next serverEvent
	if err := conn.ReadJSON(&next); err == nil {
		t.Fatal("expected closed connection after malformed join")
	}
}

func TestChatSocketDropsUnjoinedMessages(t *testing.T) {
	app, messages, tokens := newSocketTestApp(t)
	srv := httptest.NewServer(http.HandlerFunc(app.ChatWebSocketHandler))
	defer srv.Close()

	conn := dialSocket(t, srv)
	defer conn.Close()

	// Frames before a join are dropped without an answer.
	if err := conn.WriteJSON(clientEvent{Type: "message", RequestID: "req-1", Content: "too early"}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	token, err := tokens.NewJWT("user-r", models.RoleRequester, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(clientEvent{Type: "join", RequestID: "req-1", Token: token}); err != nil {
		t.Fatalf("write join: %v", err)
	}

	// Blank content after joining is dropped the same way.
	if err := conn.WriteJSON(clientEvent{Type: "message", RequestID: "req-1", Content: "   "}); err != nil {
		t.Fatalf("write blank message: %v", err)
	}
	if err := conn.WriteJSON(clientEvent{Type: "message", RequestID: "req-1", Content: "after join"}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	evt := readEvent(t, conn)
	if evt.Type != "message" || evt.Data == nil || evt.Data.Content != "after join" {
		t.Fatalf("got event %+v, want broadcast of %q", evt, "after join")
	}
	if got := messages.count(); got != 1 {
		t.Fatalf("persisted %d messages, want 1", got)
	}
}

func TestChatSocketBroadcastReachesRoom(t *testing.T) {
	app, messages, tokens := newSocketTestApp(t)
	srv := httptest.NewServer(http.HandlerFunc(app.ChatWebSocketHandler))
	defer srv.Close()

	requesterConn := dialSocket(t, srv)
	defer requesterConn.Close()
	providerConn := dialSocket(t, srv)
	defer providerConn.Close()

	requesterToken, err := tokens.NewJWT("user-r", models.RoleRequester, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	providerToken, err := tokens.NewJWT("user-p", models.RoleProvider, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := requesterConn.WriteJSON(clientEvent{Type: "join", RequestID: "req-1", Token: requesterToken}); err != nil {
		t.Fatalf("requester join: %v", err)
	}
	// Receiving its own broadcast proves the requester's membership is
	// registered before the provider sends.
	if err := requesterConn.WriteJSON(clientEvent{Type: "message", RequestID: "req-1", Content: "ready"}); err != nil {
		t.Fatalf("requester message: %v", err)
	}
	if evt := readEvent(t, requesterConn); evt.Data == nil || evt.Data.Content != "ready" {
		t.Fatalf("got event %+v, want own broadcast", evt)
	}

	if err := providerConn.WriteJSON(clientEvent{Type: "join", RequestID: "req-1", Token: providerToken}); err != nil {
		t.Fatalf("provider join: %v", err)
	}
	if err := providerConn.WriteJSON(clientEvent{Type: "message", RequestID: "req-1", Content: "on my way"}); err != nil {
		t.Fatalf("provider message: %v", err)
	}

	// Both members receive the stored record, the sender included.
	for name, conn := range map[string]*websocket.Conn{"requester": requesterConn, "provider": providerConn} {
		evt := readEvent(t, conn)
		if evt.Type != "message" || evt.Data == nil {
			t.Fatalf("%s: got event %+v, want message broadcast", name, evt)
		}
		if evt.Data.Content != "on my way" || evt.Data.SenderName != "pavel" || evt.Data.SenderRole != models.RoleProvider {
			t.Fatalf("%s: broadcast record %+v does not match the stored message", name, evt.Data)
		}
	}
	if got := messages.count(); got != 2 {
		t.Fatalf("persisted %d messages, want 2", got)
	}
}

func TestChatSocketRejoinMovesRooms(t *testing.T) {
	app, _, tokens := newSocketTestApp(t)
	srv := httptest.NewServer(http.HandlerFunc(app.ChatWebSocketHandler))
	defer srv.Close()

	movingConn := dialSocket(t, srv)
	defer movingConn.Close()
	stayingConn := dialSocket(t, srv)
	defer stayingConn.Close()

	movingToken, err := tokens.NewJWT("user-r", models.RoleRequester, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	stayingToken, err := tokens.NewJWT("user-p", models.RoleProvider, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if err := movingConn.WriteJSON(clientEvent{Type: "join", RequestID: "req-1", Token: movingToken}); err != nil {
		t.Fatalf("join req-1: %v", err)
	}
	if err := stayingConn.WriteJSON(clientEvent{Type: "join", RequestID: "req-1", Token: stayingToken}); err != nil {
		t.Fatalf("join req-1: %v", err)
	}

	// Re-joining another request moves the connection out of the old room.
	if err := movingConn.WriteJSON(clientEvent{Type: "join", RequestID: "req-2", Token: movingToken}); err != nil {
		t.Fatalf("join req-2: %v", err)
	}
	if err := movingConn.WriteJSON(clientEvent{Type: "message", RequestID: "req-2", Content: "switched"}); err != nil {
		t.Fatalf("message req-2: %v", err)
	}
	if evt := readEvent(t, movingConn); evt.Data == nil || evt.Data.Content != "switched" {
		t.Fatalf("got event %+v, want own req-2 broadcast", evt)
	}

	if err := stayingConn.WriteJSON(clientEvent{Type: "message", RequestID: "req-1", Content: "left behind"}); err != nil {
		t.Fatalf("message req-1: %v", err)
	}
	if evt := readEvent(t, stayingConn); evt.Data == nil || evt.Data.Content != "left behind" {
		t.Fatalf("got event %+v, want own req-1 broadcast", evt)
	}

	// The moved connection must see only its new room's traffic.
	if err := movingConn.WriteJSON(clientEvent{Type: "message", RequestID: "req-2", Content: "second"}); err != nil {
		t.Fatalf("message req-2: %v", err)
	}
	if evt := readEvent(t, movingConn); evt.Data == nil || evt.Data.Content != "second" {
		t.Fatalf("got event %+v, want %q and no req-1 leakage", evt, "second")
	}
}

func TestConnWritesSerialized(t *testing.T) {
	upgraded := make(chan *wsConn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		upgraded <- &wsConn{Conn: raw}
	}))
	defer srv.Close()

	client := dialSocket(t, srv)
	defer client.Close()
	server := <-upgraded
	defer server.Close()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.writeJSON(serverEvent{Type: "message"}); err != nil {
				t.Errorf("writeJSON: %v", err)
			}
			if err := server.ping(); err != nil {
				t.Errorf("ping: %v", err)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		var evt serverEvent
		if err := client.ReadJSON(&evt); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
}
