package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
	"github.com/puttparty/backend/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testClient(h *Hub, id, role, token string) *Client {
	return &Client{hub: h, id: id, role: role, gameToken: token, send: make(chan []byte, sendBuffer)}
}

func drainTypes(c *Client) []string {
	var types []string
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return append(types, "closed")
			}
			var msg OutMessage
			json.Unmarshal(data, &msg)
			types = append(types, msg.Type)
		default:
			return types
		}
	}
}

func TestBroadcastFrameRoutesCommandsToHost(t *testing.T) {
	h := NewHub(nil)
	host := testClient(h, hostClientID("g1"), middleware.RoleHost, "g1")
	viewer := testClient(h, "spectator:1", middleware.RoleSpectator, "g1")
	other := testClient(h, "spectator:2", middleware.RoleSpectator, "g2")
	for _, c := range []*Client{host, viewer, other} {
		h.addClient(c)
	}

	h.BroadcastFrame("g1", game.Frame{
		Sounds:   []game.SoundCue{{Clip: "turn_start"}},
		Commands: []game.BodyCommand{{Player: 0, Op: game.CommandImpulse}},
	})

	if got := strings.Join(drainTypes(host), ","); got != "frame,sound,body_command" {
		t.Errorf("host got %s", got)
	}
	if got := strings.Join(drainTypes(viewer), ","); got != "frame,sound" {
		t.Errorf("spectator got %s", got)
	}
	if got := drainTypes(other); len(got) != 0 {
		t.Errorf("other game got %v", got)
	}
}

func TestHostReconnectReplacesConnection(t *testing.T) {
	h := NewHub(nil)
	first := testClient(h, hostClientID("g1"), middleware.RoleHost, "g1")
	second := testClient(h, hostClientID("g1"), middleware.RoleHost, "g1")

	if old := h.addClient(first); old != nil {
		t.Fatal("unexpected replaced client")
	}
	if old := h.addClient(second); old != first {
		t.Fatal("first host not replaced")
	}
	if got := drainTypes(first); len(got) != 1 || got[0] != "closed" {
		t.Errorf("old host channel = %v, want closed", got)
	}
	if h.removeClient(first) {
		t.Error("stale client removed the new connection")
	}
	if h.RoomSize("g1") != 1 {
		t.Errorf("room size = %d, want 1", h.RoomSize("g1"))
	}
}

func TestMainMenuEventClosesRoom(t *testing.T) {
	h := NewHub(nil)
	viewer := testClient(h, "spectator:1", middleware.RoleSpectator, "g1")
	h.addClient(viewer)

	h.BroadcastEvent("g1", game.Event{Type: game.EventSceneRequested, Scene: game.MainMenuScene})

	if got := strings.Join(drainTypes(viewer), ","); got != "game_event,closed" {
		t.Errorf("spectator got %s", got)
	}
	if h.RoomSize("g1") != 0 {
		t.Error("room not closed")
	}
}

func TestLeaveAfterHubStopped(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	viewer := testClient(h, "spectator:1", middleware.RoleSpectator, "g1")
	h.addClient(viewer)
	cancel()
	<-stopped

	left := make(chan struct{})
	go func() {
		h.leave(viewer)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
	if h.RoomSize("g1") != 0 {
		t.Error("client not removed")
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if msg["type"] == typ {
			return msg
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	cfg := &config.Config{
		Environment:        "development",
		JWTSecret:          "secret",
		TickRate:           100,
		GameStartDelaySecs: 60,
		MaxSessions:        10,
		DefaultCourse:      "classic",
	}
	courses := game.NewCourseRegistry()
	courses.Register(game.StandardCourse())
	m := game.NewManager(nil, nil, cfg, courses)
	defer m.Shutdown()

	h := NewHub(m)
	m.SetBroadcaster(h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	s, err := m.CreateSession(game.CreateRequest{PlayersCount: 2, Mode: "local"})
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/api/v1/game/:token/ws", middleware.SessionAuth(cfg), HandleWebSocket(h, cfg))
	srv := httptest.NewServer(r)
	defer srv.Close()

	dial := func(role string) *websocket.Conn {
		jwt, err := middleware.IssueSessionToken(cfg.JWTSecret, s.Token, role, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/game/" + s.Token + "/ws?t=" + jwt
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatal(err)
		}
		return conn
	}

	viewer := dial(middleware.RoleSpectator)
	defer viewer.Close()
	frame := readUntil(t, viewer, "frame")
	sound := readUntil(t, viewer, "sound")
	cues, _ := sound["data"].([]any)
	if len(cues) == 0 || cues[0].(map[string]any)["clip"] != "bg_ambience" {
		t.Errorf("late join sounds = %v, want ambience loop", sound["data"])
	}
	data, _ := frame["data"].(map[string]any)
	if data["token"] != s.Token {
		t.Errorf("frame token = %v", data["token"])
	}

	viewer.WriteJSON(map[string]any{"type": "input", "data": map[string]any{"throw": true}})
	if msg := readUntil(t, viewer, "error"); msg["message"] != "Spectators are read-only" {
		t.Errorf("spectator error = %v", msg["message"])
	}

	host := dial(middleware.RoleHost)
	defer host.Close()
	host.WriteJSON(map[string]any{"type": "telemetry", "data": []any{map[string]any{"player": 0}}})
	if msg := readUntil(t, host, "error"); !strings.Contains(msg["message"].(string), "mode") {
		t.Errorf("telemetry in local mode error = %v", msg["message"])
	}

	host.WriteJSON(map[string]any{"type": "exit"})
	readUntil(t, viewer, "game_event")
}
