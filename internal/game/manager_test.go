package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/puttparty/backend/internal/config"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	frames int
	events []Event
}

func (b *recordingBroadcaster) BroadcastFrame(token string, f Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames++
}

func (b *recordingBroadcaster) BroadcastEvent(token string, e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBroadcaster) sawEvent(t EventType) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e.Type == t {
			return true
		}
	}
	return false
}

func testManagerConfig() *config.Config {
	return &config.Config{
		TickRate:            200,
		GameStartDelaySecs:  0.05,
		TurnChangeDelaySecs: 3,
		HoleFinishDelaySecs: 4,
		EndGameDelaySecs:    15,
		DefaultCourse:       "classic",
		MaxSessions:         2,
		SessionIdleMinutes:  1,
	}
}

func newTestManager(t *testing.T) (*Manager, *recordingBroadcaster) {
	t.Helper()
	courses := NewCourseRegistry()
	if err := courses.Register(StandardCourse()); err != nil {
		t.Fatal(err)
	}
	m := NewManager(nil, nil, testManagerConfig(), courses)
	b := &recordingBroadcaster{}
	m.SetBroadcaster(b)
	t.Cleanup(m.Shutdown)
	return m, b
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCreateSessionValidation(t *testing.T) {
	m, _ := newTestManager(t)

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"unknown course", CreateRequest{PlayersCount: 2, Course: "nowhere"}, ErrCourseNotFound},
		{"too few players", CreateRequest{PlayersCount: 0}, ErrInvalidConfiguration},
		{"over menu limit", CreateRequest{PlayersCount: MenuMaxPlayers + 1}, ErrInvalidConfiguration},
		{"too many players", CreateRequest{PlayersCount: MaxPlayers + 1}, ErrInvalidConfiguration},
		{"unknown mode", CreateRequest{PlayersCount: 1, Mode: "cloud"}, ErrInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.CreateSession(tt.req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if n := m.ActiveSessionCount(); n != 0 {
		t.Errorf("ActiveSessionCount = %d after failures, want 0", n)
	}
}

func TestCreateSessionRunsFrameLoop(t *testing.T) {
	m, b := newTestManager(t)

	s, err := m.CreateSession(CreateRequest{PlayersCount: 2})
	if err != nil {
		t.Fatal(err)
	}
	if s.Course.Name != "classic" {
		t.Errorf("course = %q, want default classic", s.Course.Name)
	}
	if len(s.Token) != 16 || s.ID == "" {
		t.Errorf("token %q id %q", s.Token, s.ID)
	}

	waitFor(t, "game_started", func() bool { return b.sawEvent(EventGameStarted) })
	if got := s.Info().Status; got != StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", got)
	}

	stored, err := m.GetStoredSession(s.Token)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Info.Token != s.Token {
		t.Errorf("stored token = %q", stored.Info.Token)
	}
}

func TestCreateSessionUsesLobbyLimitAndCourseScene(t *testing.T) {
	courses := NewCourseRegistry()
	if err := courses.Register(StandardCourse()); err != nil {
		t.Fatal(err)
	}
	cfg := testManagerConfig()
	cfg.MenuMaxPlayers = MaxPlayers
	m := NewManager(nil, nil, cfg, courses)
	t.Cleanup(m.Shutdown)

	s, err := m.CreateSession(CreateRequest{PlayersCount: MaxPlayers})
	if err != nil {
		t.Fatalf("raised menu limit rejected: %v", err)
	}
	if got := s.LastFrame().View.Scene.Requested; got != s.Course.Scene {
		t.Errorf("scene = %q, want %q", got, s.Course.Scene)
	}
}

func TestMaxSessions(t *testing.T) {
	m, _ := newTestManager(t)
	for i := 0; i < 2; i++ {
		if _, err := m.CreateSession(CreateRequest{PlayersCount: 1}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.CreateSession(CreateRequest{PlayersCount: 1}); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("err = %v, want ErrTooManySessions", err)
	}
}

func TestEndSessionCancelsAndRemoves(t *testing.T) {
	m, _ := newTestManager(t)
	s, err := m.CreateSession(CreateRequest{PlayersCount: 1})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.EndSession(s.Token); err != nil {
		t.Fatal(err)
	}
	if got := s.Info().Status; got != StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", got)
	}
	waitFor(t, "session removal", func() bool { return m.ActiveSessionCount() == 0 })

	if _, err := m.GetSession(s.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession err = %v", err)
	}
	if _, err := m.GetStoredSession(s.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetStoredSession without redis err = %v", err)
	}
	if err := m.EndSession(s.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second EndSession err = %v", err)
	}
}

func TestReapIdleInMemory(t *testing.T) {
	m, b := newTestManager(t)
	idle, err := m.CreateSession(CreateRequest{PlayersCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	active, err := m.CreateSession(CreateRequest{PlayersCount: 1})
	if err != nil {
		t.Fatal(err)
	}

	idle.mu.Lock()
	idle.LastActivity = time.Now().Add(-2 * time.Minute)
	idle.mu.Unlock()
	m.Touch(active.Token)

	if n := m.ReapIdle(t.Context(), time.Now()); n != 1 {
		t.Fatalf("reaped %d sessions, want 1", n)
	}
	if !b.sawEvent(EventSessionCancelled) {
		t.Error("session_cancelled not published")
	}
	waitFor(t, "idle session removal", func() bool { return m.ActiveSessionCount() == 1 })
	if _, err := m.GetSession(active.Token); err != nil {
		t.Errorf("active session reaped: %v", err)
	}
}

func TestControllerOptionsFromConfig(t *testing.T) {
	m, _ := newTestManager(t)
	opts := m.ControllerOptions()
	if opts.Timings.GameStart != 50*time.Millisecond {
		t.Errorf("GameStart = %v", opts.Timings.GameStart)
	}
	if opts.Timings.EndGame != 15*time.Second {
		t.Errorf("EndGame = %v", opts.Timings.EndGame)
	}
}

func TestLeaderboardWithoutDatabase(t *testing.T) {
	m, _ := newTestManager(t)
	entries, err := m.Leaderboard("classic", 10)
	if err != nil || len(entries) != 0 {
		t.Errorf("Leaderboard = %v, %v", entries, err)
	}
}
