package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/puttparty/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var ErrTooManySessions = errors.New("too many active sessions")

// EventSessionCancelled is published when a session is reaped or abandoned.
const EventSessionCancelled EventType = "session_cancelled"

// Broadcaster delivers session output to connected clients.
type Broadcaster interface {
	BroadcastFrame(token string, f Frame)
	BroadcastEvent(token string, e Event)
}

// Manager owns every running session
type Manager struct {
	sessions    map[string]*Session // keyed by token
	courses     *CourseRegistry
	rdb         *redis.Client // Redis client for snapshots and events
	db          *sqlx.DB      // SQL DB for results
	config      *config.Config
	broadcaster Broadcaster
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.RWMutex
}

// NewManager creates a session manager. db and rdb may be nil.
func NewManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, courses *CourseRegistry) *Manager {
	if cfg == nil {
		cfg = &config.Config{TickRate: 60, MaxSessions: 200}
	}
	if courses == nil {
		courses = NewCourseRegistry()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		sessions: make(map[string]*Session),
		courses:  courses,
		rdb:      rdb,
		db:       db,
		config:   cfg,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetBroadcaster wires the transport that receives frames and events.
func (m *Manager) SetBroadcaster(b Broadcaster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcaster = b
}

func (m *Manager) getBroadcaster() Broadcaster {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.broadcaster
}

func (m *Manager) Courses() *CourseRegistry { return m.courses }
func (m *Manager) Config() *config.Config   { return m.config }

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// ControllerOptions derives controller tuning from the configuration.
func (m *Manager) ControllerOptions() ControllerOptions {
	return ControllerOptions{
		Timings: Timings{
			GameStart:  secondsToDuration(m.config.GameStartDelaySecs),
			TurnChange: secondsToDuration(m.config.TurnChangeDelaySecs),
			HoleFinish: secondsToDuration(m.config.HoleFinishDelaySecs),
			EndGame:    secondsToDuration(m.config.EndGameDelaySecs),
		},
		DebugControls: m.config.DebugControls,
	}
}

// CreateRequest is the input of CreateSession.
type CreateRequest struct {
	PlayersCount int
	Course       string
	Mode         string
	Passcode     string
}

// CreateSession validates the request, starts the frame loop and persists the
// new session.
func (m *Manager) CreateSession(req CreateRequest) (*Session, error) {
	lobby := NewLobby(m.courses, m.config.DefaultCourse, m.config.MenuMaxPlayers)
	if req.Course != "" {
		if err := lobby.SelectCourse(req.Course); err != nil {
			return nil, err
		}
	} else if lobby.SelectedCourse() == nil {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, m.config.DefaultCourse)
	}
	if err := lobby.SetPlayers(req.PlayersCount); err != nil {
		return nil, err
	}
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	cfg, err := lobby.SessionConfig()
	if err != nil {
		return nil, err
	}
	course := cfg.Course
	s, err := NewSession(uuid.NewString(), generateToken(8), cfg, SessionOptions{
		Mode:       mode,
		Passcode:   req.Passcode,
		Controller: m.ControllerOptions(),
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	m.sessions[s.Token] = s
	m.mu.Unlock()

	m.insertSession(s)
	if err := m.saveSessionToRedis(s); err != nil {
		log.Printf("[REDIS] Failed to save session %s: %v", s.Token, err)
	}
	m.touchIdle(s.Token)

	log.Printf("[SESSION] Created %s (id=%s course=%s players=%d mode=%s)", s.Token, s.ID, course.Name, cfg.PlayersCount, mode)

	s.Run(m.ctx, m.config.TickRate, m.handleFrame)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		<-s.Done()
		m.finishSession(s)
	}()
	return s, nil
}

// handleFrame runs on the session's frame loop after every tick.
func (m *Manager) handleFrame(s *Session, f Frame, events []Event) {
	if b := m.getBroadcaster(); b != nil {
		b.BroadcastFrame(s.Token, f)
	}

	save := false
	for _, e := range events {
		switch e.Type {
		case EventGameStarted:
			m.markSessionStarted(s)
			save = true
		case EventHoleChanged, EventHoleFinished:
			save = true
		case EventGameOver:
			m.SaveResults(s)
			save = true
		case EventTurnStarted, EventBallThrown:
			// frames carry these
		}
		m.publishEvent(s.Token, e)
	}
	if save {
		if err := m.saveSessionToRedis(s); err != nil {
			log.Printf("[REDIS] Failed to save session %s: %v", s.Token, err)
		}
	}
}

// finishSession runs once a session's frame loop has exited.
func (m *Manager) finishSession(s *Session) {
	m.mu.Lock()
	if cur, ok := m.sessions[s.Token]; ok && cur == s {
		delete(m.sessions, s.Token)
	}
	m.mu.Unlock()

	info := s.Info()
	if info.Status != StatusCompleted {
		m.markSessionEnded(s, info.Status)
	}
	if err := m.saveSessionToRedis(s); err != nil {
		log.Printf("[REDIS] Failed to save final state of %s: %v", s.Token, err)
	}
	m.removeIdle(s.Token)
	log.Printf("[SESSION] %s finished with status %s", s.Token, info.Status)
}

// GetSession retrieves a running session by token
func (m *Manager) GetSession(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetStoredSession returns a session's latest state, from memory first and
// Redis for sessions that are no longer running.
func (m *Manager) GetStoredSession(token string) (*StoredSession, error) {
	if s, err := m.GetSession(token); err == nil {
		return &StoredSession{Info: s.Info(), Frame: s.LastFrame()}, nil
	}
	stored, err := m.loadSessionFromRedis(token)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return stored, nil
}

// EndSession cancels a running session and waits for its loop to exit.
func (m *Manager) EndSession(token string) error {
	s, err := m.GetSession(token)
	if err != nil {
		return err
	}
	s.Abandon()
	s.Stop()
	return nil
}

// ActiveSessionCount returns the number of running sessions
func (m *Manager) ActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sessions lists running sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Touch records activity for the idle reaper.
func (m *Manager) Touch(token string) {
	s, err := m.GetSession(token)
	if err != nil {
		return
	}
	s.Touch()
	m.touchIdle(token)
}

// Shutdown stops every session and waits for their loops to exit.
func (m *Manager) Shutdown() {
	for _, s := range m.Sessions() {
		s.Abandon()
	}
	m.cancel()
	m.wg.Wait()
	log.Println("[SESSION] All sessions stopped")
}

func (m *Manager) idleWindow() time.Duration {
	return time.Duration(m.config.SessionIdleMinutes) * time.Minute
}

func (m *Manager) touchIdle(token string) {
	if m.rdb == nil || m.config.SessionIdleMinutes <= 0 {
		return
	}
	at := time.Now().Add(m.idleWindow()).Unix()
	if err := m.rdb.ZAdd(context.Background(), idleSetKey, redis.Z{Score: float64(at), Member: token}).Err(); err != nil {
		log.Printf("[REDIS] Failed to schedule idle check for %s: %v", token, err)
	}
}

func (m *Manager) removeIdle(token string) {
	if m.rdb == nil {
		return
	}
	m.rdb.ZRem(context.Background(), idleSetKey, token)
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager{sessions=%d}", m.ActiveSessionCount())
}
