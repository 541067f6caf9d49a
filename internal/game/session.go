package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Mode selects who simulates the balls.
type Mode string

const (
	// ModeLocal steps a LocalWorld on the server.
	ModeLocal Mode = "local"
	// ModeHost mirrors bodies simulated by the connected host engine.
	ModeHost Mode = "host"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeHost:
		return ModeHost, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, s)
	}
}

var ErrWrongMode = errors.New("operation not available in this session mode")

// CollisionReport is a host-detected ball impact.
type CollisionReport struct {
	Player        int           `json:"player"`
	Surface       ImpactSurface `json:"surface"`
	RelativeSpeed float64       `json:"relative_speed"`
}

// Frame is one tick of session output.
type Frame struct {
	Token    string        `json:"token"`
	Seq      uint64        `json:"seq"`
	Time     float64       `json:"time"`
	Status   SessionStatus `json:"status"`
	Game     Snapshot      `json:"game"`
	View     ViewSnapshot  `json:"view"`
	Sounds   []SoundCue    `json:"-"`
	Commands []BodyCommand `json:"-"`
}

// Session is one running game: a controller, its presentation state and the
// physics world feeding it. All controller access goes through the session lock.
type Session struct {
	ID           string
	Token        string
	Mode         Mode
	Course       *Course
	PlayersCount int
	Status       SessionStatus
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	LastActivity time.Time
	DBSessionID  int

	passcodeHash []byte

	ctrl   *Controller
	view   *View
	local  *LocalWorld
	remote *RemoteWorld

	pending    Input
	triggers   []TriggerEvent
	collisions []CollisionReport
	events     []Event
	seq        uint64
	lastFrame  Frame
	loops      []SoundCue
	exited     bool
	saved      bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SessionOptions configure NewSession.
type SessionOptions struct {
	Mode       Mode
	Passcode   string
	Controller ControllerOptions
}

// NewSession builds a session and queues the opening splash. The frame loop is
// not started; see Run.
func NewSession(id, token string, cfg SessionConfig, opts SessionOptions) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		ID:           id,
		Token:        token,
		Mode:         opts.Mode,
		Course:       cfg.Course,
		PlayersCount: cfg.PlayersCount,
		Status:       StatusWaiting,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
		view:         NewView(),
		done:         make(chan struct{}),
	}

	if opts.Passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash passcode: %w", err)
		}
		s.passcodeHash = hash
	}

	var bodies BodyFactory
	switch opts.Mode {
	case ModeHost:
		s.remote = NewRemoteWorld()
		bodies = s.remote.BodyFactory()
	default:
		s.Mode = ModeLocal
		s.local = NewLocalWorld(cfg.Course)
		bodies = s.local.BodyFactory()
	}

	s.view.Scene.LoadScene(cfg.Course.Scene)

	ctrl, err := NewController(cfg, s.view.Presenter(), bodies, opts.Controller)
	if err != nil {
		return nil, err
	}
	ctrl.OnEvent(func(e Event) { s.events = append(s.events, e) })
	ctrl.NewGame()
	s.ctrl = ctrl
	// queued cues stay for the first stepped frame
	s.lastFrame = s.buildFrame(false)
	return s, nil
}

// SessionInfo is a consistent copy of a session's metadata.
type SessionInfo struct {
	ID           string        `json:"id"`
	Token        string        `json:"token"`
	Mode         Mode          `json:"mode"`
	Course       string        `json:"course"`
	PlayersCount int           `json:"players_count"`
	Status       SessionStatus `json:"status"`
	HasPasscode  bool          `json:"has_passcode"`
	CreatedAt    time.Time     `json:"created_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:           s.ID,
		Token:        s.Token,
		Mode:         s.Mode,
		Course:       s.Course.Name,
		PlayersCount: s.PlayersCount,
		Status:       s.Status,
		HasPasscode:  len(s.passcodeHash) > 0,
		CreatedAt:    s.CreatedAt,
		StartedAt:    s.StartedAt,
		CompletedAt:  s.CompletedAt,
	}
}

// Touch marks the session active.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

// HasPasscode reports whether spectators must present a passcode.
func (s *Session) HasPasscode() bool {
	return len(s.passcodeHash) > 0
}

// CheckPasscode compares a spectator passcode with the stored hash.
func (s *Session) CheckPasscode(passcode string) error {
	if !s.HasPasscode() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(passcode)); err != nil {
		return ErrInvalidPasscode
	}
	return nil
}

// QueueInput merges host input into the next frame.
func (s *Session) QueueInput(in Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = s.pending.Merge(in)
	s.LastActivity = time.Now()
}

// ApplyTelemetry updates a host-simulated body.
func (s *Session) ApplyTelemetry(t Telemetry) error {
	if s.remote == nil {
		return ErrWrongMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
	return s.remote.Apply(t)
}

// QueueTrigger records a host end-zone trigger for the next frame.
func (s *Session) QueueTrigger(ev TriggerEvent) error {
	if s.remote == nil {
		return ErrWrongMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append(s.triggers, ev)
	return nil
}

// QueueCollision records a host collision for the next frame.
func (s *Session) QueueCollision(c CollisionReport) error {
	if s.remote == nil {
		return ErrWrongMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collisions = append(s.collisions, c)
	return nil
}

// SetPaused drives the pause menu directly.
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.SetPaused(paused)
}

// RequestExit leaves to the main menu on the next frame.
func (s *Session) RequestExit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.ExitToMainMenu()
}

// Exited reports whether the controller asked for the main menu.
func (s *Session) Exited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// LastFrame returns the most recent frame.
func (s *Session) LastFrame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFrame
}

// Idle reports whether no input arrived for at least d.
func (s *Session) Idle(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActivity) >= d
}

// Results returns the stroke table and names once the game has started.
func (s *Session) Results() ([]string, [][]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := s.ctrl.Scores()
	if scores == nil {
		return nil, nil
	}
	names := make([]string, len(s.ctrl.Players()))
	for i, p := range s.ctrl.Players() {
		names[i] = p.Name
	}
	return names, scores.Table()
}

// Step runs one frame and returns it with the controller events it produced.
func (s *Session) Step(dt time.Duration) (Frame, []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.local != nil:
		for _, ev := range s.local.Step(dt.Seconds(), s.ctrl.CurrentHole()) {
			s.ctrl.HandleEndZoneTrigger(ev.ZoneID, ev.PlayerIdx)
		}
	case s.remote != nil:
		for _, ev := range s.triggers {
			s.ctrl.HandleEndZoneTrigger(ev.ZoneID, ev.PlayerIdx)
		}
		for _, c := range s.collisions {
			s.ctrl.HandleCollision(c.Player, c.Surface, c.RelativeSpeed)
		}
		s.triggers = nil
		s.collisions = nil
	}

	s.ctrl.Tick(dt, s.pending)
	s.pending = Input{}

	events := s.events
	s.events = nil
	for _, e := range events {
		s.applyEvent(e)
	}

	s.seq++
	s.lastFrame = s.buildFrame(true)
	return s.lastFrame, events
}

func (s *Session) applyEvent(e Event) {
	now := time.Now()
	switch e.Type {
	case EventGameStarted:
		s.Status = StatusInProgress
		s.StartedAt = &now
	case EventGameOver:
		s.Status = StatusCompleted
		s.CompletedAt = &now
	case EventSceneRequested:
		if e.Scene == MainMenuScene {
			s.exited = true
			if s.Status != StatusCompleted {
				s.Status = StatusCancelled
			}
		}
	}
}

func (s *Session) buildFrame(drain bool) Frame {
	f := Frame{
		Token:  s.Token,
		Seq:    s.seq,
		Time:   s.ctrl.Timers().Now().Seconds(),
		Status: s.Status,
		Game:   s.ctrl.Snapshot(),
		View:   s.view.Snapshot(),
	}
	if !drain {
		return f
	}
	f.Sounds = s.view.Audio.Drain()
	for _, cue := range f.Sounds {
		if cue.Loop {
			s.rememberLoop(cue)
		}
	}
	if s.remote != nil {
		f.Commands = s.remote.DrainCommands()
	}
	return f
}

func (s *Session) rememberLoop(cue SoundCue) {
	for i, l := range s.loops {
		if l.Clip == cue.Clip {
			s.loops[i] = cue
			return
		}
	}
	s.loops = append(s.loops, cue)
}

// ActiveLoops returns the looping cues already sent, for clients that connect
// after they started.
func (s *Session) ActiveLoops() []SoundCue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SoundCue(nil), s.loops...)
}

// FrameHandler receives every frame with the events produced during it.
type FrameHandler func(s *Session, f Frame, events []Event)

// Run ticks the session at tickRate until ctx is cancelled or the game leaves
// to the main menu.
func (s *Session) Run(ctx context.Context, tickRate int, handle FrameHandler) {
	if tickRate <= 0 {
		tickRate = 60
	}
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		defer cancel()

		interval := time.Second / time.Duration(tickRate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Printf("[SESSION] %s running at %d Hz (mode=%s course=%s players=%d)",
			s.Token, tickRate, s.Mode, s.Course.Name, s.PlayersCount)

		for {
			select {
			case <-ctx.Done():
				log.Printf("[SESSION] %s stopped", s.Token)
				return
			case <-ticker.C:
				f, events := s.Step(interval)
				if handle != nil {
					handle(s, f, events)
				}
				if s.Exited() {
					log.Printf("[SESSION] %s left to main menu", s.Token)
					return
				}
			}
		}
	}()
}

// Abandon marks an unfinished game cancelled. The frame loop keeps running
// until Stop.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != StatusCompleted {
		s.Status = StatusCancelled
	}
}

// claimResults returns true exactly once, for the caller that persists results.
func (s *Session) claimResults() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved {
		return false
	}
	s.saved = true
	return true
}

// Done is closed once the frame loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stop cancels the frame loop and waits for it to exit.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-s.done
}
