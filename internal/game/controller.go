package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"
)

// Timer names used by the controller.
const (
	timerGameStart  = "game_start"
	timerTurnChange = "turn_change"
	timerHoleFinish = "hole_finish"
	timerMainMenu   = "main_menu"
)

// Timings are the presentation delays between controller transitions.
type Timings struct {
	GameStart  time.Duration
	TurnChange time.Duration
	HoleFinish time.Duration
	EndGame    time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		GameStart:  GameStartDelay,
		TurnChange: TurnChangeDelay,
		HoleFinish: HoleFinishDelay,
		EndGame:    EndGameDelay,
	}
}

// ControllerOptions tunes a controller. Zero values fall back to defaults.
type ControllerOptions struct {
	Timings       Timings
	Sounds        *SoundBank
	DebugControls bool
	// Rand returns values in [0, 1) for pitch jitter.
	Rand func() float64
}

// EventType names a controller transition worth telling the outside about.
type EventType string

const (
	EventGameStarted    EventType = "game_started"
	EventHoleChanged    EventType = "hole_changed"
	EventTurnStarted    EventType = "turn_started"
	EventBallThrown     EventType = "ball_thrown"
	EventHoleFinished   EventType = "hole_finished"
	EventGameOver       EventType = "game_over"
	EventSceneRequested EventType = "scene_requested"
)

// Event is emitted synchronously from inside controller operations.
type Event struct {
	Type    EventType `json:"type"`
	Player  int       `json:"player"`
	Hole    int       `json:"hole"`
	Strokes int       `json:"strokes,omitempty"`
	Scene   string    `json:"scene,omitempty"`
}

// Controller is the turn/hole state machine. It is not safe for concurrent
// use; a session's frame loop is its only caller.
type Controller struct {
	cfg       SessionConfig
	course    *Course
	presenter Presenter
	bodies    BodyFactory
	timers    *TimerQueue
	camera    *CameraTracker
	sounds    SoundBank
	timings   Timings
	debug     bool
	rnd       func() float64
	listener  func(Event)

	phase         Phase
	players       []*Player
	scores        *Scoreboard
	finished      []bool
	currentHole   int
	currentPlayer int
	paused        bool

	startTimer  *Timer
	pendingTurn *Timer
	endTimer    *Timer
	turnDelays  int
}

// NewController builds an idle controller for a session. The player count is
// validated by StartGame; the course is validated here.
func NewController(cfg SessionConfig, presenter Presenter, bodies BodyFactory, opts ControllerOptions) (*Controller, error) {
	if cfg.Course == nil {
		return nil, fmt.Errorf("%w: no course selected", ErrInvalidConfiguration)
	}
	if err := cfg.Course.Validate(); err != nil {
		return nil, err
	}
	if bodies == nil {
		bodies = func(int) Body { return NewKinematicBody(Vec3{}) }
	}

	timings := opts.Timings
	if timings == (Timings{}) {
		timings = DefaultTimings()
	}
	sounds := DefaultSoundBank()
	if opts.Sounds != nil {
		sounds = *opts.Sounds
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.Float64
	}

	return &Controller{
		cfg:           cfg,
		course:        cfg.Course,
		presenter:     presenter.withDefaults(),
		bodies:        bodies,
		timers:        NewTimerQueue(),
		camera:        NewCameraTracker(),
		sounds:        sounds,
		timings:       timings,
		debug:         opts.DebugControls,
		rnd:           rnd,
		phase:         PhaseAwaitingStart,
		currentHole:   -1,
		currentPlayer: -1,
	}, nil
}

func (p Presenter) withDefaults() Presenter {
	fallback := NewView().Presenter()
	if p.HUD == nil {
		p.HUD = fallback.HUD
	}
	if p.Splash == nil {
		p.Splash = fallback.Splash
	}
	if p.Scoreboard == nil {
		p.Scoreboard = fallback.Scoreboard
	}
	if p.Pause == nil {
		p.Pause = fallback.Pause
	}
	if p.Audio == nil {
		p.Audio = fallback.Audio
	}
	if p.Scenes == nil {
		p.Scenes = fallback.Scenes
	}
	return p
}

// OnEvent registers the single event listener.
func (c *Controller) OnEvent(fn func(Event)) { c.listener = fn }

func (c *Controller) emit(e Event) {
	if c.listener != nil {
		c.listener(e)
	}
}

func (c *Controller) Phase() Phase           { return c.phase }
func (c *Controller) CurrentHole() int       { return c.currentHole }
func (c *Controller) CurrentPlayer() int     { return c.currentPlayer }
func (c *Controller) Players() []*Player     { return c.players }
func (c *Controller) Scores() *Scoreboard    { return c.scores }
func (c *Controller) IsPaused() bool         { return c.paused }
func (c *Controller) Timers() *TimerQueue    { return c.timers }
func (c *Controller) Camera() *CameraTracker { return c.camera }
func (c *Controller) Course() *Course        { return c.course }
func (c *Controller) Config() SessionConfig  { return c.cfg }
func (c *Controller) HoleCount() int         { return len(c.course.Holes) }
func (c *Controller) TurnChangeDelays() int  { return c.turnDelays }

// IsFinished reports the finished flag of a player for the current hole.
func (c *Controller) IsFinished(playerIdx int) bool {
	if playerIdx < 0 || playerIdx >= len(c.finished) {
		return false
	}
	return c.finished[playerIdx]
}

func (c *Controller) playSound(e SoundEvent) {
	if cue, ok := e.PlayOneShot(c.rnd); ok {
		c.presenter.Audio.Play(cue)
	}
}

// NewGame shows the start splash and schedules StartGame with the session's
// player count.
func (c *Controller) NewGame() {
	if c.phase != PhaseAwaitingStart || c.startTimer.Pending() {
		return
	}

	if cue, ok := c.sounds.Ambience.Play(); ok {
		c.presenter.Audio.Play(cue)
	}
	c.camera.SetActive(false)
	c.presenter.Scoreboard.SetVisible(false)
	c.presenter.HUD.SetVisible(false)
	c.presenter.Splash.HideAll()
	c.presenter.Pause.SetVisible(false)

	c.presenter.Splash.Show(SplashGameStart)
	c.startTimer = c.timers.Schedule(timerGameStart, c.timings.GameStart, func() {
		if err := c.StartGame(c.cfg.PlayersCount); err != nil {
			log.Printf("[GAME] Start failed: %v", err)
		}
	})
}

// StartGame sets up players, balls and the stroke table, then moves to the
// first hole with the first player.
func (c *Controller) StartGame(playerCount int) error {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return fmt.Errorf("%w: invalid player count %d, allowed range %d-%d",
			ErrInvalidConfiguration, playerCount, MinPlayers, MaxPlayers)
	}
	scores, err := NewScoreboard(playerCount, len(c.course.Holes))
	if err != nil {
		return err
	}
	if err := c.presenter.Scoreboard.SetPlayers(playerCount); err != nil {
		return err
	}
	if err := c.presenter.Scoreboard.SetHoles(len(c.course.Holes)); err != nil {
		return err
	}

	c.startTimer.Cancel()
	c.pendingTurn.Cancel()
	c.endTimer.Cancel()

	c.currentHole = -1
	c.currentPlayer = -1
	c.paused = false
	c.presenter.Splash.Show(SplashNone)

	c.players = make([]*Player, playerCount)
	for i := range c.players {
		ball := NewBall(i, c.bodies(i), c.timers)
		c.players[i] = NewPlayer(i, ball)
	}
	c.scores = scores
	c.finished = make([]bool, playerCount)

	c.presenter.HUD.SetVisible(true)
	c.phase = PhasePlayingHole

	log.Printf("[GAME] Starting %q with %d player(s), %d hole(s)", c.course.Name, playerCount, len(c.course.Holes))
	c.emit(Event{Type: EventGameStarted, Player: -1, Hole: -1})

	c.AdvanceTurn()
	return nil
}

// AdvanceTurn picks the next unfinished player after the current one. When
// everyone has finished it moves to the next hole or ends the game.
func (c *Controller) AdvanceTurn() {
	if c.phase == PhaseAwaitingStart || c.phase == PhaseGameEnd || len(c.players) == 0 {
		return
	}
	if c.currentHole < 0 {
		c.ChangeHole(0)
		return
	}

	n := len(c.players)
	next := -1
	for i := 1; i <= n; i++ {
		idx := ((c.currentPlayer+i)%n + n) % n
		if !c.finished[idx] {
			next = idx
			break
		}
	}

	switch {
	case next > -1:
		c.ActivatePlayer(next)
	case c.currentHole+1 >= len(c.course.Holes):
		c.EndGame()
	default:
		c.ChangeHole(c.currentHole + 1)
	}
}

// ActivatePlayer hands the turn to a player. With more than one player the
// turn starts after the turn-change splash.
func (c *Controller) ActivatePlayer(idx int) {
	if idx < 0 || idx >= len(c.players) {
		return
	}

	p := c.players[idx]
	c.presenter.HUD.SetPlayerName(p.Name)
	if err := c.presenter.HUD.SetThrowCounter(c.scores.Strokes(idx, c.currentHole)); err != nil {
		log.Printf("[GAME] HUD throw counter: %v", err)
	}
	c.camera.SetTrackedTarget(p.Ball)
	c.camera.UpdateCameraPosition()
	c.currentPlayer = idx
	c.pendingTurn.Cancel()

	if idx == 0 && len(c.players) == 1 {
		c.beginTurn(idx)
		return
	}

	for _, other := range c.players {
		other.SetCurrentTurn(false)
	}
	c.presenter.Splash.SetPlayerName(p.Name)
	c.presenter.Splash.Show(SplashPlayerTurnStart)
	c.phase = PhaseHoleTransition
	c.turnDelays++

	c.pendingTurn = c.timers.Schedule(timerTurnChange, c.timings.TurnChange, func() {
		c.presenter.Splash.Show(SplashNone)
		c.beginTurn(idx)
	})
}

func (c *Controller) beginTurn(idx int) {
	c.playSound(c.sounds.TurnStart)
	c.players[idx].SetCurrentTurn(true)
	c.camera.SetActive(true)
	c.phase = PhasePlayingHole
	c.emit(Event{Type: EventTurnStarted, Player: idx, Hole: c.currentHole})
}

// RecordThrow adds a stroke and returns the new count, or -1 when the cell
// does not exist.
func (c *Controller) RecordThrow(playerIdx, holeIdx int) int {
	if c.scores == nil {
		return -1
	}
	return c.scores.Increment(playerIdx, holeIdx)
}

// RecordHoleFinish marks a player done with the current hole and commits the
// stroke count. A repeated finish before the hole changes is ignored.
func (c *Controller) RecordHoleFinish(playerIdx, holeIdx int) bool {
	if c.phase == PhaseAwaitingStart || c.phase == PhaseGameEnd {
		return false
	}
	if holeIdx != c.currentHole || playerIdx < 0 || playerIdx >= len(c.players) {
		return false
	}
	if c.finished[playerIdx] {
		log.Printf("[GAME] Ignoring repeated finish for player %d on hole %d", playerIdx+1, holeIdx+1)
		return false
	}

	c.finished[playerIdx] = true
	if err := c.scores.Commit(playerIdx, holeIdx); err != nil {
		log.Printf("[GAME] Commit score: %v", err)
	}
	strokes := c.scores.Strokes(playerIdx, holeIdx)
	if err := c.presenter.Scoreboard.SetPlayerScore(playerIdx, holeIdx, strokes); err != nil {
		log.Printf("[GAME] Scoreboard write: %v", err)
	}

	c.presenter.Splash.SetHoleNumber(holeIdx + 1)
	c.presenter.Splash.SetStrokesCount(strokes)
	c.presenter.Splash.Show(SplashPlayerFinishedHole)
	c.playSound(c.sounds.HoleCompleted)

	log.Printf("[GAME] Player %d finished hole %d in %d stroke(s)", playerIdx+1, holeIdx+1, strokes)
	c.emit(Event{Type: EventHoleFinished, Player: playerIdx, Hole: holeIdx, Strokes: strokes})
	return true
}

// ChangeHole moves every ball to a hole's start and gives the turn to the
// first player. Out-of-range indices are ignored.
func (c *Controller) ChangeHole(index int) {
	if len(c.players) == 0 || c.phase == PhaseGameEnd {
		return
	}
	if index < 0 || index >= len(c.course.Holes) {
		return
	}

	log.Printf("[GAME] Changing to hole %d", index+1)
	c.pendingTurn.Cancel()
	c.currentHole = index
	hole := c.course.Holes[index]

	for _, p := range c.players {
		p.CancelThrowWait()
		p.Ball.PlaceAt(hole.Start, hole.StartDirection)
	}
	c.finished = make([]bool, len(c.players))
	c.phase = PhasePlayingHole

	c.emit(Event{Type: EventHoleChanged, Player: -1, Hole: index})
	c.ActivatePlayer(0)
}

// HandleBallThrow is the active player's throw input.
func (c *Controller) HandleBallThrow() bool {
	if c.phase != PhasePlayingHole || c.currentPlayer < 0 || c.currentPlayer >= len(c.players) {
		return false
	}
	p := c.players[c.currentPlayer]
	if !p.IsCurrentTurn() || p.Ball.IsRolling() {
		return false
	}

	strokes := c.RecordThrow(c.currentPlayer, c.currentHole)
	c.playSound(c.sounds.Throw(p.ThrowTier()))
	p.ThrowBall()
	if err := c.presenter.HUD.SetThrowCounter(strokes); err != nil {
		log.Printf("[GAME] HUD throw counter: %v", err)
	}

	c.emit(Event{Type: EventBallThrown, Player: c.currentPlayer, Hole: c.currentHole, Strokes: strokes})
	return true
}

// HandleBallStop runs once the active ball has settled.
func (c *Controller) HandleBallStop() {
	c.camera.SetActive(false)

	if c.IsFinished(c.currentPlayer) {
		c.phase = PhaseHoleTransition
		c.pendingTurn.Cancel()
		c.pendingTurn = c.timers.Schedule(timerHoleFinish, c.timings.HoleFinish, func() {
			c.presenter.Splash.Show(SplashNone)
			c.phase = PhasePlayingHole
			c.AdvanceTurn()
		})
		return
	}
	c.AdvanceTurn()
}

// HandleEndZoneTrigger reacts to a ball entering an end zone. Zones other than
// the current hole's, balls other than the active player's and triggers outside
// play are ignored.
func (c *Controller) HandleEndZoneTrigger(zoneID string, playerIdx int) bool {
	if c.phase != PhasePlayingHole || c.currentHole < 0 {
		return false
	}
	if zoneID != c.course.Holes[c.currentHole].EndZone.ID {
		return false
	}
	if playerIdx != c.currentPlayer {
		return false
	}
	return c.RecordHoleFinish(c.currentPlayer, c.currentHole)
}

// HandleCollision plays the impact sound for a ball hitting a tagged surface.
func (c *Controller) HandleCollision(playerIdx int, surface ImpactSurface, relativeSpeed float64) {
	if playerIdx < 0 || playerIdx >= len(c.players) {
		return
	}
	e, ok := c.sounds.Impact(surface)
	if !ok {
		return
	}
	if cue, ok := e.PlayOneShot(relativeSpeed, c.rnd); ok {
		c.presenter.Audio.Play(cue)
	}
}

// EndGame shows the final scoreboard and returns to the main menu after a delay.
func (c *Controller) EndGame() {
	if c.phase == PhaseGameEnd {
		return
	}
	c.pendingTurn.Cancel()
	for _, p := range c.players {
		p.SetCurrentTurn(false)
	}
	c.camera.SetActive(false)
	c.presenter.Splash.Show(SplashNone)
	c.presenter.Scoreboard.SetVisible(true)
	c.phase = PhaseGameEnd

	log.Printf("[GAME] Game over on %q", c.course.Name)
	c.emit(Event{Type: EventGameOver, Player: -1, Hole: c.currentHole})

	c.endTimer = c.timers.Schedule(timerMainMenu, c.timings.EndGame, func() {
		c.requestScene(MainMenuScene)
	})
}

// ExitToMainMenu leaves immediately, as from the pause menu.
func (c *Controller) ExitToMainMenu() {
	c.startTimer.Cancel()
	c.pendingTurn.Cancel()
	c.endTimer.Cancel()
	c.requestScene(MainMenuScene)
}

func (c *Controller) requestScene(name string) {
	c.presenter.Scenes.LoadScene(name)
	c.emit(Event{Type: EventSceneRequested, Player: -1, Hole: c.currentHole, Scene: name})
}

// SetPaused toggles the pause menu. Paused games ignore steering, zoom and throws.
func (c *Controller) SetPaused(paused bool) {
	c.paused = paused
	c.presenter.Pause.SetVisible(paused)
}

// Tick runs one frame: timers first, then input routed to the active player,
// the balls and the camera.
func (c *Controller) Tick(dt time.Duration, in Input) {
	secs := dt.Seconds()
	c.timers.Advance(dt)

	if in.TogglePause && c.phase != PhaseAwaitingStart && !c.presenter.Splash.AnyActive() {
		c.SetPaused(!c.paused)
	}

	if c.debug {
		if in.PrevHole {
			c.ChangeHole(c.currentHole - 1)
		} else if in.NextHole {
			c.ChangeHole(c.currentHole + 1)
		}
	}

	if len(c.players) == 0 {
		return
	}

	for _, p := range c.players {
		p.Ball.Tick(secs, in.SteerDelta, c.paused)
	}

	if c.phase == PhasePlayingHole && c.currentPlayer >= 0 {
		p := c.players[c.currentPlayer]
		playerIn := in
		if c.paused {
			playerIn = Input{}
		}
		switch p.Tick(secs, playerIn) {
		case ActionThrow:
			if !c.HandleBallThrow() {
				p.CancelThrowWait()
			}
		case ActionBallStopped:
			c.HandleBallStop()
		}
		if p.IsCurrentTurn() {
			if err := c.presenter.HUD.SetPowerMeterLevel(p.PowerLevel()); err != nil {
				log.Printf("[GAME] HUD power meter: %v", err)
			}
		}
	}

	c.camera.Tick(secs, in.Zoom, c.paused)
}

// PlayerSnapshot is one player's visible state.
type PlayerSnapshot struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Position    Vec3    `json:"position"`
	Pointing    Vec3    `json:"pointing"`
	Rolling     bool    `json:"rolling"`
	Force       float64 `json:"force"`
	CurrentTurn bool    `json:"current_turn"`
	Finished    bool    `json:"finished"`
	Total       int     `json:"total"`
}

// Snapshot is the controller state shipped in every frame.
type Snapshot struct {
	Course        string           `json:"course"`
	Phase         Phase            `json:"phase"`
	CurrentHole   int              `json:"current_hole"`
	CurrentPlayer int              `json:"current_player"`
	HoleCount     int              `json:"hole_count"`
	Paused        bool             `json:"paused"`
	Players       []PlayerSnapshot `json:"players"`
	Strokes       [][]int          `json:"strokes"`
	Camera        CameraPose       `json:"camera"`
	CameraActive  bool             `json:"camera_active"`
}

func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Course:        c.course.Name,
		Phase:         c.phase,
		CurrentHole:   c.currentHole,
		CurrentPlayer: c.currentPlayer,
		HoleCount:     len(c.course.Holes),
		Paused:        c.paused,
		Camera:        c.camera.Pose(),
		CameraActive:  c.camera.IsActive(),
	}
	if c.scores != nil {
		s.Strokes = c.scores.Table()
	}
	for _, p := range c.players {
		s.Players = append(s.Players, PlayerSnapshot{
			Index:       p.Index,
			Name:        p.Name,
			Position:    p.Ball.Position(),
			Pointing:    p.Ball.PointingDirection(),
			Rolling:     p.Ball.IsRolling(),
			Force:       p.ThrowingForce(),
			CurrentTurn: p.IsCurrentTurn(),
			Finished:    c.IsFinished(p.Index),
			Total:       c.scores.Total(p.Index),
		})
	}
	return s
}

// IsInvalidConfiguration reports whether err is a setup failure.
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}
