package game

import (
	"fmt"
	"strconv"
	"strings"
)

// The presentation collaborators driven by the controller. The host renders
// them; the server only tracks their state.

type PlayerHUD interface {
	SetVisible(visible bool)
	SetPlayerName(name string)
	SetThrowCounter(count int) error
	SetPowerMeterLevel(level float64) error
}

type SplashScreens interface {
	Show(screen SplashScreen)
	HideAll()
	AnyActive() bool
	SetPlayerName(name string)
	SetHoleNumber(hole int)
	SetStrokesCount(strokes int)
}

type ScoreboardView interface {
	SetVisible(visible bool)
	SetPlayers(count int) error
	SetHoles(count int) error
	SetPlayerScore(player, hole, score int) error
}

type PauseMenu interface {
	SetVisible(visible bool)
}

type AudioSink interface {
	Play(cue SoundCue)
}

type SceneLoader interface {
	LoadScene(name string)
}

// Presenter bundles the collaborators handed to a controller.
type Presenter struct {
	HUD        PlayerHUD
	Splash     SplashScreens
	Scoreboard ScoreboardView
	Pause      PauseMenu
	Audio      AudioSink
	Scenes     SceneLoader
}

// HUDState is the in-game player overlay.
type HUDState struct {
	Visible      bool    `json:"visible"`
	PlayerName   string  `json:"player_name"`
	ThrowCounter int     `json:"throw_counter"`
	PowerMeter   float64 `json:"power_meter"`
}

func (h *HUDState) SetVisible(visible bool)   { h.Visible = visible }
func (h *HUDState) SetPlayerName(name string) { h.PlayerName = name }

func (h *HUDState) SetThrowCounter(count int) error {
	if count < 0 || count > MaxThrowCount {
		return fmt.Errorf("%w: throw counter %d, must be between 0-%d", ErrInvalidConfiguration, count, MaxThrowCount)
	}
	h.ThrowCounter = count
	return nil
}

func (h *HUDState) SetPowerMeterLevel(level float64) error {
	if level < 0 || level > 1 {
		return fmt.Errorf("%w: power meter level %.3f, must be between 0.0-1.0", ErrInvalidConfiguration, level)
	}
	h.PowerMeter = level
	return nil
}

// SplashState tracks which splash screen shows and its text fields.
type SplashState struct {
	Screen       SplashScreen `json:"screen"`
	PlayerName   string       `json:"player_name"`
	HoleNumber   string       `json:"hole_number"`
	StrokesCount string       `json:"strokes_count"`
}

func (s *SplashState) Show(screen SplashScreen) {
	if screen == "" {
		screen = SplashNone
	}
	s.Screen = screen
}

func (s *SplashState) HideAll() { s.Screen = SplashNone }

func (s *SplashState) AnyActive() bool {
	return s.Screen != "" && s.Screen != SplashNone
}

// SetPlayerName upper-cases and truncates to the splash width.
func (s *SplashState) SetPlayerName(name string) {
	name = strings.ToUpper(name)
	if r := []rune(name); len(r) > SplashNameMaxLen {
		name = string(r[:SplashNameMaxLen])
	}
	s.PlayerName = name
}

func (s *SplashState) SetHoleNumber(hole int) {
	s.HoleNumber = fmt.Sprintf("HOLE %d", hole)
}

func (s *SplashState) SetStrokesCount(strokes int) {
	word := "STROKES"
	if strokes == 1 {
		word = "STROKE"
	}
	s.StrokesCount = fmt.Sprintf("%d %s", strokes, word)
}

// ScoreboardState is the rendered table: one row per player, "-" for holes
// not yet finished.
type ScoreboardState struct {
	Visible bool       `json:"visible"`
	Names   []string   `json:"names"`
	Cells   [][]string `json:"cells"`
	holes   int
}

func (s *ScoreboardState) SetVisible(visible bool) { s.Visible = visible }

// SetPlayers rebuilds the table with one empty row per player.
func (s *ScoreboardState) SetPlayers(count int) error {
	if count < MinPlayers || count > MaxPlayers {
		return fmt.Errorf("%w: players count %d, must be between %d-%d", ErrInvalidConfiguration, count, MinPlayers, MaxPlayers)
	}
	s.Names = make([]string, count)
	for i := range s.Names {
		s.Names[i] = fmt.Sprintf("Player %d", i+1)
	}
	s.clear()
	return nil
}

// SetHoles resizes every row and blanks all cells.
func (s *ScoreboardState) SetHoles(count int) error {
	if count < MinHoles || count > MaxHoles {
		return fmt.Errorf("%w: holes count %d, must be between %d-%d", ErrInvalidConfiguration, count, MinHoles, MaxHoles)
	}
	s.holes = count
	s.clear()
	return nil
}

func (s *ScoreboardState) clear() {
	s.Cells = make([][]string, len(s.Names))
	for i := range s.Cells {
		row := make([]string, s.holes)
		for j := range row {
			row[j] = "-"
		}
		s.Cells[i] = row
	}
}

func (s *ScoreboardState) SetPlayerScore(player, hole, score int) error {
	if player < 0 || player >= len(s.Cells) {
		return fmt.Errorf("%w: invalid player index %d", ErrInvalidConfiguration, player)
	}
	if hole < 0 || hole >= s.holes {
		return fmt.Errorf("%w: invalid hole index %d", ErrInvalidConfiguration, hole)
	}
	s.Cells[player][hole] = strconv.Itoa(score)
	return nil
}

// PauseState is the pause menu overlay.
type PauseState struct {
	Visible bool `json:"visible"`
}

func (p *PauseState) SetVisible(visible bool) { p.Visible = visible }

// AudioQueue collects cues until the frame loop drains them to the host.
type AudioQueue struct {
	cues []SoundCue
}

func (a *AudioQueue) Play(cue SoundCue) { a.cues = append(a.cues, cue) }

// Drain returns and clears the queued cues.
func (a *AudioQueue) Drain() []SoundCue {
	out := a.cues
	a.cues = nil
	return out
}

// SceneRequest remembers the last scene the controller asked for.
type SceneRequest struct {
	Requested string `json:"requested,omitempty"`
}

func (s *SceneRequest) LoadScene(name string) { s.Requested = name }

// View is the server-side rendition of every presentation collaborator.
type View struct {
	HUD        HUDState
	Splash     SplashState
	Scoreboard ScoreboardState
	Pause      PauseState
	Audio      AudioQueue
	Scene      SceneRequest
}

func NewView() *View {
	return &View{Splash: SplashState{Screen: SplashNone}}
}

// Presenter wires the view into a controller.
func (v *View) Presenter() Presenter {
	return Presenter{
		HUD:        &v.HUD,
		Splash:     &v.Splash,
		Scoreboard: &v.Scoreboard,
		Pause:      &v.Pause,
		Audio:      &v.Audio,
		Scenes:     &v.Scene,
	}
}

// ViewSnapshot is the serialisable part of a View.
type ViewSnapshot struct {
	HUD        HUDState        `json:"hud"`
	Splash     SplashState     `json:"splash"`
	Scoreboard ScoreboardState `json:"scoreboard"`
	Pause      PauseState      `json:"pause"`
	Scene      SceneRequest    `json:"scene"`
}

func (v *View) Snapshot() ViewSnapshot {
	sb := v.Scoreboard
	sb.Names = append([]string(nil), v.Scoreboard.Names...)
	sb.Cells = make([][]string, len(v.Scoreboard.Cells))
	for i, row := range v.Scoreboard.Cells {
		sb.Cells[i] = append([]string(nil), row...)
	}
	return ViewSnapshot{
		HUD:        v.HUD,
		Splash:     v.Splash,
		Scoreboard: sb,
		Pause:      v.Pause,
		Scene:      v.Scene,
	}
}
