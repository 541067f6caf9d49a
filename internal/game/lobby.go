package game

import "fmt"

// SessionConfig is chosen in the lobby and handed to NewController. It replaces
// any process-wide "selected players / selected scene" state.
type SessionConfig struct {
	PlayersCount int     `json:"players_count"`
	Course       *Course `json:"-"`
}

// Validate checks the player count against the game limits and the course.
func (c SessionConfig) Validate() error {
	if c.PlayersCount < MinPlayers || c.PlayersCount > MaxPlayers {
		return fmt.Errorf("%w: invalid player count %d, allowed range %d-%d",
			ErrInvalidConfiguration, c.PlayersCount, MinPlayers, MaxPlayers)
	}
	if c.Course == nil {
		return fmt.Errorf("%w: no course selected", ErrInvalidConfiguration)
	}
	return c.Course.Validate()
}

// Lobby is the main-menu state: a player list bounded by the menu maximum and
// a selected course.
type Lobby struct {
	PlayersCount int
	MaxPlayers   int
	courses      *CourseRegistry
	selected     *Course
}

// MenuPlayerLimit falls back to MenuMaxPlayers for limits outside the game range.
func MenuPlayerLimit(maxPlayers int) int {
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return MenuMaxPlayers
	}
	return maxPlayers
}

// NewLobby starts with one player and the given course selected, if present.
func NewLobby(courses *CourseRegistry, defaultCourse string, maxPlayers int) *Lobby {
	l := &Lobby{PlayersCount: 1, MaxPlayers: MenuPlayerLimit(maxPlayers), courses: courses}
	if courses != nil {
		if c, err := courses.Get(defaultCourse); err == nil {
			l.selected = c
		}
	}
	return l
}

// AddPlayer returns false when the lobby is full.
func (l *Lobby) AddPlayer() bool {
	if l.PlayersCount >= l.MaxPlayers {
		return false
	}
	l.PlayersCount++
	return true
}

// RemovePlayer returns false when only one player is left.
func (l *Lobby) RemovePlayer() bool {
	if l.PlayersCount <= MinPlayers {
		return false
	}
	l.PlayersCount--
	return true
}

// SetPlayers jumps straight to a player count within the menu limit.
func (l *Lobby) SetPlayers(count int) error {
	if count < MinPlayers || count > l.MaxPlayers {
		return fmt.Errorf("%w: invalid player count %d, allowed range %d-%d",
			ErrInvalidConfiguration, count, MinPlayers, l.MaxPlayers)
	}
	l.PlayersCount = count
	return nil
}

func (l *Lobby) CanAdd() bool    { return l.PlayersCount < l.MaxPlayers }
func (l *Lobby) CanRemove() bool { return l.PlayersCount > MinPlayers }

// PlayerNames lists the rows shown in the menu.
func (l *Lobby) PlayerNames() []string {
	names := make([]string, l.PlayersCount)
	for i := range names {
		names[i] = fmt.Sprintf("Player %d", i+1)
	}
	return names
}

// SelectCourse switches the course toggle.
func (l *Lobby) SelectCourse(name string) error {
	if l.courses == nil {
		return fmt.Errorf("%w: %s", ErrCourseNotFound, name)
	}
	c, err := l.courses.Get(name)
	if err != nil {
		return err
	}
	l.selected = c
	return nil
}

func (l *Lobby) SelectedCourse() *Course { return l.selected }

// SessionConfig snapshots the lobby into a validated configuration.
func (l *Lobby) SessionConfig() (SessionConfig, error) {
	cfg := SessionConfig{PlayersCount: l.PlayersCount, Course: l.selected}
	if err := cfg.Validate(); err != nil {
		return SessionConfig{}, err
	}
	return cfg, nil
}
