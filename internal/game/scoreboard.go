package game

import "fmt"

// Scoreboard is the players x holes stroke table. Counts only grow during a
// game; a cell is committed when its player finishes the hole.
type Scoreboard struct {
	strokes   [][]int
	committed [][]bool
}

// NewScoreboard allocates a table, validating both dimensions.
func NewScoreboard(players, holes int) (*Scoreboard, error) {
	if players < MinPlayers || players > MaxPlayers {
		return nil, fmt.Errorf("%w: players count %d, allowed range %d-%d",
			ErrInvalidConfiguration, players, MinPlayers, MaxPlayers)
	}
	if holes < MinHoles || holes > MaxHoles {
		return nil, fmt.Errorf("%w: holes count %d, allowed range %d-%d",
			ErrInvalidConfiguration, holes, MinHoles, MaxHoles)
	}
	s := &Scoreboard{
		strokes:   make([][]int, players),
		committed: make([][]bool, players),
	}
	for i := range s.strokes {
		s.strokes[i] = make([]int, holes)
		s.committed[i] = make([]bool, holes)
	}
	return s, nil
}

func (s *Scoreboard) Players() int { return len(s.strokes) }

func (s *Scoreboard) Holes() int {
	if len(s.strokes) == 0 {
		return 0
	}
	return len(s.strokes[0])
}

func (s *Scoreboard) inBounds(player, hole int) bool {
	return player >= 0 && player < s.Players() && hole >= 0 && hole < s.Holes()
}

// Increment adds one stroke and returns the new count, or -1 out of bounds.
func (s *Scoreboard) Increment(player, hole int) int {
	if !s.inBounds(player, hole) {
		return -1
	}
	s.strokes[player][hole]++
	return s.strokes[player][hole]
}

// Strokes returns a cell's count, or 0 out of bounds.
func (s *Scoreboard) Strokes(player, hole int) int {
	if !s.inBounds(player, hole) {
		return 0
	}
	return s.strokes[player][hole]
}

// Commit marks a cell final.
func (s *Scoreboard) Commit(player, hole int) error {
	if !s.inBounds(player, hole) {
		return fmt.Errorf("%w: scoreboard cell (%d, %d) out of range", ErrInvalidConfiguration, player, hole)
	}
	s.committed[player][hole] = true
	return nil
}

func (s *Scoreboard) IsCommitted(player, hole int) bool {
	return s.inBounds(player, hole) && s.committed[player][hole]
}

// Total sums a player's strokes across all holes.
func (s *Scoreboard) Total(player int) int {
	if player < 0 || player >= s.Players() {
		return 0
	}
	total := 0
	for _, n := range s.strokes[player] {
		total += n
	}
	return total
}

// Table returns a copy of the raw counts.
func (s *Scoreboard) Table() [][]int {
	out := make([][]int, len(s.strokes))
	for i, row := range s.strokes {
		out[i] = append([]int(nil), row...)
	}
	return out
}
