package game

// Input is one frame of host input. Axis deltas are raw device deltas; the
// entities scale them by their speeds and dt.
type Input struct {
	SteerDelta  float64 `json:"steer_delta"` // horizontal pointer axis
	ForceDelta  float64 `json:"force_delta"` // vertical pointer axis
	ForceHeld   bool    `json:"force_held"`
	Throw       bool    `json:"throw"`
	Zoom        float64 `json:"zoom"` // scroll wheel
	TogglePause bool    `json:"toggle_pause"`
	PrevHole    bool    `json:"prev_hole"`
	NextHole    bool    `json:"next_hole"`
}

// Merge folds a later input into an earlier one still waiting for a frame.
// Deltas accumulate, buttons latch.
func (in Input) Merge(o Input) Input {
	return Input{
		SteerDelta:  in.SteerDelta + o.SteerDelta,
		ForceDelta:  in.ForceDelta + o.ForceDelta,
		ForceHeld:   o.ForceHeld,
		Throw:       in.Throw || o.Throw,
		Zoom:        in.Zoom + o.Zoom,
		TogglePause: in.TogglePause != o.TogglePause,
		PrevHole:    in.PrevHole || o.PrevHole,
		NextHole:    in.NextHole || o.NextHole,
	}
}
