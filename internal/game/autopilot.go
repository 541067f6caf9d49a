package game

import (
	"fmt"
	"math"
	"time"
)

// Autopilot plays the active player's turn on a flat course: turn towards the
// cup, dial in the force that rolls the ball just past it, then throw.
type Autopilot struct {
	// Friction is the deceleration of the world the ball rolls in.
	Friction float64
	// Overshoot is how far past the cup centre to aim, in metres.
	Overshoot float64
	// Tolerance is the aiming error accepted before throwing, in degrees.
	Tolerance float64
}

func NewAutopilot() *Autopilot {
	return &Autopilot{
		Friction:  DefaultRollFriction,
		Overshoot: 0.3,
		Tolerance: 0.25,
	}
}

// Input returns the next frame's input for the controller's active player.
func (a *Autopilot) Input(c *Controller, dt float64) Input {
	if dt <= 0 || c.Phase() != PhasePlayingHole || c.IsPaused() {
		return Input{}
	}
	idx := c.CurrentPlayer()
	if idx < 0 || idx >= len(c.Players()) || c.IsFinished(idx) {
		return Input{}
	}
	p := c.Players()[idx]
	if !p.IsCurrentTurn() || p.Ball.IsRolling() || p.IsWaitingBallToStop() {
		return Input{}
	}

	hole := c.Course().Holes[c.CurrentHole()]
	toCup := hole.EndZone.Center.Minus(p.Ball.Position()).Horizontal()
	if toCup.IsZero() {
		return Input{}
	}

	if angle := angleTo(p.Ball.PointingDirection(), toCup); math.Abs(angle) > a.Tolerance {
		return Input{SteerDelta: angle / (DirectionChangeSpeed * dt)}
	}

	speed := math.Sqrt(2 * a.Friction * (toCup.Magnitude() + a.Overshoot))
	target := clamp(speed*DefaultBallMass, ForceMin, ForceMax)
	if diff := target - p.ThrowingForce(); math.Abs(diff) > 0.01 {
		return Input{ForceHeld: true, ForceDelta: diff / (ForceChangeSpeed * dt)}
	}
	return Input{Throw: true}
}

// SimulationResult is the outcome of a headless game.
type SimulationResult struct {
	Course  string
	Names   []string
	Strokes [][]int
	Totals  []int
	Elapsed time.Duration // simulated time
	Events  []Event
}

// Simulate plays a local game with the autopilot at tickRate until it ends or
// limit of simulated time has passed.
func Simulate(cfg SessionConfig, opts ControllerOptions, tickRate int, limit time.Duration) (*SimulationResult, error) {
	if tickRate <= 0 {
		tickRate = 60
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	world := NewLocalWorld(cfg.Course)
	view := NewView()
	ctrl, err := NewController(cfg, view.Presenter(), world.BodyFactory(), opts)
	if err != nil {
		return nil, err
	}

	res := &SimulationResult{Course: cfg.Course.Name}
	ctrl.OnEvent(func(e Event) { res.Events = append(res.Events, e) })
	ctrl.NewGame()

	pilot := NewAutopilot()
	dt := time.Second / time.Duration(tickRate)
	for res.Elapsed < limit && ctrl.Phase() != PhaseGameEnd {
		for _, ev := range world.Step(dt.Seconds(), ctrl.CurrentHole()) {
			ctrl.HandleEndZoneTrigger(ev.ZoneID, ev.PlayerIdx)
		}
		ctrl.Tick(dt, pilot.Input(ctrl, dt.Seconds()))
		view.Audio.Drain()
		res.Elapsed += dt
	}
	if ctrl.Phase() != PhaseGameEnd {
		return res, fmt.Errorf("game on %q did not finish within %s", cfg.Course.Name, limit)
	}

	scores := ctrl.Scores()
	res.Strokes = scores.Table()
	for i, p := range ctrl.Players() {
		res.Names = append(res.Names, p.Name)
		res.Totals = append(res.Totals, scores.Total(i))
	}
	return res, nil
}
