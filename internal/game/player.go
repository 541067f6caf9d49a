package game

import "fmt"

// PlayerAction is what a player's frame produced for the controller to handle.
type PlayerAction int

const (
	ActionNone PlayerAction = iota
	ActionThrow
	ActionBallStopped
)

// ThrowTier buckets a throw's force for sound selection.
type ThrowTier string

const (
	ThrowLow    ThrowTier = "low"
	ThrowMedium ThrowTier = "medium"
	ThrowHigh   ThrowTier = "high"
)

// Player owns a ball and the per-turn throwing force.
type Player struct {
	Index int
	Name  string
	Ball  *Ball

	force             float64
	currentTurn       bool
	waitingBallToStop bool
}

func NewPlayer(index int, ball *Ball) *Player {
	return &Player{
		Index: index,
		Name:  fmt.Sprintf("Player %d", index+1),
		Ball:  ball,
		force: ForceMin,
	}
}

// ThrowingForce returns the force the next throw will use.
func (p *Player) ThrowingForce() float64 { return p.force }

// SetThrowingForce clamps f into the allowed force range.
func (p *Player) SetThrowingForce(f float64) {
	p.force = clamp(f, ForceMin, ForceMax)
}

// PowerLevel is the force as a fraction of its range, for the power meter.
func (p *Player) PowerLevel() float64 {
	return (p.force - ForceMin) / (ForceMax - ForceMin)
}

// ThrowTier classifies the current force into low, medium or high.
func (p *Player) ThrowTier() ThrowTier {
	span := ForceMax - ForceMin
	switch {
	case p.force <= ForceMin+span*0.25:
		return ThrowLow
	case p.force >= ForceMin+span*0.75:
		return ThrowHigh
	default:
		return ThrowMedium
	}
}

func (p *Player) IsCurrentTurn() bool       { return p.currentTurn }
func (p *Player) IsWaitingBallToStop() bool { return p.waitingBallToStop }

// SetCurrentTurn toggles input handling for this player and its ball.
func (p *Player) SetCurrentTurn(value bool) {
	p.currentTurn = value
	p.Ball.SetActive(value)
}

// ThrowBall launches the ball with the current force.
func (p *Player) ThrowBall() {
	p.Ball.Throw(p.force)
}

// CancelThrowWait forgets a pending stop report, used when the ball is moved by
// a hole change mid-roll.
func (p *Player) CancelThrowWait() {
	p.waitingBallToStop = false
}

// Tick handles one frame of the player's turn. It returns ActionBallStopped once
// after a thrown ball settles (resetting it first if it left the ground), or
// ActionThrow when the throw input fires.
func (p *Player) Tick(dt float64, in Input) PlayerAction {
	if !p.currentTurn {
		return ActionNone
	}
	if p.Ball.IsRolling() {
		return ActionNone
	}
	if p.waitingBallToStop {
		p.waitingBallToStop = false
		if !p.Ball.IsTouchingGround() {
			p.Ball.Reset()
		}
		return ActionBallStopped
	}

	if in.ForceHeld {
		p.SetThrowingForce(p.force + ForceChangeSpeed*in.ForceDelta*dt)
	}

	if in.Throw {
		p.waitingBallToStop = true
		return ActionThrow
	}
	return ActionNone
}
