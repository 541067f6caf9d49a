package game

import "log"

const timerBallWarmup = "ball_warmup"

// Ball wraps a physics body with the throw / settle / reset lifecycle.
type Ball struct {
	owner  int
	body   Body
	timers *TimerQueue

	pointing Vec3

	hasPrevious      bool
	previousPosition Vec3
	previousPointing Vec3

	active    bool
	rolling   bool
	warmingUp bool
	warmup    *Timer
}

// NewBall creates an idle ball pointing along +Z.
func NewBall(owner int, body Body, timers *TimerQueue) *Ball {
	return &Ball{
		owner:    owner,
		body:     body,
		timers:   timers,
		pointing: NewVec3(0, 0, 1),
	}
}

func (b *Ball) Owner() int              { return b.owner }
func (b *Ball) Body() Body              { return b.body }
func (b *Ball) Position() Vec3          { return b.body.Position() }
func (b *Ball) PointingDirection() Vec3 { return b.pointing }

// IsRolling reports whether the ball has been thrown and not yet settled.
func (b *Ball) IsRolling() bool { return b.rolling }

// IsWarmingUp reports whether settle detection is still suppressed after a throw.
func (b *Ball) IsWarmingUp() bool { return b.warmingUp }

func (b *Ball) SetActive(active bool) { b.active = active }
func (b *Ball) IsActive() bool        { return b.active }

// SetPointingDirection aims the ball at a world point. The result is a unit
// vector in the horizontal plane.
func (b *Ball) SetPointingDirection(point Vec3) {
	dir := point.Minus(b.body.Position()).Horizontal().Normalize()
	if dir.IsZero() {
		return
	}
	b.pointing = dir
}

// Throw applies an impulse of the given force along the pointing direction.
// It is a no-op while the ball is rolling.
func (b *Ball) Throw(force float64) {
	if b.rolling {
		return
	}

	b.hasPrevious = true
	b.previousPosition = b.body.Position()
	b.previousPointing = b.pointing

	b.rolling = true
	b.warmingUp = true
	b.body.ApplyImpulse(b.pointing.Times(force))

	b.warmup.Cancel()
	b.warmup = b.timers.Schedule(timerBallWarmup, SettleWarmup, func() {
		b.warmingUp = false
	})
}

// Reset stops the ball, cancels a pending warm-up and restores the pre-throw
// pose when one was recorded.
func (b *Ball) Reset() {
	b.body.Sleep()
	b.warmup.Cancel()
	b.warmup = nil

	if b.hasPrevious {
		b.pointing = b.previousPointing
		b.body.SetPosition(b.previousPosition)
	}

	b.rolling = false
	b.warmingUp = false
}

// PlaceAt moves an idle ball to a hole start and aims it. The pre-throw pose is
// replaced so a later Reset returns here.
func (b *Ball) PlaceAt(start, aim Vec3) {
	b.Reset()
	b.body.SetPosition(start)
	b.SetPointingDirection(aim)
	b.hasPrevious = true
	b.previousPosition = start
	b.previousPointing = b.pointing
}

// IsTouchingGround asks the physics layer for ground within the check radius.
func (b *Ball) IsTouchingGround() bool {
	return b.body.TouchingGround(GroundCheckRadius)
}

// Tick runs once per frame. While rolling it performs settle detection; while
// idle and active it steers by the horizontal input delta.
func (b *Ball) Tick(dt, steerDelta float64, paused bool) {
	if !b.active {
		return
	}

	if b.rolling {
		if !b.warmingUp && b.settled() {
			b.body.Sleep()
			b.rolling = false
			log.Printf("[BALL] Ball %d settled at (%.2f, %.2f, %.2f)", b.owner,
				b.body.Position().X, b.body.Position().Y, b.body.Position().Z)
		}
		return
	}

	if !paused && steerDelta != 0 {
		angle := steerDelta * DirectionChangeSpeed * dt
		b.pointing = b.pointing.RotateY(angle).Normalize()
	}
}

func (b *Ball) settled() bool {
	return b.body.LinearVelocity().Magnitude() <= SettleEpsilon &&
		b.body.AngularVelocity().Magnitude() <= SettleEpsilon
}
