package game

import "math"

// Body is the physics boundary. The host engine owns the simulation; the game
// only pushes impulses and reads velocities back.
type Body interface {
	Position() Vec3
	SetPosition(p Vec3)
	LinearVelocity() Vec3
	AngularVelocity() Vec3
	ApplyImpulse(impulse Vec3)
	// Sleep zeroes both velocities and parks the body until the next impulse.
	Sleep()
	// TouchingGround reports whether any ground surface lies within radius.
	TouchingGround(radius float64) bool
}

// BodyFactory creates the body for a player's ball.
type BodyFactory func(playerIdx int) Body

// Kinematic tuning for the headless stand-in.
const (
	DefaultBallMass     = 1.0
	DefaultBallRadius   = 0.021
	DefaultRollFriction = 1.2 // m/s^2 of deceleration
	DefaultMinRollSpeed = 0.02
)

// KinematicBody is a flat-ground rolling ball used when no host engine is
// attached: headless sessions, the simulator and tests. Linear friction brings
// it to rest; rolling gives angular speed = linear speed / radius.
type KinematicBody struct {
	position Vec3
	velocity Vec3
	angular  Vec3
	Mass     float64
	Radius   float64
	Friction float64
	MinSpeed float64
	grounded bool
	sleeping bool
}

func NewKinematicBody(pos Vec3) *KinematicBody {
	return &KinematicBody{
		position: pos,
		Mass:     DefaultBallMass,
		Radius:   DefaultBallRadius,
		Friction: DefaultRollFriction,
		MinSpeed: DefaultMinRollSpeed,
		grounded: true,
		sleeping: true,
	}
}

func (b *KinematicBody) Position() Vec3        { return b.position }
func (b *KinematicBody) SetPosition(p Vec3)    { b.position = p }
func (b *KinematicBody) LinearVelocity() Vec3  { return b.velocity }
func (b *KinematicBody) AngularVelocity() Vec3 { return b.angular }

func (b *KinematicBody) ApplyImpulse(impulse Vec3) {
	mass := b.Mass
	if mass <= 0 {
		mass = DefaultBallMass
	}
	b.velocity = b.velocity.Plus(impulse.Horizontal().Times(1 / mass))
	b.sleeping = false
	b.updateSpin()
}

func (b *KinematicBody) Sleep() {
	b.velocity = Vec3{}
	b.angular = Vec3{}
	b.sleeping = true
}

func (b *KinematicBody) TouchingGround(radius float64) bool {
	return b.grounded
}

// SetGrounded is driven by the world's course bounds.
func (b *KinematicBody) SetGrounded(grounded bool) {
	b.grounded = grounded
}

// SetVelocity overrides both velocities directly, bypassing friction. Used to
// replay host telemetry and in tests.
func (b *KinematicBody) SetVelocity(linear, angular Vec3) {
	b.velocity = linear
	b.angular = angular
	b.sleeping = linear.IsZero() && angular.IsZero()
}

// Sleeping reports whether the body is parked.
func (b *KinematicBody) Sleeping() bool {
	return b.sleeping
}

// Step integrates one frame of rolling with linear friction.
func (b *KinematicBody) Step(dt float64) {
	if b.sleeping || dt <= 0 {
		return
	}

	speed := b.velocity.Magnitude()
	speed -= b.Friction * dt
	dir := b.velocity.Normalize()

	if speed < b.MinSpeed {
		b.velocity = Vec3{}
	} else {
		b.velocity = dir.Times(speed)
	}
	b.position = b.position.Plus(b.velocity.Times(dt))
	b.updateSpin()
}

func (b *KinematicBody) updateSpin() {
	radius := b.Radius
	if radius <= 0 {
		radius = DefaultBallRadius
	}
	speed := b.velocity.Magnitude()
	if speed == 0 {
		b.angular = Vec3{}
		return
	}
	axis := Up.Cross(b.velocity.Normalize())
	b.angular = axis.Times(speed / radius)
}

// TriggerEvent reports a ball entering an end zone.
type TriggerEvent struct {
	ZoneID    string `json:"zone_id"`
	PlayerIdx int    `json:"player_idx"`
}

// LocalWorld steps kinematic bodies over a course and raises end-zone triggers.
type LocalWorld struct {
	course *Course
	bodies []*KinematicBody
	inZone []bool
}

func NewLocalWorld(course *Course) *LocalWorld {
	return &LocalWorld{course: course}
}

// BodyFactory returns a factory that registers each created body with the world.
func (w *LocalWorld) BodyFactory() BodyFactory {
	return func(playerIdx int) Body {
		for len(w.bodies) <= playerIdx {
			w.bodies = append(w.bodies, nil)
			w.inZone = append(w.inZone, false)
		}
		var start Vec3
		if w.course != nil && len(w.course.Holes) > 0 {
			start = w.course.Holes[0].Start
		}
		b := NewKinematicBody(start)
		w.bodies[playerIdx] = b
		w.inZone[playerIdx] = false
		return b
	}
}

// Body returns the body registered for a player, or nil.
func (w *LocalWorld) Body(playerIdx int) *KinematicBody {
	if playerIdx < 0 || playerIdx >= len(w.bodies) {
		return nil
	}
	return w.bodies[playerIdx]
}

// Step advances every body and returns the end-zone entries of this frame for
// the given hole. A ball entering the cup drops in and comes to rest on the
// zone centre.
func (w *LocalWorld) Step(dt float64, holeIdx int) []TriggerEvent {
	var hole *Hole
	if w.course != nil && holeIdx >= 0 && holeIdx < len(w.course.Holes) {
		hole = &w.course.Holes[holeIdx]
	}

	var events []TriggerEvent
	for i, b := range w.bodies {
		if b == nil {
			continue
		}
		b.Step(dt)
		if hole == nil {
			continue
		}
		b.SetGrounded(hole.Bounds.Contains(b.position))

		inside := hole.EndZone.Contains(b.position)
		if inside && !w.inZone[i] && !b.Sleeping() {
			events = append(events, TriggerEvent{ZoneID: hole.EndZone.ID, PlayerIdx: i})
			b.Sleep()
			b.SetPosition(Vec3{X: hole.EndZone.Center.X, Y: b.position.Y, Z: hole.EndZone.Center.Z})
		}
		w.inZone[i] = inside
	}
	return events
}

// angleTo returns the signed yaw in degrees from a to b around +Y.
func angleTo(a, b Vec3) float64 {
	ya := math.Atan2(a.X, a.Z)
	yb := math.Atan2(b.X, b.Z)
	d := (yb - ya) * 180 / math.Pi
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}
