package game

import (
	"fmt"
	"sync"
)

// Body command operations sent to the host engine.
const (
	CommandImpulse  = "impulse"
	CommandSleep    = "sleep"
	CommandTeleport = "teleport"
)

// BodyCommand is an instruction for the host's rigid body of one ball.
type BodyCommand struct {
	Player int    `json:"player"`
	Op     string `json:"op"`
	Vector Vec3   `json:"vector"`
}

// Telemetry is the host's report of a ball body after its physics step.
type Telemetry struct {
	Player   int  `json:"player"`
	Position Vec3 `json:"position"`
	Linear   Vec3 `json:"linear"`
	Angular  Vec3 `json:"angular"`
	Grounded bool `json:"grounded"`
}

// RemoteWorld mirrors the host's ball bodies. Commands produced by the balls
// are queued until the frame loop ships them.
type RemoteWorld struct {
	bodies   []*RemoteBody
	commands []BodyCommand
	mu       sync.Mutex
}

func NewRemoteWorld() *RemoteWorld {
	return &RemoteWorld{}
}

// BodyFactory returns a factory that registers each created body with the world.
func (w *RemoteWorld) BodyFactory() BodyFactory {
	return func(playerIdx int) Body {
		w.mu.Lock()
		defer w.mu.Unlock()
		for len(w.bodies) <= playerIdx {
			w.bodies = append(w.bodies, nil)
		}
		b := &RemoteBody{player: playerIdx, world: w, grounded: true}
		w.bodies[playerIdx] = b
		return b
	}
}

// Apply folds one telemetry report into the mirrored body.
func (w *RemoteWorld) Apply(t Telemetry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t.Player < 0 || t.Player >= len(w.bodies) || w.bodies[t.Player] == nil {
		return fmt.Errorf("%w: telemetry for unknown ball %d", ErrInvalidConfiguration, t.Player)
	}
	b := w.bodies[t.Player]
	b.position = t.Position
	b.linear = t.Linear
	b.angular = t.Angular
	b.grounded = t.Grounded
	return nil
}

// DrainCommands returns and clears the queued body commands.
func (w *RemoteWorld) DrainCommands() []BodyCommand {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.commands
	w.commands = nil
	return out
}

func (w *RemoteWorld) push(cmd BodyCommand) {
	w.commands = append(w.commands, cmd)
}

// RemoteBody is the server's view of a host-simulated ball. Writes become
// commands; reads return the last telemetry.
type RemoteBody struct {
	player   int
	world    *RemoteWorld
	position Vec3
	linear   Vec3
	angular  Vec3
	grounded bool
}

func (b *RemoteBody) Position() Vec3 {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.position
}

func (b *RemoteBody) SetPosition(p Vec3) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.position = p
	b.world.push(BodyCommand{Player: b.player, Op: CommandTeleport, Vector: p})
}

func (b *RemoteBody) LinearVelocity() Vec3 {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.linear
}

func (b *RemoteBody) AngularVelocity() Vec3 {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.angular
}

func (b *RemoteBody) ApplyImpulse(impulse Vec3) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.world.push(BodyCommand{Player: b.player, Op: CommandImpulse, Vector: impulse})
}

func (b *RemoteBody) Sleep() {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.linear = Vec3{}
	b.angular = Vec3{}
	b.world.push(BodyCommand{Player: b.player, Op: CommandSleep})
}

func (b *RemoteBody) TouchingGround(radius float64) bool {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.grounded
}
