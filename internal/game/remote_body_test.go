package game

import (
	"errors"
	"testing"
)

func TestRemoteBodyQueuesCommands(t *testing.T) {
	w := NewRemoteWorld()
	body := w.BodyFactory()(1)

	body.SetPosition(NewVec3(1, 0, 2))
	body.ApplyImpulse(NewVec3(0, 0, 4))
	body.Sleep()

	cmds := w.DrainCommands()
	want := []string{CommandTeleport, CommandImpulse, CommandSleep}
	if len(cmds) != len(want) {
		t.Fatalf("commands = %+v", cmds)
	}
	for i, op := range want {
		if cmds[i].Op != op || cmds[i].Player != 1 {
			t.Errorf("command %d = %+v, want op %s for player 1", i, cmds[i], op)
		}
	}
	if len(w.DrainCommands()) != 0 {
		t.Error("drain did not clear the queue")
	}
}

func TestRemoteWorldApplyTelemetry(t *testing.T) {
	w := NewRemoteWorld()
	body := w.BodyFactory()(0)

	err := w.Apply(Telemetry{Player: 0, Position: NewVec3(3, 0, 3), Linear: NewVec3(1, 0, 0), Grounded: false})
	if err != nil {
		t.Fatal(err)
	}
	if !body.Position().IsEqualTo(NewVec3(3, 0, 3)) || !body.LinearVelocity().IsEqualTo(NewVec3(1, 0, 0)) {
		t.Errorf("telemetry not applied: %+v %+v", body.Position(), body.LinearVelocity())
	}
	if body.TouchingGround(GroundCheckRadius) {
		t.Error("grounded flag not applied")
	}

	if err := w.Apply(Telemetry{Player: 4}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("unknown ball err = %v", err)
	}
}

func TestHostDrivenBallSettles(t *testing.T) {
	w := NewRemoteWorld()
	timers := NewTimerQueue()
	ball := NewBall(0, w.BodyFactory()(0), timers)
	ball.SetActive(true)

	ball.Throw(2)
	w.Apply(Telemetry{Player: 0, Linear: NewVec3(0, 0, 1.5), Grounded: true})
	timers.Advance(SettleWarmup)
	ball.Tick(0.016, 0, false)
	if !ball.IsRolling() {
		t.Fatal("ball settled while host reports motion")
	}

	w.Apply(Telemetry{Player: 0, Position: NewVec3(0, 0, 2), Linear: NewVec3(0, 0, 0.004), Angular: NewVec3(0.003, 0, 0), Grounded: true})
	ball.Tick(0.016, 0, false)
	if ball.IsRolling() {
		t.Fatal("ball did not settle on quiet telemetry")
	}

	cmds := w.DrainCommands()
	if len(cmds) != 2 || cmds[0].Op != CommandImpulse || cmds[1].Op != CommandSleep {
		t.Errorf("commands = %+v, want impulse then sleep", cmds)
	}
}
