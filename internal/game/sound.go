package game

// SoundCue is an instruction for the host's audio source.
type SoundCue struct {
	Clip    string  `json:"clip"`
	Volume  float64 `json:"volume"`
	Pitch   float64 `json:"pitch"`
	Loop    bool    `json:"loop"`
	OneShot bool    `json:"one_shot"`
}

// SoundEvent is a clip with fixed volume and an optional pitch jitter.
type SoundEvent struct {
	Clip            string  `json:"clip"`
	Volume          float64 `json:"volume"`
	Pitch           float64 `json:"pitch"`
	PitchRandomness float64 `json:"pitch_randomness"`
	Loop            bool    `json:"loop"`
}

// Play replaces whatever the source was playing. No jitter is applied.
func (e SoundEvent) Play() (SoundCue, bool) {
	if e.Clip == "" {
		return SoundCue{}, false
	}
	return SoundCue{Clip: e.Clip, Volume: e.Volume, Pitch: e.Pitch, Loop: e.Loop}, true
}

// PlayOneShot layers the clip over the source with pitch jittered by
// rnd() in [0, 1) mapped to [-PitchRandomness, +PitchRandomness).
func (e SoundEvent) PlayOneShot(rnd func() float64) (SoundCue, bool) {
	if e.Clip == "" {
		return SoundCue{}, false
	}
	return SoundCue{
		Clip:    e.Clip,
		Volume:  e.Volume,
		Pitch:   e.Pitch + jitter(e.PitchRandomness, rnd),
		OneShot: true,
	}, true
}

// ImpactSoundEvent scales its volume with the collision's relative speed.
type ImpactSoundEvent struct {
	Clip            string  `json:"clip"`
	BaseVolume      float64 `json:"base_volume"`
	BasePitch       float64 `json:"base_pitch"`
	PitchRandomness float64 `json:"pitch_randomness"`
	// Threshold is the minimum relative speed that makes a sound at all.
	Threshold   float64 `json:"threshold"`
	VelocityMin float64 `json:"velocity_min"`
	VelocityMax float64 `json:"velocity_max"`
}

// ScaledVolume maps an impact speed onto [0, BaseVolume].
func (e ImpactSoundEvent) ScaledVolume(impactVelocity float64) float64 {
	v := clamp(impactVelocity, e.VelocityMin, e.VelocityMax)
	return e.BaseVolume * inverseLerp(e.VelocityMin, e.VelocityMax, v)
}

func (e ImpactSoundEvent) PlayOneShot(impactVelocity float64, rnd func() float64) (SoundCue, bool) {
	if e.Clip == "" || impactVelocity < e.Threshold {
		return SoundCue{}, false
	}
	pitch := e.BasePitch
	if e.PitchRandomness != 0 {
		pitch += jitter(e.PitchRandomness, rnd)
	}
	return SoundCue{
		Clip:    e.Clip,
		Volume:  e.ScaledVolume(impactVelocity),
		Pitch:   pitch,
		OneShot: true,
	}, true
}

func jitter(amount float64, rnd func() float64) float64 {
	if amount == 0 || rnd == nil {
		return 0
	}
	return (rnd()*2 - 1) * amount
}

// ImpactSurface is the tag of the collider a ball hit.
type ImpactSurface string

const (
	SurfaceWall   ImpactSurface = "wall"
	SurfaceGround ImpactSurface = "ground"
)

// SoundBank holds every sound the game emits.
type SoundBank struct {
	Ambience      SoundEvent
	TurnStart     SoundEvent
	HoleCompleted SoundEvent
	ThrowLow      SoundEvent
	ThrowMedium   SoundEvent
	ThrowHigh     SoundEvent
	WallHit       ImpactSoundEvent
	GroundHit     ImpactSoundEvent
}

func DefaultSoundBank() SoundBank {
	impact := func(clip string) ImpactSoundEvent {
		return ImpactSoundEvent{
			Clip: clip, BaseVolume: 1, BasePitch: 1, PitchRandomness: 0.05,
			Threshold: 0.1, VelocityMin: 0.1, VelocityMax: 10,
		}
	}
	return SoundBank{
		Ambience:      SoundEvent{Clip: "bg_ambience", Volume: 0.4, Pitch: 1, Loop: true},
		TurnStart:     SoundEvent{Clip: "player_turn_start", Volume: 1, Pitch: 1},
		HoleCompleted: SoundEvent{Clip: "player_completed_hole", Volume: 1, Pitch: 1},
		ThrowLow:      SoundEvent{Clip: "ball_thrown_low", Volume: 0.6, Pitch: 1, PitchRandomness: 0.05},
		ThrowMedium:   SoundEvent{Clip: "ball_thrown_medium", Volume: 0.8, Pitch: 1, PitchRandomness: 0.05},
		ThrowHigh:     SoundEvent{Clip: "ball_thrown_high", Volume: 1, Pitch: 1, PitchRandomness: 0.05},
		WallHit:       impact("wall_hit"),
		GroundHit:     impact("ground_hit"),
	}
}

// Throw picks the throw sound for a force tier.
func (b SoundBank) Throw(tier ThrowTier) SoundEvent {
	switch tier {
	case ThrowLow:
		return b.ThrowLow
	case ThrowHigh:
		return b.ThrowHigh
	default:
		return b.ThrowMedium
	}
}

// Impact picks the impact sound for a surface tag.
func (b SoundBank) Impact(surface ImpactSurface) (ImpactSoundEvent, bool) {
	switch surface {
	case SurfaceWall:
		return b.WallHit, true
	case SurfaceGround:
		return b.GroundHit, true
	default:
		return ImpactSoundEvent{}, false
	}
}
