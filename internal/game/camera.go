package game

// Camera tuning defaults.
const (
	CameraDistanceDefault = 3.0
	CameraDistanceMin     = 1.0
	CameraDistanceMax     = 5.0
	CameraHeightDefault   = 2.0
	CameraHeightMin       = 0.4
	CameraHeightMax       = 6.0
	CameraZoomSpeed       = 50.0
)

// CameraPose is the transform sent to the renderer.
type CameraPose struct {
	Position Vec3 `json:"position"`
	LookAt   Vec3 `json:"look_at"`
}

// CameraTracker follows a ball from behind its pointing direction.
type CameraTracker struct {
	target *Ball
	active bool

	DistanceOffset float64
	HeightOffset   float64

	pose CameraPose
}

func NewCameraTracker() *CameraTracker {
	return &CameraTracker{
		DistanceOffset: CameraDistanceDefault,
		HeightOffset:   CameraHeightDefault,
	}
}

func (c *CameraTracker) SetActive(active bool) { c.active = active }
func (c *CameraTracker) IsActive() bool        { return c.active }
func (c *CameraTracker) Pose() CameraPose      { return c.pose }
func (c *CameraTracker) Target() *Ball         { return c.target }

func (c *CameraTracker) SetTrackedTarget(b *Ball) {
	c.target = b
}

// Tick applies zoom input and refreshes the pose while active.
func (c *CameraTracker) Tick(dt, zoom float64, paused bool) {
	if !c.active || c.target == nil {
		return
	}
	if !paused {
		c.DistanceOffset += -1 * zoom * CameraZoomSpeed * dt
	}
	c.DistanceOffset = clamp(c.DistanceOffset, CameraDistanceMin, CameraDistanceMax)
	c.HeightOffset = lerp(CameraHeightMin, CameraHeightMax,
		inverseLerp(CameraDistanceMin, CameraDistanceMax, c.DistanceOffset))
	c.UpdateCameraPosition()
}

// UpdateCameraPosition recomputes the pose from the tracked ball.
func (c *CameraTracker) UpdateCameraPosition() {
	if c.target == nil {
		return
	}
	ballPos := c.target.Position()
	offset := c.target.PointingDirection().Times(-1 * c.DistanceOffset)
	offset.Y = c.HeightOffset
	c.pose = CameraPose{
		Position: ballPos.Plus(offset),
		LookAt:   ballPos,
	}
}
