package game

import "time"

// Gameplay constants. Timings and thresholds that operators may want to tune are
// also exposed through config.Config; these are the defaults.
const (
	MinPlayers     = 1
	MaxPlayers     = 8
	MinHoles       = 1
	MaxHoles       = 100
	MaxThrowCount  = 1000
	MenuMaxPlayers = 4

	SettleEpsilon        = 0.01
	SettleWarmup         = 1 * time.Second
	DirectionChangeSpeed = 60.0 // degrees per second per unit of steer input
	GroundCheckRadius    = 0.06

	ForceMin         = 0.5
	ForceMax         = 15.0
	ForceChangeSpeed = 10.0

	GameStartDelay  = 4 * time.Second
	TurnChangeDelay = 3 * time.Second
	HoleFinishDelay = 4 * time.Second
	EndGameDelay    = 15 * time.Second

	SplashNameMaxLen = 14

	MainMenuScene = "MainMenu"
)
