package game

// Phase is the controller's position in the turn/hole state machine.
type Phase string

const (
	PhaseAwaitingStart  Phase = "AWAITING_START"
	PhasePlayingHole    Phase = "PLAYING_HOLE"
	PhaseHoleTransition Phase = "HOLE_TRANSITION"
	PhaseGameEnd        Phase = "GAME_END"
)

// SessionStatus represents the lifecycle of a hosted session.
type SessionStatus string

const (
	StatusWaiting    SessionStatus = "WAITING"
	StatusInProgress SessionStatus = "IN_PROGRESS"
	StatusCompleted  SessionStatus = "COMPLETED"
	StatusCancelled  SessionStatus = "CANCELLED"
)

// SplashScreen identifies which full-screen overlay is showing.
type SplashScreen string

const (
	SplashNone               SplashScreen = "NONE"
	SplashGameStart          SplashScreen = "GAME_START"
	SplashPlayerTurnStart    SplashScreen = "PLAYER_TURN_START"
	SplashPlayerFinishedHole SplashScreen = "PLAYER_FINISHED_HOLE"
)
