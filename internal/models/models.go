package models

import (
	"database/sql"
	"time"
)

// GameSession represents one round of mini-golf on a course
type GameSession struct {
	ID           int          `db:"id" json:"id"`
	GameToken    string       `db:"game_token" json:"game_token"`
	SessionUUID  string       `db:"session_uuid" json:"session_uuid"`
	Course       string       `db:"course" json:"course"`
	Mode         string       `db:"mode" json:"mode"`
	PlayersCount int          `db:"players_count" json:"players_count"`
	Status       string       `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	StartedAt    sql.NullTime `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
}

// HoleScore is one player's committed strokes on one hole
type HoleScore struct {
	ID          int    `db:"id" json:"id"`
	SessionID   int    `db:"session_id" json:"session_id"`
	PlayerIndex int    `db:"player_index" json:"player_index"`
	PlayerName  string `db:"player_name" json:"player_name"`
	HoleNumber  int    `db:"hole_number" json:"hole_number"`
	Par         int    `db:"par" json:"par"`
	Strokes     int    `db:"strokes" json:"strokes"`
}

// LeaderboardEntry is a player's total for one completed session
type LeaderboardEntry struct {
	GameToken   string       `db:"game_token" json:"game_token"`
	PlayerIndex int          `db:"player_index" json:"player_index"`
	PlayerName  string       `db:"player_name" json:"player_name"`
	Strokes     int          `db:"strokes" json:"strokes"`
	Par         int          `db:"par" json:"par"`
	CompletedAt sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
}
