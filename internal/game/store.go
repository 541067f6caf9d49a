package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/puttparty/backend/internal/models"
)

const (
	sessionStateTTL   = time.Hour
	gameEventsChannel = "game_events"
	idleSetKey        = "session_idle"
)

func sessionStateKey(token string) string {
	return "session:" + token + ":state"
}

// StoredSession is the persisted view of a session.
type StoredSession struct {
	Info  SessionInfo `json:"info"`
	Frame Frame       `json:"frame"`
}

// GameEventMessage is the payload published on the game_events channel.
type GameEventMessage struct {
	Type      string `json:"type"`
	GameToken string `json:"game_token"`
	Event     Event  `json:"event"`
}

// saveSessionToRedis persists session state to Redis
func (m *Manager) saveSessionToRedis(s *Session) error {
	if m.rdb == nil {
		return nil // No Redis client, skip
	}

	data, err := json.Marshal(StoredSession{Info: s.Info(), Frame: s.LastFrame()})
	if err != nil {
		return err
	}
	return m.rdb.SetEx(context.Background(), sessionStateKey(s.Token), data, sessionStateTTL).Err()
}

// loadSessionFromRedis loads the last saved state of a session
func (m *Manager) loadSessionFromRedis(token string) (*StoredSession, error) {
	if m.rdb == nil {
		return nil, ErrSessionNotFound
	}
	data, err := m.rdb.Get(context.Background(), sessionStateKey(token)).Bytes()
	if err != nil {
		return nil, err
	}
	var stored StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode stored session %s: %w", token, err)
	}
	return &stored, nil
}

// publishEvent fans a controller event out to every server instance. Without
// Redis the broadcaster is called directly.
func (m *Manager) publishEvent(token string, e Event) {
	if m.rdb == nil {
		if b := m.getBroadcaster(); b != nil {
			b.BroadcastEvent(token, e)
		}
		return
	}
	b, _ := json.Marshal(GameEventMessage{Type: "game_event", GameToken: token, Event: e})
	if err := m.rdb.Publish(context.Background(), gameEventsChannel, b).Err(); err != nil {
		log.Printf("[REDIS] publish %s failed: game=%s err=%v", e.Type, token, err)
	}
}

// insertSession creates the game_sessions row
func (m *Manager) insertSession(s *Session) {
	if m.db == nil {
		return
	}
	info := s.Info()
	var id int
	err := m.db.QueryRowx(m.db.Rebind(`INSERT INTO game_sessions (game_token, session_uuid, course, mode, players_count, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		info.Token, info.ID, info.Course, string(info.Mode), info.PlayersCount, string(info.Status), info.CreatedAt).Scan(&id)
	if err != nil {
		log.Printf("[DB] Failed to create game_session: %v", err)
		return
	}
	s.DBSessionID = id
}

func (m *Manager) markSessionStarted(s *Session) {
	if m.db == nil || s.DBSessionID == 0 {
		return
	}
	info := s.Info()
	if _, err := m.db.Exec(m.db.Rebind(`UPDATE game_sessions SET status = ?, started_at = ? WHERE id = ?`),
		string(StatusInProgress), info.StartedAt, s.DBSessionID); err != nil {
		log.Printf("[DB] Failed to mark session %d started: %v", s.DBSessionID, err)
	}
}

func (m *Manager) markSessionEnded(s *Session, status SessionStatus) {
	if m.db == nil || s.DBSessionID == 0 {
		return
	}
	if _, err := m.db.Exec(m.db.Rebind(`UPDATE game_sessions SET status = ?, completed_at = ? WHERE id = ? AND status <> ?`),
		string(status), time.Now(), s.DBSessionID, string(StatusCompleted)); err != nil {
		log.Printf("[DB] Failed to mark session %d %s: %v", s.DBSessionID, status, err)
	}
}

// SaveResults stores the final stroke table once per session.
func (m *Manager) SaveResults(s *Session) {
	if m.db == nil || s.DBSessionID == 0 || !s.claimResults() {
		return
	}
	names, table := s.Results()
	info := s.Info()
	completedAt := time.Now()
	if info.CompletedAt != nil {
		completedAt = *info.CompletedAt
	}

	tx, err := m.db.Beginx()
	if err != nil {
		log.Printf("[DB] Failed to begin results tx: %v", err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(tx.Rebind(`UPDATE game_sessions SET status = ?, completed_at = ? WHERE id = ?`),
		string(StatusCompleted), completedAt, s.DBSessionID); err != nil {
		log.Printf("[DB] Failed to complete session %d: %v", s.DBSessionID, err)
		return
	}
	insert := tx.Rebind(`INSERT INTO hole_scores (session_id, player_index, player_name, hole_number, par, strokes) VALUES (?, ?, ?, ?, ?, ?)`)
	for p, row := range table {
		for h, strokes := range row {
			hole := s.Course.Holes[h]
			if _, err := tx.Exec(insert, s.DBSessionID, p, names[p], hole.Number, hole.Par, strokes); err != nil {
				log.Printf("[DB] Failed to insert hole score: %v", err)
				return
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[DB] Failed to commit results for session %d: %v", s.DBSessionID, err)
		return
	}
	log.Printf("[DB] Saved results for session %s (%d players)", s.Token, len(table))
}

// Leaderboard lists the best completed rounds on a course.
func (m *Manager) Leaderboard(course string, limit int) ([]models.LeaderboardEntry, error) {
	if m.db == nil {
		return []models.LeaderboardEntry{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries := []models.LeaderboardEntry{}
	err := m.db.Select(&entries, m.db.Rebind(`
		SELECT s.game_token, h.player_index, h.player_name,
		       SUM(h.strokes) AS strokes, SUM(h.par) AS par, s.completed_at
		FROM hole_scores h
		JOIN game_sessions s ON s.id = h.session_id
		WHERE s.course = ? AND s.status = ?
		GROUP BY s.id, s.game_token, h.player_index, h.player_name, s.completed_at
		ORDER BY strokes ASC, s.completed_at ASC
		LIMIT ?`), course, string(StatusCompleted), limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SessionScores loads the stored hole scores of a finished session.
func (m *Manager) SessionScores(token string) ([]models.HoleScore, error) {
	if m.db == nil {
		return nil, ErrSessionNotFound
	}
	scores := []models.HoleScore{}
	err := m.db.Select(&scores, m.db.Rebind(`
		SELECT h.id, h.session_id, h.player_index, h.player_name, h.hole_number, h.par, h.strokes
		FROM hole_scores h
		JOIN game_sessions s ON s.id = h.session_id
		WHERE s.game_token = ?
		ORDER BY h.player_index, h.hole_number`), token)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, ErrSessionNotFound
	}
	return scores, nil
}
