package game

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/puttparty/backend/internal/database"
	"github.com/puttparty/backend/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golf.db")
	if err := migrations.RunMigrations("sqlite3", path, filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatal(err)
	}
	db, err := database.Connect("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveResultsAndLeaderboard(t *testing.T) {
	db := newTestDB(t)
	courses := NewCourseRegistry()
	courses.Register(StandardCourse())
	m := NewManager(db, nil, testManagerConfig(), courses)

	s, err := NewSession("uuid-1", "tok1", SessionConfig{PlayersCount: 2, Course: StandardCourse()}, SessionOptions{})
	if err != nil {
		t.Fatal(err)
	}
	m.insertSession(s)
	if s.DBSessionID == 0 {
		t.Fatal("session row not inserted")
	}

	if err := s.ctrl.StartGame(2); err != nil {
		t.Fatal(err)
	}
	strokes := [][]int{{2, 3, 1}, {4, 4, 4}}
	for p, row := range strokes {
		for h, n := range row {
			for i := 0; i < n; i++ {
				s.ctrl.Scores().Increment(p, h)
			}
		}
	}

	m.SaveResults(s)
	m.SaveResults(s)

	var rows int
	if err := db.Get(&rows, "SELECT COUNT(*) FROM hole_scores"); err != nil {
		t.Fatal(err)
	}
	if rows != 6 {
		t.Errorf("hole_scores rows = %d, want 6 (results saved once)", rows)
	}

	board, err := m.Leaderboard("classic", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 2 {
		t.Fatalf("leaderboard = %+v", board)
	}
	if board[0].PlayerIndex != 0 || board[0].Strokes != 6 || board[0].Par != 8 {
		t.Errorf("leader = %+v, want player 0 with 6 strokes on par 8", board[0])
	}
	if board[1].Strokes != 12 {
		t.Errorf("runner-up strokes = %d, want 12", board[1].Strokes)
	}

	scores, err := m.SessionScores("tok1")
	if err != nil || len(scores) != 6 {
		t.Errorf("SessionScores = %d rows, %v", len(scores), err)
	}
	if _, err := m.SessionScores("missing"); err != ErrSessionNotFound {
		t.Errorf("missing session err = %v", err)
	}
}

func TestMarkSessionEndedKeepsCompleted(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, nil, testManagerConfig(), nil)

	s, err := NewSession("uuid-2", "tok2", SessionConfig{PlayersCount: 1, Course: StandardCourse()}, SessionOptions{})
	if err != nil {
		t.Fatal(err)
	}
	m.insertSession(s)
	s.ctrl.StartGame(1)
	m.SaveResults(s)
	m.markSessionEnded(s, StatusCancelled)

	var status string
	if err := db.Get(&status, db.Rebind("SELECT status FROM game_sessions WHERE id = ?"), s.DBSessionID); err != nil {
		t.Fatal(err)
	}
	if status != string(StatusCompleted) {
		t.Errorf("status = %s, want COMPLETED", status)
	}
}
