package game

import (
	"errors"
	"testing"
)

func TestLobbyPlayerButtons(t *testing.T) {
	courses := NewCourseRegistry()
	courses.Register(StandardCourse())
	l := NewLobby(courses, "classic", 0)

	if l.MaxPlayers != MenuMaxPlayers {
		t.Errorf("MaxPlayers = %d, want menu default %d", l.MaxPlayers, MenuMaxPlayers)
	}
	if l.CanRemove() || l.RemovePlayer() {
		t.Error("removing the last player allowed")
	}
	for i := 1; i < MenuMaxPlayers; i++ {
		if !l.AddPlayer() {
			t.Fatalf("AddPlayer failed at %d", i)
		}
	}
	if l.CanAdd() || l.AddPlayer() {
		t.Error("adding past the menu maximum allowed")
	}
	names := l.PlayerNames()
	if len(names) != MenuMaxPlayers || names[3] != "Player 4" {
		t.Errorf("names = %v", names)
	}

	if err := l.SetPlayers(MenuMaxPlayers + 1); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("SetPlayers over limit = %v", err)
	}
	if err := l.SetPlayers(2); err != nil || l.PlayersCount != 2 {
		t.Errorf("SetPlayers(2) = %v, count %d", err, l.PlayersCount)
	}
	if err := l.SetPlayers(MenuMaxPlayers); err != nil {
		t.Fatal(err)
	}

	cfg, err := l.SessionConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PlayersCount != MenuMaxPlayers || cfg.Course.Name != "classic" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLobbyCourseSelection(t *testing.T) {
	l := NewLobby(NewCourseRegistry(), "classic", 2)
	if l.SelectedCourse() != nil {
		t.Fatal("missing default course selected")
	}
	if _, err := l.SessionConfig(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("SessionConfig without course = %v", err)
	}
	if err := l.SelectCourse("nowhere"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("SelectCourse = %v", err)
	}
}
