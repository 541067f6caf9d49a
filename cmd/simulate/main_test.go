package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/puttparty/backend/internal/game"
)

func TestLoadCourses(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want []string
	}{
		{"shipped courses", filepath.Join("..", "..", "courses"), []string{"classic", "riverside"}},
		{"missing dir keeps built-in", filepath.Join(t.TempDir(), "missing"), []string{"classic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := loadCourses(tt.dir)
			if err != nil {
				t.Fatal(err)
			}
			for _, name := range tt.want {
				if _, err := courses.Get(name); err != nil {
					t.Errorf("Get(%q): %v", name, err)
				}
			}
		})
	}
}

func TestSessionConfig(t *testing.T) {
	courses, err := loadCourses(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		course  string
		players int
		want    error
	}{
		{"full range", "classic", game.MaxPlayers, nil},
		{"no players", "classic", 0, game.ErrInvalidConfiguration},
		{"unknown course", "nowhere", 2, game.ErrCourseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := sessionConfig(courses, tt.course, tt.players)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if err == nil && (cfg.PlayersCount != tt.players || cfg.Course.Name != tt.course) {
				t.Errorf("cfg = %+v", cfg)
			}
		})
	}
}
