package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/puttparty/backend/internal/config"
	"github.com/puttparty/backend/internal/game"
)

func main() {
	cfg := config.Load()

	players := flag.Int("players", 2, "number of players")
	courseName := flag.String("course", cfg.DefaultCourse, "course name")
	limit := flag.Duration("limit", 30*time.Minute, "maximum simulated time")
	flag.Parse()

	courses, err := loadCourses(cfg.CoursesDir)
	if err != nil {
		log.Fatal(err)
	}
	sessionCfg, err := sessionConfig(courses, *courseName, *players)
	if err != nil {
		log.Fatal(err)
	}
	course := sessionCfg.Course

	m := game.NewManager(nil, nil, cfg, courses)
	res, err := game.Simulate(sessionCfg, m.ControllerOptions(), cfg.TickRate, *limit)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %d hole(s), par %d, %s simulated\n\n", course.Name, len(course.Holes), course.Par(), res.Elapsed.Round(time.Millisecond))
	header := []string{fmt.Sprintf("%-14s", "")}
	for i := range course.Holes {
		header = append(header, fmt.Sprintf("%3d", i+1))
	}
	fmt.Fprintln(os.Stdout, strings.Join(header, " ")+"  tot")
	for p, name := range res.Names {
		row := []string{fmt.Sprintf("%-14s", name)}
		for _, n := range res.Strokes[p] {
			row = append(row, fmt.Sprintf("%3d", n))
		}
		fmt.Fprintln(os.Stdout, strings.Join(row, " ")+fmt.Sprintf("  %3d", res.Totals[p]))
	}
}

func loadCourses(dir string) (*game.CourseRegistry, error) {
	courses := game.NewCourseRegistry()
	if err := courses.Register(game.StandardCourse()); err != nil {
		return nil, fmt.Errorf("built-in course invalid: %w", err)
	}
	if _, err := courses.LoadDir(dir); err != nil {
		log.Printf("[COURSE] Could not read %s: %v", dir, err)
	}
	return courses, nil
}

// sessionConfig goes through the lobby so the simulator accepts the full
// player range.
func sessionConfig(courses *game.CourseRegistry, course string, players int) (game.SessionConfig, error) {
	lobby := game.NewLobby(courses, course, game.MaxPlayers)
	if err := lobby.SelectCourse(course); err != nil {
		return game.SessionConfig{}, err
	}
	if err := lobby.SetPlayers(players); err != nil {
		return game.SessionConfig{}, err
	}
	return lobby.SessionConfig()
}
