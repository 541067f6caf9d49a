package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validCourseYAML = `
name: garden
holes:
  - start: {x: 0, y: 0, z: 0}
    start_direction: {x: 0, y: 0, z: 1}
    end_zone: {id: garden-1, center: {x: 0, y: 0, z: 2}, radius: 0.1}
  - par: 4
    start: {x: 5, y: 0, z: 0}
    start_direction: {x: 6, y: 0, z: 0}
    end_zone: {id: garden-2, center: {x: 9, y: 0, z: 0}, radius: 0.1}
`

func TestParseCourse(t *testing.T) {
	c, err := ParseCourse([]byte(validCourseYAML))
	if err != nil {
		t.Fatal(err)
	}
	if c.Scene != "garden" || c.Holes[0].Number != 1 || c.Holes[1].Number != 2 {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.Par() != 7 {
		t.Errorf("Par = %d, want 3 (default) + 4", c.Par())
	}
}

func TestParseCourseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "name: [unclosed"},
		{"no name", "holes:\n  - end_zone: {id: a}\n    start_direction: {x: 1}"},
		{"no holes", "name: empty"},
		{"no end zone", "name: x\nholes:\n  - start_direction: {x: 1}"},
		{"start direction equals start", "name: x\nholes:\n  - end_zone: {id: a}"},
		{"duplicate zone", "name: x\nholes:\n  - end_zone: {id: a}\n    start_direction: {x: 1}\n  - end_zone: {id: a}\n    start_direction: {x: 1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCourse([]byte(tt.yaml)); !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestCourseRegistryLoadDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "garden.yaml"), []byte(validCourseYAML), 0o644)
	os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [x"), 0o644)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o644)

	r := NewCourseRegistry()
	r.Register(StandardCourse())
	n, err := r.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("loaded %d, want 1", n)
	}
	if names := r.Names(); len(names) != 2 || names[0] != "classic" || names[1] != "garden" {
		t.Errorf("Names = %v", names)
	}
	if _, err := r.Get("broken"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("Get(broken) = %v", err)
	}
	if _, err := r.LoadDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("LoadDir on missing dir succeeded")
	}
}

func TestShippedCoursesLoad(t *testing.T) {
	r := NewCourseRegistry()
	n, err := r.LoadDir(filepath.Join("..", "..", "courses"))
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("no course files loaded")
	}
	if _, err := r.Get("riverside"); err != nil {
		t.Error(err)
	}
}

func TestEndZoneAndBounds(t *testing.T) {
	z := EndZone{ID: "cup", Center: NewVec3(0, 0, 4), Radius: 0.11}
	if !z.Contains(NewVec3(0.1, 5, 4)) {
		t.Error("height should be ignored")
	}
	if z.Contains(NewVec3(0, 0, 4.2)) {
		t.Error("point outside radius contained")
	}
	if (EndZone{ID: "flat"}).Contains(Vec3{}) {
		t.Error("zero radius zone contains a point")
	}

	var open Bounds
	if !open.Contains(NewVec3(1e6, 0, -1e6)) {
		t.Error("zero bounds should be unbounded")
	}
	b := Bounds{Min: NewVec3(-1, 0, -1), Max: NewVec3(1, 0, 5)}
	if b.Contains(NewVec3(2, 0, 0)) || !b.Contains(NewVec3(0, 9, 0)) {
		t.Error("bounds check wrong")
	}
}
