package game

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// EndZone is the trigger volume at the end of a hole. The host engine matches
// triggers by ID; the local world uses the centre and radius.
type EndZone struct {
	ID     string  `json:"id" yaml:"id"`
	Center Vec3    `json:"center" yaml:"center"`
	Radius float64 `json:"radius" yaml:"radius"`
}

// Contains reports whether p lies inside the zone, ignoring height.
func (z EndZone) Contains(p Vec3) bool {
	if z.Radius <= 0 {
		return false
	}
	return p.Horizontal().DistanceTo(z.Center.Horizontal()) <= z.Radius
}

// Bounds is an axis-aligned playable area. The zero value means unbounded.
type Bounds struct {
	Min Vec3 `json:"min" yaml:"min"`
	Max Vec3 `json:"max" yaml:"max"`
}

func (b Bounds) IsZero() bool {
	return b.Min.IsZero() && b.Max.IsZero()
}

// Contains checks the horizontal extent only.
func (b Bounds) Contains(p Vec3) bool {
	if b.IsZero() {
		return true
	}
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Hole is one course segment.
type Hole struct {
	Number         int     `json:"number" yaml:"number"`
	Par            int     `json:"par" yaml:"par"`
	Start          Vec3    `json:"start" yaml:"start"`
	StartDirection Vec3    `json:"start_direction" yaml:"start_direction"` // point the ball aims at
	EndZone        EndZone `json:"end_zone" yaml:"end_zone"`
	Bounds         Bounds  `json:"bounds" yaml:"bounds"`
}

// Course is an ordered sequence of holes. Immutable after load.
type Course struct {
	Name  string `json:"name" yaml:"name"`
	Scene string `json:"scene" yaml:"scene"`
	Holes []Hole `json:"holes" yaml:"holes"`
}

// Par returns the sum of hole pars.
func (c *Course) Par() int {
	total := 0
	for _, h := range c.Holes {
		total += h.Par
	}
	return total
}

// Validate checks hole count and that every hole has a start pose and an end zone.
func (c *Course) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: course name is required", ErrInvalidConfiguration)
	}
	if len(c.Holes) < MinHoles || len(c.Holes) > MaxHoles {
		return fmt.Errorf("%w: course %q has %d holes, allowed range %d-%d",
			ErrInvalidConfiguration, c.Name, len(c.Holes), MinHoles, MaxHoles)
	}
	zones := make(map[string]bool, len(c.Holes))
	for i, h := range c.Holes {
		if h.StartDirection.Minus(h.Start).Horizontal().IsZero() {
			return fmt.Errorf("%w: course %q hole %d start direction must differ from start",
				ErrInvalidConfiguration, c.Name, i+1)
		}
		if h.EndZone.ID == "" {
			return fmt.Errorf("%w: course %q hole %d has no end zone", ErrInvalidConfiguration, c.Name, i+1)
		}
		if zones[h.EndZone.ID] {
			return fmt.Errorf("%w: course %q reuses end zone %q", ErrInvalidConfiguration, c.Name, h.EndZone.ID)
		}
		zones[h.EndZone.ID] = true
	}
	return nil
}

func (c *Course) normalize() {
	if c.Scene == "" {
		c.Scene = c.Name
	}
	for i := range c.Holes {
		if c.Holes[i].Number == 0 {
			c.Holes[i].Number = i + 1
		}
		if c.Holes[i].Par == 0 {
			c.Holes[i].Par = 3
		}
	}
}

// ParseCourse decodes a YAML course definition.
func ParseCourse(data []byte) (*Course, error) {
	var c Course
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// StandardCourse is the built-in three-hole practice course, laid out along +Z.
func StandardCourse() *Course {
	c := &Course{
		Name:  "classic",
		Scene: "ClassicCourse",
		Holes: []Hole{
			{
				Par:            2,
				Start:          NewVec3(0, 0, 0),
				StartDirection: NewVec3(0, 0, 1),
				EndZone:        EndZone{ID: "classic-1-cup", Center: NewVec3(0, 0, 4), Radius: 0.11},
				Bounds:         Bounds{Min: NewVec3(-1, 0, -1), Max: NewVec3(1, 0, 5)},
			},
			{
				Par:            3,
				Start:          NewVec3(10, 0, 0),
				StartDirection: NewVec3(11, 0, 1),
				EndZone:        EndZone{ID: "classic-2-cup", Center: NewVec3(13, 0, 3), Radius: 0.11},
				Bounds:         Bounds{Min: NewVec3(9, 0, -1), Max: NewVec3(14, 0, 4)},
			},
			{
				Par:            3,
				Start:          NewVec3(20, 0, 0),
				StartDirection: NewVec3(20, 0, -1),
				EndZone:        EndZone{ID: "classic-3-cup", Center: NewVec3(20, 0, -6), Radius: 0.11},
				Bounds:         Bounds{Min: NewVec3(19, 0, -7), Max: NewVec3(21, 0, 1)},
			},
		},
	}
	c.normalize()
	return c
}

// CourseRegistry holds the courses a lobby can select.
type CourseRegistry struct {
	courses map[string]*Course
	mu      sync.RWMutex
}

func NewCourseRegistry() *CourseRegistry {
	return &CourseRegistry{courses: make(map[string]*Course)}
}

// Register validates and adds a course, replacing any course with the same name.
func (r *CourseRegistry) Register(c *Course) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.Name] = c
	return nil
}

// Get looks a course up by name.
func (r *CourseRegistry) Get(name string) (*Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.courses[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, name)
	}
	return c, nil
}

// Names lists registered courses alphabetically.
func (r *CourseRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.courses))
	for n := range r.courses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadDir registers every *.yaml / *.yml course in dir. Files that fail to parse
// are logged and skipped. Returns the number of courses loaded.
func (r *CourseRegistry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[COURSE] Failed to read %s: %v", path, err)
			continue
		}
		c, err := ParseCourse(data)
		if err != nil {
			log.Printf("[COURSE] Skipping %s: %v", path, err)
			continue
		}
		if err := r.Register(c); err != nil {
			log.Printf("[COURSE] Skipping %s: %v", path, err)
			continue
		}
		log.Printf("[COURSE] Loaded %q (%d holes) from %s", c.Name, len(c.Holes), path)
		loaded++
	}
	return loaded, nil
}
