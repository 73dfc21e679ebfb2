// Package data loads the boot tables of the moongate world from YAML.
package data

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"Moongates/internal/game"

	"gopkg.in/yaml.v3"
)

//go:embed moongates.yaml
var defaultTable []byte

// GuardedRegion is an axis-aligned guarded rectangle, corners inclusive.
type GuardedRegion struct {
	Name string `yaml:"name"`
	Zone string `yaml:"zone"`
	X1   int    `yaml:"x1"`
	Y1   int    `yaml:"y1"`
	X2   int    `yaml:"x2"`
	Y2   int    `yaml:"y2"`
}

func (r GuardedRegion) contains(loc game.Location) bool {
	if game.ParseZone(r.Zone) != loc.Zone {
		return false
	}
	x1, x2 := minMax(r.X1, r.X2)
	y1, y2 := minMax(r.Y1, r.Y2)
	return loc.X >= x1 && loc.X <= x2 && loc.Y >= y1 && loc.Y <= y2
}

type Position struct {
	Zone string `yaml:"zone"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Z    int    `yaml:"z"`
}

func (p Position) Location() game.Location {
	return game.Location{Point3D: game.Point3D{X: p.X, Y: p.Y, Z: p.Z}, Zone: game.ParseZone(p.Zone)}
}

// GateSpawn is a gate created already open at boot.
type GateSpawn struct {
	Name        string   `yaml:"name"`
	Position    `yaml:",inline"`
	Destination Position `yaml:"destination"`
	Color       string   `yaml:"color"`
	Restricted  bool     `yaml:"restricted"`
	Dispellable bool     `yaml:"dispellable"`
	WarnHostile bool     `yaml:"warn_hostile"`
	OpenSeconds float64  `yaml:"open_seconds"`
	// TargetPhase makes the gate lead to a fixed phase circle.
	TargetPhase *int `yaml:"target_phase"`
}

type ControllerSpawn struct {
	Position `yaml:",inline"`
	Phase    int `yaml:"phase"`
}

// Table is the parsed boot data.
type Table struct {
	Regions      []GuardedRegion   `yaml:"guarded_regions"`
	PhaseNetwork bool              `yaml:"phase_network"`
	Controllers  []ControllerSpawn `yaml:"phase_controllers"`
	PublicGates  []Position        `yaml:"public_gates"`
	Gates        []GateSpawn       `yaml:"gates"`
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	t, err := Parse(defaultTable)
	if err != nil {
		return nil, fmt.Errorf("parse built-in moongate table: %w", err)
	}
	return t, nil
}

// Load reads a table from path; an empty path selects the built-in table.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read moongate table: %w", err)
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse moongate table %q: %w", path, err)
	}
	return t, nil
}

func Parse(raw []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	for i, c := range t.Controllers {
		if c.Phase < 0 || c.Phase >= game.PhaseCount {
			return nil, fmt.Errorf("phase_controllers[%d]: phase %d out of range", i, c.Phase)
		}
	}
	for i, g := range t.Gates {
		if g.Color != "" {
			if _, ok := game.ParseColor(g.Color); !ok {
				return nil, fmt.Errorf("gates[%d]: unknown color %q", i, g.Color)
			}
		}
	}
	return &t, nil
}

// IsGuarded implements game.Regions.
func (t *Table) IsGuarded(loc game.Location) bool {
	for _, r := range t.Regions {
		if r.contains(loc) {
			return true
		}
	}
	return false
}

// SpawnReport counts what Spawn placed.
type SpawnReport struct {
	Regen       game.RegenReport
	Controllers int
	PublicGates int
	Gates       int
}

// Spawn places the table's objects into an empty shard. The caller holds
// the shard lock.
func (t *Table) Spawn(s *game.Shard) (SpawnReport, error) {
	var report SpawnReport
	for _, p := range t.PublicGates {
		s.PlacePublicGate(p.Location())
		report.PublicGates++
	}
	if t.PhaseNetwork {
		report.Regen = s.RegenerateMoongates()
	}
	for i, c := range t.Controllers {
		if _, err := s.CreatePhaseController(c.Location(), c.Phase); err != nil {
			return report, fmt.Errorf("phase_controllers[%d]: %w", i, err)
		}
		report.Controllers++
	}
	for _, g := range t.Gates {
		s.CreateOpenGate(g.Location(), g.Options())
		report.Gates++
	}
	return report, nil
}

func (g GateSpawn) Options() game.GateOptions {
	color, _ := game.ParseColor(g.Color)
	opts := game.GateOptions{
		Destination:     g.Destination.Location(),
		Color:           color,
		Restricted:      g.Restricted,
		Dispellable:     g.Dispellable,
		WarnHostileZone: g.WarnHostile,
	}
	if g.OpenSeconds > 0 {
		opts.OpenDuration = time.Duration(g.OpenSeconds * float64(time.Second))
	}
	if g.TargetPhase != nil {
		opts.PhaseDestination = true
		opts.UseTargetPhase = true
		opts.TargetPhase = *g.TargetPhase
	}
	return opts
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
