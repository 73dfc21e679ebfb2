package game

import (
	"math"
	"time"
)

// Cycle names one of the independent moon cycles.
type Cycle int

const (
	// CycleTrammel picks which phase gate is open.
	CycleTrammel Cycle = iota
	// CycleFelucca picks where an open phase gate leads.
	CycleFelucca
)

func (c Cycle) String() string {
	if c == CycleFelucca {
		return "felucca"
	}
	return "trammel"
}

func (c Cycle) zone() Zone {
	if c == CycleFelucca {
		return ZoneFelucca
	}
	return ZoneTrammel
}

// PhaseClock supplies the moon phase seen from a world position.
type PhaseClock interface {
	CurrentPhase(c Cycle, at Point3D) int
	TimeUntilNextPhaseChange(c Cycle, at Point3D) time.Duration
}

// GameClock derives game time from the wall clock. One game minute lasts
// SecondsPerMinute real seconds; each map is offset by 320 minutes and each
// 16 tiles east adds a minute, so distant gates see boundaries slightly apart.
// A cycle advances one phase every 10 + 20*mapIndex game minutes.
type GameClock struct {
	Epoch            time.Time
	SecondsPerMinute float64
	Now              func() time.Time
}

func NewGameClock(epoch time.Time, secondsPerMinute float64) *GameClock {
	if secondsPerMinute <= 0 {
		secondsPerMinute = 5
	}
	return &GameClock{Epoch: epoch, SecondsPerMinute: secondsPerMinute, Now: time.Now}
}

func (c *GameClock) totalMinutes(z Zone, at Point3D) float64 {
	elapsed := c.Now().Sub(c.Epoch).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := elapsed / c.SecondsPerMinute
	minutes += float64(z.mapIndex() * 320)
	minutes += float64(at.X / 16)
	return minutes
}

func cycleWindow(c Cycle) float64 {
	return float64(10 + c.zone().mapIndex()*20)
}

func (c *GameClock) CurrentPhase(cycle Cycle, at Point3D) int {
	minutes := c.totalMinutes(cycle.zone(), at)
	return int(math.Floor(minutes/cycleWindow(cycle))) % PhaseCount
}

func (c *GameClock) TimeUntilNextPhaseChange(cycle Cycle, at Point3D) time.Duration {
	window := cycleWindow(cycle)
	minutes := c.totalMinutes(cycle.zone(), at)
	left := window - math.Mod(minutes, window)
	return time.Duration(left * c.SecondsPerMinute * float64(time.Second))
}

var phaseNames = [PhaseCount]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

func PhaseName(phase int) string {
	if phase < 0 || phase >= PhaseCount {
		return "Unknown phase"
	}
	return phaseNames[phase]
}

// PhaseSite is the moongate circle tied to a phase.
type PhaseSite struct {
	Town  string
	Point Point3D
}

var phaseSites = [PhaseCount]PhaseSite{
	{Town: "Moonglow", Point: Point3D{4467, 1283, 5}},
	{Town: "Britain", Point: Point3D{1336, 1997, 5}},
	{Town: "Jhelom", Point: Point3D{1499, 3771, 5}},
	{Town: "Yew", Point: Point3D{771, 752, 5}},
	{Town: "Minoc", Point: Point3D{2701, 692, 5}},
	{Town: "Trinsic", Point: Point3D{1828, 2948, -20}},
	{Town: "Skara Brae", Point: Point3D{643, 2067, 5}},
	{Town: "Magincia", Point: Point3D{3563, 2139, 31}},
}

// PhaseDestination returns the moongate circle for phase, or the zero point.
func PhaseDestination(phase int) Point3D {
	if phase < 0 || phase >= PhaseCount {
		return Point3D{}
	}
	return phaseSites[phase].Point
}

func PhaseTown(phase int) string {
	if phase < 0 || phase >= PhaseCount {
		return ""
	}
	return phaseSites[phase].Town
}

// phaseAt returns the phase whose circle is at p, or -1.
func phaseAt(p Point3D) int {
	for i, site := range phaseSites {
		if site.Point == p {
			return i
		}
	}
	return -1
}
