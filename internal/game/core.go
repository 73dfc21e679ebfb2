package game

import (
	"fmt"
	"strings"
)

type Point3D struct{ X, Y, Z int }

func (p Point3D) IsZero() bool { return p == Point3D{} }

func (p Point3D) String() string { return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z) }

// InRange reports whether q lies within r tiles of p on the ground plane.
func (p Point3D) InRange(q Point3D, r int) bool {
	return abs(p.X-q.X) <= r && abs(p.Y-q.Y) <= r
}

// Zone is a map facet. ZoneNone means unset; ZoneInternal is the holding map
// nothing may travel to.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneFelucca
	ZoneTrammel
	ZoneIlshenar
	ZoneMalas
	ZoneTokuno
	ZoneInternal
)

var zoneNames = map[Zone]string{
	ZoneNone:     "none",
	ZoneFelucca:  "felucca",
	ZoneTrammel:  "trammel",
	ZoneIlshenar: "ilshenar",
	ZoneMalas:    "malas",
	ZoneTokuno:   "tokuno",
	ZoneInternal: "internal",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// ParseZone maps a zone name to its value; unknown names map to ZoneNone.
func ParseZone(name string) Zone {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for z, n := range zoneNames {
		if n == trimmed {
			return z
		}
	}
	return ZoneNone
}

// Hostile is the unrestricted PvP facet.
func (z Zone) Hostile() bool { return z == ZoneFelucca }

// Travelable reports whether a gate may lead into z.
func (z Zone) Travelable() bool { return z != ZoneNone && z != ZoneInternal }

// RequiredFlag is the client feature an actor needs to enter z.
func (z Zone) RequiredFlag() ClientFlags {
	switch z {
	case ZoneIlshenar:
		return ClientIlshenar
	case ZoneMalas:
		return ClientMalas
	case ZoneTokuno:
		return ClientTokuno
	}
	return 0
}

// mapIndex mirrors the facet index used by the game clock offsets.
func (z Zone) mapIndex() int {
	switch z {
	case ZoneFelucca:
		return 0
	case ZoneTrammel:
		return 1
	case ZoneIlshenar:
		return 2
	case ZoneMalas:
		return 3
	case ZoneTokuno:
		return 4
	}
	return 0
}

type Location struct {
	Point3D
	Zone Zone
}

func (l Location) String() string { return fmt.Sprintf("%s@%s", l.Point3D, l.Zone) }

// Leads reports whether l is a usable gate destination.
func (l Location) Leads() bool { return l.Zone.Travelable() && !l.Point3D.IsZero() }

type Color int

const (
	ColorBlue Color = iota
	ColorRed
	ColorBlack
	ColorSilver
)

var colorNames = [...]string{"blue", "red", "black", "silver"}

func (c Color) String() string {
	if c >= 0 && int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", int(c))
}

func ParseColor(name string) (Color, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for i, n := range colorNames {
		if n == trimmed {
			return Color(i), true
		}
	}
	return ColorBlue, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
