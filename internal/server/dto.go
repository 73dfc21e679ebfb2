package server

import (
	"Moongates/internal/game"
)

type positionDTO struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	Zone string `json:"zone"`
}

func positionFrom(loc game.Location) positionDTO {
	return positionDTO{X: loc.X, Y: loc.Y, Z: loc.Z, Zone: loc.Zone.String()}
}

func (p positionDTO) location() game.Location {
	return game.Location{Point3D: game.Point3D{X: p.X, Y: p.Y, Z: p.Z}, Zone: game.ParseZone(p.Zone)}
}

type objectDTO struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Asset int         `json:"asset"`
	Pos   positionDTO `json:"pos"`
	Lit   bool        `json:"lit"`
}

func objectFrom(view game.ObjectView) objectDTO {
	return objectDTO{
		ID:    int64(view.ID),
		Name:  view.Name,
		Asset: view.Asset,
		Pos:   positionFrom(view.Location),
		Lit:   view.Lit,
	}
}

type objectRemovedDTO struct {
	ID int64 `json:"id"`
}

type welcomeDTO struct {
	ID      string      `json:"id"`
	Pos     positionDTO `json:"pos"`
	Objects []objectDTO `json:"objects"`
}

type messageDTO struct {
	Cliloc int    `json:"cliloc,omitempty"`
	Text   string `json:"text"`
}

type soundDTO struct {
	ID int `json:"id"`
}

type confirmPromptDTO struct {
	Gate        int64       `json:"gate"`
	Destination positionDTO `json:"destination"`
	Town        string      `json:"town,omitempty"`
	Hostile     bool        `json:"hostile"`
}

type resultDTO struct {
	Action string `json:"action"`
	Result string `json:"result"`
}

// inbound payloads

type moveDTO struct {
	Pos positionDTO `json:"pos"`
}

type useDTO struct {
	ID int64 `json:"id"`
}

type confirmDTO struct {
	Gate   int64 `json:"gate"`
	Accept bool  `json:"accept"`
}

// profileDTO lets a test client pose as any kind of character. Only
// honoured when the hub has DebugProfiles set.
type profileDTO struct {
	Access  string   `json:"access"`
	Hidden  bool     `json:"hidden"`
	Casting bool     `json:"casting"`
	Sigil   bool     `json:"sigil"`
	Young   bool     `json:"young"`
	Kills   int      `json:"kills"`
	Clients []string `json:"clients"`
	Pets    int      `json:"pets"`
}

type createGateDTO struct {
	Destination  positionDTO `json:"destination"`
	OpenSeconds  float64     `json:"open_seconds"`
	Color        string      `json:"color"`
	Restricted   bool        `json:"restricted"`
	Dispellable  bool        `json:"dispellable"`
	ReturnGate   bool        `json:"return_gate"`
	WarnHostile  bool        `json:"warn_hostile"`
	PhaseGate    bool        `json:"phase_gate"`
	TargetPhase  *int        `json:"target_phase,omitempty"`
	Controller   bool        `json:"controller"`
	OpensAtPhase int         `json:"opens_at_phase"`
}

type gateCreatedDTO struct {
	ID int64 `json:"id"`
}

type dispelDTO struct {
	ID int64 `json:"id"`
}
