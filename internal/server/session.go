package server

import (
	"strings"

	"Moongates/internal/game"

	"github.com/oklog/ulid/v2"
)

func newSessionID() string {
	return ulid.Make().String()
}

var accessNames = map[string]game.AccessLevel{
	"player":        game.AccessPlayer,
	"counselor":     game.AccessCounselor,
	"gamemaster":    game.AccessGameMaster,
	"seer":          game.AccessSeer,
	"administrator": game.AccessAdministrator,
}

var clientNames = map[string]game.ClientFlags{
	"ilshenar": game.ClientIlshenar,
	"malas":    game.ClientMalas,
	"tokuno":   game.ClientTokuno,
}

// session is a connected player. It implements game.Actor; every method is
// called with the shard lock held.
type session struct {
	hub     *Hub
	id      string
	loc     game.Location
	access  game.AccessLevel
	hidden  bool
	casting bool
	sigil   bool
	young   bool
	kills   int
	flags   game.ClientFlags
	pets    []*pet
	deleted bool

	pending []OutboundMessage
}

func newSession(h *Hub, id string, at game.Location) *session {
	return &session{hub: h, id: id, loc: at, flags: game.ClientAll}
}

func (s *session) queue(kind string, payload interface{}) {
	if s.deleted {
		return
	}
	s.pending = append(s.pending, OutboundMessage{Type: kind, Payload: payload})
}

// consume hands over queued messages to the writer.
func (s *session) consume() []OutboundMessage {
	out := s.pending
	s.pending = nil
	return out
}

func (s *session) applyProfile(p profileDTO) {
	if level, ok := accessNames[strings.ToLower(strings.TrimSpace(p.Access))]; ok {
		s.access = level
	}
	s.hidden = p.Hidden
	s.casting = p.Casting
	s.sigil = p.Sigil
	s.young = p.Young
	s.kills = p.Kills
	if p.Clients != nil {
		s.flags = 0
		for _, name := range p.Clients {
			s.flags |= clientNames[strings.ToLower(strings.TrimSpace(name))]
		}
	}
	if p.Pets < 0 {
		p.Pets = 0
	}
	for len(s.pets) < p.Pets {
		s.pets = append(s.pets, &pet{loc: s.loc})
	}
	s.pets = s.pets[:p.Pets]
}

func (s *session) ID() string                    { return s.id }
func (s *session) IsPlayer() bool                { return true }
func (s *session) AccessLevel() game.AccessLevel { return s.access }
func (s *session) Hidden() bool                  { return s.hidden }
func (s *session) Deleted() bool                 { return s.deleted }
func (s *session) Location() game.Location       { return s.loc }
func (s *session) IsCasting() bool               { return s.casting }
func (s *session) CarriesSigil() bool            { return s.sigil }
func (s *session) Kills() int                    { return s.kills }
func (s *session) Young() bool                   { return s.young }
func (s *session) ClientFlags() game.ClientFlags { return s.flags }

func (s *session) Reveal() {
	if !s.hidden {
		return
	}
	s.hidden = false
	s.queue("message", messageDTO{Text: "You have been revealed!"})
}

func (s *session) Pets() []game.Follower {
	out := make([]game.Follower, 0, len(s.pets))
	for _, p := range s.pets {
		out = append(out, p)
	}
	return out
}

func (s *session) MoveTo(loc game.Location) {
	zoneChanged := loc.Zone != s.loc.Zone
	s.loc = loc
	s.queue("moved", positionFrom(loc))
	if zoneChanged && s.hub != nil {
		s.queue("welcome", welcomeFor(s.hub.Shard, s))
	}
}

func (s *session) PlaySound(id int) {
	s.queue("sound", soundDTO{ID: id})
}

func (s *session) SendMessage(msg game.Message) {
	s.queue("message", messageDTO{Cliloc: msg.Cliloc, Text: msg.Text})
}

func (s *session) ShowConfirmation(prompt game.ConfirmPrompt) {
	s.queue("confirm", confirmPromptDTO{
		Gate:        int64(prompt.Gate),
		Destination: positionFrom(prompt.Destination),
		Town:        game.SiteTown(prompt.Destination.Point3D),
		Hostile:     prompt.HostileZone,
	})
}

// pet follows its session through gates.
type pet struct {
	loc game.Location
}

func (p *pet) Deleted() bool            { return false }
func (p *pet) MoveTo(loc game.Location) { p.loc = loc }
