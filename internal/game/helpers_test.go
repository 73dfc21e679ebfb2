package game

import (
	"testing"
	"time"
)

type fakeClock struct {
	phase     map[Cycle]int
	remaining map[Cycle]time.Duration
}

func newFakeClock(trammelPhase int, remaining time.Duration) *fakeClock {
	return &fakeClock{
		phase:     map[Cycle]int{CycleTrammel: trammelPhase, CycleFelucca: 0},
		remaining: map[Cycle]time.Duration{CycleTrammel: remaining, CycleFelucca: remaining},
	}
}

func (c *fakeClock) CurrentPhase(cycle Cycle, _ Point3D) int { return c.phase[cycle] }

func (c *fakeClock) TimeUntilNextPhaseChange(cycle Cycle, _ Point3D) time.Duration {
	return c.remaining[cycle]
}

type fakePet struct {
	log   *[]string
	loc   Location
	moved int
}

func (p *fakePet) Deleted() bool { return false }
func (p *fakePet) MoveTo(loc Location) {
	p.loc = loc
	p.moved++
	if p.log != nil {
		*p.log = append(*p.log, "pet")
	}
}

type fakeActor struct {
	id      string
	player  bool
	access  AccessLevel
	hidden  bool
	deleted bool
	casting bool
	sigil   bool
	young   bool
	kills   int
	flags   ClientFlags
	loc     Location
	pets    []*fakePet

	order    []string
	moves    []Location
	sounds   []int
	messages []Message
	prompts  []ConfirmPrompt
	reveals  int
}

func newPlayer(at Location) *fakeActor {
	return &fakeActor{id: "player-1", player: true, flags: ClientAll, loc: at}
}

func (a *fakeActor) ID() string               { return a.id }
func (a *fakeActor) IsPlayer() bool           { return a.player }
func (a *fakeActor) AccessLevel() AccessLevel { return a.access }
func (a *fakeActor) Hidden() bool             { return a.hidden }
func (a *fakeActor) Reveal() {
	a.hidden = false
	a.reveals++
}
func (a *fakeActor) Deleted() bool            { return a.deleted }
func (a *fakeActor) Location() Location       { return a.loc }
func (a *fakeActor) IsCasting() bool          { return a.casting }
func (a *fakeActor) CarriesSigil() bool       { return a.sigil }
func (a *fakeActor) Kills() int               { return a.kills }
func (a *fakeActor) Young() bool              { return a.young }
func (a *fakeActor) ClientFlags() ClientFlags { return a.flags }
func (a *fakeActor) Pets() []Follower {
	out := make([]Follower, 0, len(a.pets))
	for _, p := range a.pets {
		out = append(out, p)
	}
	return out
}
func (a *fakeActor) MoveTo(loc Location) {
	a.loc = loc
	a.moves = append(a.moves, loc)
	a.order = append(a.order, "actor")
}
func (a *fakeActor) PlaySound(id int)          { a.sounds = append(a.sounds, id) }
func (a *fakeActor) SendMessage(msg Message)   { a.messages = append(a.messages, msg) }
func (a *fakeActor) ShowConfirmation(p ConfirmPrompt) {
	a.prompts = append(a.prompts, p)
}

func (a *fakeActor) lastCliloc() int {
	if len(a.messages) == 0 {
		return 0
	}
	return a.messages[len(a.messages)-1].Cliloc
}

type recordingHook struct {
	events []TraversalEvent
}

func (h *recordingHook) OnTraversal(ev TraversalEvent) { h.events = append(h.events, ev) }

type guardedSet map[Location]bool

func (g guardedSet) IsGuarded(loc Location) bool { return g[loc] }

type recordingObserver struct {
	world   *World
	created []ObjectView
	deleted []EntityID
	// framesAtCreate is how many frames existed when each frame appeared.
	framesAtCreate []int
}

func (o *recordingObserver) ObjectCreated(view ObjectView) {
	o.created = append(o.created, view)
	if o.world != nil {
		o.framesAtCreate = append(o.framesAtCreate, o.world.Count(CompFrame))
	}
}

func (o *recordingObserver) ObjectDeleted(id EntityID, _ Location) {
	o.deleted = append(o.deleted, id)
}

var (
	britainTram = Location{Point3D: Point3D{1336, 1997, 5}, Zone: ZoneTrammel}
	elsewhere   = Location{Point3D: Point3D{100, 200, 0}, Zone: ZoneTrammel}
)

func newTestShard(t *testing.T) *Shard {
	t.Helper()
	return NewShard(newFakeClock(0, 100*time.Second), nil)
}

// frameIndex returns the index of the gate's current frame, or -1.
func frameIndex(s *Shard, gate EntityID) int {
	g := s.World.Gate(gate)
	if g == nil {
		return -1
	}
	f := s.World.Frame(g.CurrentFrame())
	if f == nil {
		return -1
	}
	return f.Index
}

// riseTime is how long a fresh gate takes to show its open frame.
const riseTime = FrameCount * TickInterval
