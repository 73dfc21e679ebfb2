package game

import (
	"time"

	"go.uber.org/zap"
)

// GateOptions configures a new gate manager.
type GateOptions struct {
	Destination  Location
	OpenDuration time.Duration // 0 keeps the gate open until deleted
	Color        Color
	Dispellable  bool
	Restricted   bool
	ReturnGate   bool
	// WarnHostileZone asks for confirmation before entering the hostile zone.
	WarnHostileZone bool
	// PhaseDestination makes the gate lead to a phase circle on its own map:
	// TargetPhase when UseTargetPhase is set, otherwise the current Felucca phase.
	PhaseDestination bool
	UseTargetPhase   bool
	TargetPhase      int
}

// GateManager is the long-lived part of a moongate. The visible part is the
// single GateFrame referenced by current.
type GateManager struct {
	ID EntityID
	GateOptions

	open       bool
	current    EntityID
	timer      *Timer
	controller EntityID
	deleted    bool
}

func (g *GateManager) IsOpen() bool { return g.open }

// CurrentFrame is the frame now representing the gate, 0 between frames.
func (g *GateManager) CurrentFrame() EntityID { return g.current }

// Controller is the phase controller owning the gate, 0 for free gates.
func (g *GateManager) Controller() EntityID { return g.controller }

func (g *GateManager) fixedPhase() bool {
	return g.UseTargetPhase && g.TargetPhase >= 0 && g.TargetPhase < PhaseCount
}

func gateName(opts GateOptions) string {
	if opts.PhaseDestination {
		return "Manager for an Ultima IV-style moongate."
	}
	return "Manager for an UltimaMoongate."
}

// CreateGate places a gate manager at loc and starts its rise.
func (s *Shard) CreateGate(at Location, opts GateOptions) EntityID {
	g := s.newGate(at, opts)
	s.openGate(g)
	return g.ID
}

// CreateOpenGate places a gate manager whose frame starts fully open, the
// way a gate resumes after a reload.
func (s *Shard) CreateOpenGate(at Location, opts GateOptions) EntityID {
	g := s.newGate(at, opts)
	s.spawnFrame(g, frameState{Index: OpenFrame, Direction: Rising})
	return g.ID
}

func (s *Shard) newGate(at Location, opts GateOptions) *GateManager {
	if opts.OpenDuration < 0 {
		opts.OpenDuration = 0
	}
	id := s.World.Spawn(at, gateName(opts))
	g := &GateManager{ID: id, GateOptions: opts}
	s.World.SetComponent(id, CompGate, g)
	s.Index.Add(IndexGate, id, at)
	s.Log.Debug("gate created",
		zap.Int64("gate", int64(id)),
		zap.Stringer("at", at),
		zap.Stringer("color", opts.Color),
		zap.Duration("open", opts.OpenDuration),
	)
	return g
}

// openGate arms the first rising tick.
func (s *Shard) openGate(g *GateManager) {
	id := g.ID
	g.timer.Stop()
	g.timer = s.Scheduler.After(s.Timing.Tick, s.alive(id), func() {
		s.gateOpenTick(id)
	})
}

func (s *Shard) gateOpenTick(id EntityID) {
	g := s.World.Gate(id)
	if g == nil || g.deleted {
		return
	}
	g.timer = nil
	if g.ReturnGate {
		s.spawnReturnGate(g)
	}
	s.spawnFrame(g, frameState{Index: 0, Direction: Rising})
}

func (s *Shard) spawnReturnGate(g *GateManager) {
	origin := s.World.Location(g.ID)
	if origin == nil || !g.Destination.Leads() {
		return
	}
	opts := g.GateOptions
	opts.Destination = *origin
	opts.ReturnGate = false
	ret := s.CreateGate(g.Destination, opts)
	s.Log.Debug("return gate spawned",
		zap.Int64("gate", int64(g.ID)),
		zap.Int64("return", int64(ret)),
	)
}

// DeleteGate removes a gate manager and its current frame. Calling it again,
// or on an id that is not a gate, does nothing.
func (s *Shard) DeleteGate(id EntityID) {
	g := s.World.Gate(id)
	if g == nil || g.deleted {
		return
	}
	g.deleted = true
	g.open = false
	g.timer.Stop()
	g.timer = nil
	if g.current != 0 {
		s.deleteFrame(g.current)
	}
	for actor, gate := range s.pending {
		if gate == id {
			delete(s.pending, actor)
		}
	}
	if c := s.World.Controller(g.controller); c != nil && c.managed == id {
		c.managed = 0
	}
	s.Index.Remove(id)
	s.World.RemoveEntity(id)
	s.Log.Debug("gate deleted", zap.Int64("gate", int64(id)))
}

// Dispel removes a dispellable gate and reports whether it did.
func (s *Shard) Dispel(id EntityID) bool {
	g := s.World.Gate(id)
	if g == nil || !g.Dispellable {
		return false
	}
	s.DeleteGate(id)
	return true
}

// Gates returns the ids of every live gate manager.
func (s *Shard) Gates() []EntityID {
	var ids []EntityID
	s.World.ForEach([]ComponentKey{CompGate}, func(id EntityID) {
		ids = append(ids, id)
	})
	sortIDs(ids)
	return ids
}

// destination resolves where the gate leads right now.
func (s *Shard) destination(g *GateManager) Location {
	if !g.PhaseDestination {
		return g.Destination
	}
	here := s.World.Location(g.ID)
	if here == nil {
		return Location{}
	}
	phase := g.TargetPhase
	if !g.fixedPhase() {
		if s.Clock == nil {
			return Location{}
		}
		phase = s.Clock.CurrentPhase(CycleFelucca, here.Point3D)
	}
	return Location{Point3D: PhaseDestination(phase), Zone: here.Zone}
}
