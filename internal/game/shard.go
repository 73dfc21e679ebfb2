package game

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timing holds the tunable delays of the gate subsystem.
type Timing struct {
	Tick             time.Duration
	ConfirmDelay     time.Duration
	ControllerWarmup time.Duration
	OpenThreshold    time.Duration
	SafetyMargin     time.Duration
	MinRearm         time.Duration
	MurderThreshold  int
}

func DefaultTiming() Timing {
	return Timing{
		Tick:             TickInterval,
		ConfirmDelay:     ConfirmDelay,
		ControllerWarmup: ControllerWarmup,
		OpenThreshold:    OpenThreshold,
		SafetyMargin:     SafetyMargin,
		MinRearm:         MinRearm,
		MurderThreshold:  MurderThreshold,
	}
}

func sanitizeTiming(t Timing) Timing {
	d := DefaultTiming()
	if t.Tick <= 0 {
		t.Tick = d.Tick
	}
	if t.ConfirmDelay < 0 {
		t.ConfirmDelay = d.ConfirmDelay
	}
	if t.ControllerWarmup <= 0 {
		t.ControllerWarmup = d.ControllerWarmup
	}
	if t.OpenThreshold < 0 {
		t.OpenThreshold = d.OpenThreshold
	}
	if t.SafetyMargin < 0 {
		t.SafetyMargin = d.SafetyMargin
	}
	if t.MinRearm <= 0 {
		t.MinRearm = d.MinRearm
	}
	if t.MurderThreshold <= 0 {
		t.MurderThreshold = d.MurderThreshold
	}
	return t
}

// Shard is one scheduling domain: every timer of every gate it holds fires
// from Tick, one at a time. Methods other than Tick expect the caller to
// hold Mu when the shard is shared between goroutines.
type Shard struct {
	Mu        sync.Mutex
	World     *World
	Scheduler *Scheduler
	Index     *GateIndex
	Clock     PhaseClock
	Regions   Regions
	Hook      TraversalHook
	Observer  Observer
	Log       *zap.Logger
	Timing    Timing

	// RestoreOpenEnded keeps gates without an open duration across reloads.
	RestoreOpenEnded bool

	pending map[string]EntityID
}

func NewShard(clock PhaseClock, log *zap.Logger) *Shard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shard{
		World:     NewWorld(),
		Scheduler: NewScheduler(),
		Index:     NewGateIndex(),
		Clock:     clock,
		Regions:   noRegions{},
		Log:       log,
		Timing:    DefaultTiming(),
		pending:   make(map[string]EntityID),
	}
}

// SetTiming replaces the shard delays, filling unset values with defaults.
func (s *Shard) SetTiming(t Timing) {
	s.Timing = sanitizeTiming(t)
}

// Tick advances the shard clock by dt and runs every timer that came due.
func (s *Shard) Tick(dt time.Duration) int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Scheduler.Advance(dt)
}

// Now is the shard's virtual time.
func (s *Shard) Now() time.Duration {
	return s.Scheduler.Now()
}

func (s *Shard) alive(id EntityID) func() bool {
	return func() bool { return s.World.Exists(id) }
}

func (s *Shard) emitCreated(view ObjectView) {
	if s.Observer != nil && view.Visible {
		s.Observer.ObjectCreated(view)
	}
}

func (s *Shard) emitDeleted(id EntityID, loc Location, visible bool) {
	if s.Observer != nil && visible {
		s.Observer.ObjectDeleted(id, loc)
	}
}

// Objects lists the visible objects in zone, for clients that just joined.
func (s *Shard) Objects(zone Zone) []ObjectView {
	var views []ObjectView
	s.World.ForEach([]ComponentKey{CompFrame, CompLocation}, func(id EntityID) {
		if loc := s.World.Location(id); loc != nil && loc.Zone == zone {
			views = append(views, s.frameView(id))
		}
	})
	s.World.ForEach([]ComponentKey{CompPublicGate, CompLocation}, func(id EntityID) {
		if loc := s.World.Location(id); loc != nil && loc.Zone == zone {
			views = append(views, s.publicGateView(id))
		}
	})
	return views
}

// Delete removes any gate-subsystem object by id. Unknown or already
// deleted ids are ignored.
func (s *Shard) Delete(id EntityID) {
	switch {
	case s.World.Gate(id) != nil:
		s.DeleteGate(id)
	case s.World.Frame(id) != nil:
		// The current frame carries its gate; removing it removes the gate.
		if g := s.World.Gate(s.World.Frame(id).Owner); g != nil && g.current == id {
			s.DeleteGate(g.ID)
			return
		}
		s.deleteFrame(id)
	case s.World.Controller(id) != nil:
		s.DeleteController(id)
	case s.World.PublicGate(id) != nil:
		s.DeletePublicGate(id)
	}
}
