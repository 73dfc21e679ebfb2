package game

import (
	"fmt"

	"go.uber.org/zap"
)

type ControllerState int

const (
	ControllerDormant ControllerState = iota
	ControllerManaging
)

func (c ControllerState) String() string {
	if c == ControllerManaging {
		return "managing"
	}
	return "dormant"
}

// PhaseGateController opens a gate at its own location while the Trammel
// cycle shows Phase. It is invisible to players.
type PhaseGateController struct {
	ID    EntityID
	Phase int

	managed EntityID
	timer   *Timer
	resumed bool
	deleted bool
}

// Managed is the gate the controller currently owns, 0 when dormant.
func (c *PhaseGateController) Managed() EntityID { return c.managed }

func (c *PhaseGateController) State() ControllerState {
	if c.managed != 0 {
		return ControllerManaging
	}
	return ControllerDormant
}

func controllerName(phase int) string {
	return "An Ultima IV-style moongate opening at " + PhaseName(phase)
}

// CreatePhaseController places a controller for phase at loc. Its first
// evaluation runs after the warmup delay.
func (s *Shard) CreatePhaseController(at Location, phase int) (EntityID, error) {
	if phase < 0 || phase >= PhaseCount {
		return 0, fmt.Errorf("phase %d out of range 0..%d", phase, PhaseCount-1)
	}
	return s.newController(at, phase, false).ID, nil
}

func (s *Shard) newController(at Location, phase int, resumed bool) *PhaseGateController {
	id := s.World.Spawn(at, controllerName(phase))
	c := &PhaseGateController{ID: id, Phase: phase, resumed: resumed}
	s.World.SetComponent(id, CompController, c)
	s.Index.Add(IndexController, id, at)
	c.timer = s.Scheduler.After(s.Timing.ControllerWarmup, s.alive(id), func() {
		s.evaluateController(id)
	})
	return c
}

// evaluateController opens the managed gate when the clock enters the
// controller's phase, then re-arms for the next phase change.
func (s *Shard) evaluateController(id EntityID) {
	c := s.World.Controller(id)
	if c == nil || c.deleted {
		return
	}
	c.timer = nil
	here := s.World.Location(id)
	if here == nil || s.Clock == nil {
		return
	}
	remaining := s.Clock.TimeUntilNextPhaseChange(CycleTrammel, here.Point3D)
	phase := s.Clock.CurrentPhase(CycleTrammel, here.Point3D)

	if c.managed != 0 && s.World.Gate(c.managed) == nil {
		c.managed = 0
	}
	if remaining > s.Timing.OpenThreshold && phase == c.Phase && c.managed == 0 {
		opts := GateOptions{
			OpenDuration:     remaining - s.Timing.SafetyMargin,
			Color:            ColorBlue,
			PhaseDestination: true,
		}
		var gid EntityID
		if c.resumed {
			gid = s.CreateOpenGate(*here, opts)
		} else {
			gid = s.CreateGate(*here, opts)
		}
		if g := s.World.Gate(gid); g != nil {
			g.controller = id
		}
		c.managed = gid
		s.Log.Info("phase gate opening",
			zap.Int64("controller", int64(id)),
			zap.String("phase", PhaseName(c.Phase)),
			zap.Stringer("at", *here),
			zap.Duration("open", opts.OpenDuration),
			zap.Bool("resumed", c.resumed),
		)
	}
	c.resumed = false

	delay := remaining
	if delay < s.Timing.MinRearm {
		delay = s.Timing.MinRearm
	}
	c.timer = s.Scheduler.After(delay, s.alive(id), func() { s.evaluateController(id) })
}

// DeleteController removes a controller together with the gate it manages.
func (s *Shard) DeleteController(id EntityID) {
	c := s.World.Controller(id)
	if c == nil || c.deleted {
		return
	}
	c.deleted = true
	c.timer.Stop()
	c.timer = nil
	if c.managed != 0 {
		s.DeleteGate(c.managed)
		c.managed = 0
	}
	s.Index.Remove(id)
	s.World.RemoveEntity(id)
	s.Log.Debug("controller deleted", zap.Int64("controller", int64(id)))
}

// Controllers returns the ids of every live phase controller.
func (s *Shard) Controllers() []EntityID {
	var ids []EntityID
	s.World.ForEach([]ComponentKey{CompController}, func(id EntityID) {
		ids = append(ids, id)
	})
	sortIDs(ids)
	return ids
}

// PublicGate is a permanent, always open gate of the stock network. The
// subsystem only places and removes them.
type PublicGate struct {
	ID EntityID
}

// PlacePublicGate puts a public gate at loc.
func (s *Shard) PlacePublicGate(at Location) EntityID {
	name := "Moongate"
	if town := SiteTown(at.Point3D); town != "" {
		name += " (" + town + ")"
	}
	id := s.World.Spawn(at, name)
	s.World.SetComponent(id, CompPublicGate, &PublicGate{ID: id})
	s.Index.Add(IndexPublicGate, id, at)
	s.emitCreated(s.publicGateView(id))
	return id
}

func (s *Shard) DeletePublicGate(id EntityID) {
	if s.World.PublicGate(id) == nil {
		return
	}
	var loc Location
	if at := s.World.Location(id); at != nil {
		loc = *at
	}
	s.Index.Remove(id)
	s.World.RemoveEntity(id)
	s.emitDeleted(id, loc, true)
}

func (s *Shard) publicGateView(id EntityID) ObjectView {
	view := ObjectView{ID: id, Name: s.World.Name(id), Asset: FrameAsset(ColorBlue, OpenFrame), Visible: true, Lit: true}
	if at := s.World.Location(id); at != nil {
		view.Location = *at
	}
	return view
}
