package game

import "go.uber.org/zap"

type Direction int

const (
	Rising Direction = iota
	Sinking
)

func (d Direction) String() string {
	if d == Sinking {
		return "sinking"
	}
	return "rising"
}

type frameState struct {
	Index     int
	Direction Direction
}

// nextFrame is the gate animation transition function. terminal means the
// gate has finished sinking and must be deleted.
func nextFrame(cur frameState) (next frameState, terminal bool) {
	switch {
	case cur.Index >= OpenFrame:
		return frameState{Index: OpenFrame - 1, Direction: Sinking}, false
	case cur.Direction == Rising:
		return frameState{Index: cur.Index + 1, Direction: Rising}, false
	case cur.Index <= 0:
		return frameState{}, true
	default:
		return frameState{Index: cur.Index - 1, Direction: Sinking}, false
	}
}

// GateFrame is one visible animation step of a gate. Owner is a handle
// only; the frame never keeps its manager alive.
type GateFrame struct {
	ID        EntityID
	Owner     EntityID
	Index     int
	Direction Direction
	Asset     int

	timer *Timer
}

// Interactive reports whether actors can use this frame.
func (f *GateFrame) Interactive() bool { return f.Index == OpenFrame }

func (f *GateFrame) state() frameState {
	return frameState{Index: f.Index, Direction: f.Direction}
}

// spawnFrame creates the frame for st, makes it the gate's current frame
// and arms its tick. The previous frame is left for the caller to delete.
func (s *Shard) spawnFrame(g *GateManager, st frameState) EntityID {
	at := s.World.Location(g.ID)
	if at == nil {
		return 0
	}
	id := s.World.Spawn(*at, "moongate")
	f := &GateFrame{
		ID:        id,
		Owner:     g.ID,
		Index:     st.Index,
		Direction: st.Direction,
		Asset:     FrameAsset(g.Color, st.Index),
	}
	s.World.SetComponent(id, CompFrame, f)
	g.current = id

	switch {
	case st.Index != OpenFrame:
		f.timer = s.Scheduler.After(s.Timing.Tick, s.alive(id), func() { s.frameTick(id) })
	case g.OpenDuration > 0:
		g.open = true
		f.timer = s.Scheduler.After(g.OpenDuration, s.alive(id), func() { s.frameTick(id) })
	default:
		g.open = true
	}
	if g.open {
		s.Log.Debug("gate open", zap.Int64("gate", int64(g.ID)), zap.Duration("hold", g.OpenDuration))
	}
	s.emitCreated(s.frameView(id))
	return id
}

// frameTick is the single timer callback of every frame.
func (s *Shard) frameTick(id EntityID) {
	f := s.World.Frame(id)
	if f == nil {
		return
	}
	f.timer = nil
	g := s.World.Gate(f.Owner)
	if g == nil || g.deleted {
		s.deleteFrame(id)
		return
	}
	if f.Index == OpenFrame {
		g.open = false
	}
	next, terminal := nextFrame(f.state())
	if terminal {
		s.DeleteGate(g.ID)
		return
	}
	s.spawnFrame(g, next)
	s.deleteFrame(id)
}

// deleteFrame stops and removes a frame. It is a no-op for dead frames.
func (s *Shard) deleteFrame(id EntityID) {
	f := s.World.Frame(id)
	if f == nil {
		return
	}
	f.timer.Stop()
	f.timer = nil
	var loc Location
	if at := s.World.Location(id); at != nil {
		loc = *at
	}
	if g := s.World.Gate(f.Owner); g != nil && g.current == id {
		g.current = 0
		g.open = false
	}
	s.World.RemoveEntity(id)
	s.emitDeleted(id, loc, true)
}

func (s *Shard) frameView(id EntityID) ObjectView {
	view := ObjectView{ID: id, Name: s.World.Name(id), Visible: true, Lit: true}
	if f := s.World.Frame(id); f != nil {
		view.Asset = f.Asset
	}
	if at := s.World.Location(id); at != nil {
		view.Location = *at
	}
	return view
}
