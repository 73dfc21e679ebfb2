package game

import (
	"fmt"
	"time"

	"Moongates/internal/persist"

	"go.uber.org/zap"
)

const (
	kindGate       = "gate"
	kindController = "phase_controller"
	kindPublicGate = "public_gate"
)

// RestoreReport counts what a snapshot brought back.
type RestoreReport struct {
	Gates       int
	Controllers int
	PublicGates int
	Dropped     int
	Err         error
}

func writeLocation(w *persist.Writer, loc Location) {
	w.WriteInt(int64(loc.Zone))
	w.WritePoint(loc.X, loc.Y, loc.Z)
}

func readLocation(r *persist.Reader) Location {
	zone := Zone(r.ReadInt())
	x, y, z := r.ReadPoint()
	return Location{Point3D: Point3D{x, y, z}, Zone: zone}
}

// Encode snapshots every gate, controller and public gate. Gates owned by a
// controller are left out; the controller brings them back.
func (s *Shard) Encode() []byte {
	var snap persist.Snapshot
	for _, id := range s.Gates() {
		g := s.World.Gate(id)
		at := s.World.Location(id)
		if g.controller != 0 || at == nil {
			continue
		}
		w := persist.NewWriter()
		writeLocation(w, *at)
		w.WriteBool(g.open)
		w.WriteDouble(g.OpenDuration.Seconds())
		w.WriteBool(g.Dispellable)
		w.WriteInt(int64(g.Destination.Zone))
		w.WritePoint(g.Destination.X, g.Destination.Y, g.Destination.Z)
		w.WriteBool(g.Restricted)
		w.WriteInt(int64(g.Color))
		w.WriteBool(g.ReturnGate)
		w.WriteBool(g.WarnHostileZone)
		w.WriteBool(g.PhaseDestination)
		w.WriteBool(g.UseTargetPhase)
		w.WriteInt(int64(g.TargetPhase))
		frame := int64(-1)
		if f := s.World.Frame(g.current); f != nil {
			frame = int64(f.Index)
		}
		w.WriteInt(frame)
		snap.Add(kindGate, w)
	}
	for _, id := range s.Controllers() {
		c := s.World.Controller(id)
		at := s.World.Location(id)
		if at == nil {
			continue
		}
		w := persist.NewWriter()
		writeLocation(w, *at)
		w.WriteInt(int64(c.Phase))
		snap.Add(kindController, w)
	}
	var publics []EntityID
	s.World.ForEach([]ComponentKey{CompPublicGate, CompLocation}, func(id EntityID) {
		publics = append(publics, id)
	})
	sortIDs(publics)
	for _, id := range publics {
		w := persist.NewWriter()
		writeLocation(w, *s.World.Location(id))
		snap.Add(kindPublicGate, w)
	}
	return persist.EncodeSnapshot(snap)
}

// Restore rebuilds objects from a snapshot. Gates with an open duration
// come back fully open; open-ended gates are dropped unless
// RestoreOpenEnded is set. Phase gates go the other way: timed ones are
// dropped and open-ended ones rise again. Controllers restart and open
// their gate directly if their phase is current.
func (s *Shard) Restore(data []byte) RestoreReport {
	var report RestoreReport
	if len(data) == 0 {
		return report
	}
	snap, err := persist.DecodeSnapshot(data)
	if err != nil {
		report.Err = fmt.Errorf("decode snapshot: %w", err)
		s.Log.Warn("snapshot damaged, keeping readable records", zap.Error(err), zap.Int("records", len(snap.Records)))
	}
	for _, rec := range snap.Records {
		r := persist.NewReader(rec.Data)
		switch rec.Kind {
		case kindGate:
			if s.restoreGate(r) {
				report.Gates++
			} else {
				report.Dropped++
			}
		case kindController:
			at := readLocation(r)
			phase := int(r.ReadInt())
			if phase < 0 || phase >= PhaseCount {
				report.Dropped++
				continue
			}
			s.newController(at, phase, true)
			report.Controllers++
		case kindPublicGate:
			s.PlacePublicGate(readLocation(r))
			report.PublicGates++
		default:
			report.Dropped++
		}
		if r.Err() != nil {
			s.Log.Warn("record read with defaults", zap.String("kind", rec.Kind), zap.Error(r.Err()))
		}
	}
	s.Log.Info("world restored",
		zap.Int("gates", report.Gates),
		zap.Int("controllers", report.Controllers),
		zap.Int("publicGates", report.PublicGates),
		zap.Int("dropped", report.Dropped),
	)
	return report
}

func (s *Shard) restoreGate(r *persist.Reader) bool {
	at := readLocation(r)
	r.ReadBool() // open flag; the hold timer restarts from the full duration
	seconds := r.ReadDouble()
	var opts GateOptions
	opts.Dispellable = r.ReadBool()
	opts.Destination.Zone = Zone(r.ReadInt())
	x, y, z := r.ReadPoint()
	opts.Destination.Point3D = Point3D{x, y, z}
	opts.Restricted = r.ReadBool()
	opts.Color = Color(r.ReadInt())
	opts.ReturnGate = r.ReadBool()
	opts.WarnHostileZone = r.ReadBool()
	opts.PhaseDestination = r.ReadBool()
	opts.UseTargetPhase = r.ReadBool()
	opts.TargetPhase = int(r.ReadInt())
	r.ReadInt() // frame index at save time

	if FrameAsset(opts.Color, 0) == UnknownAsset {
		opts.Color = ColorBlue
	}
	if opts.PhaseDestination {
		// Timed phase gates end with the restart; standing ones rise again.
		if seconds > 0 {
			s.Log.Debug("timed phase gate not restored", zap.Stringer("at", at))
			return false
		}
		s.CreateGate(at, opts)
		return true
	}
	if seconds > 0 {
		opts.OpenDuration = time.Duration(seconds * float64(time.Second))
	} else if !s.RestoreOpenEnded {
		s.Log.Debug("open-ended gate not restored", zap.Stringer("at", at))
		return false
	}
	s.CreateOpenGate(at, opts)
	return true
}
