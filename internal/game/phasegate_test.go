package game

import (
	"testing"
	"time"
)

func siteOf(phase int, zone Zone) Location {
	return Location{Point3D: PhaseDestination(phase), Zone: zone}
}

func TestControllerOpensGateInItsPhase(t *testing.T) {
	clock := newFakeClock(3, 100*time.Second)
	s := NewShard(clock, nil)
	cid, err := s.CreatePhaseController(siteOf(3, ZoneTrammel), 3)
	if err != nil {
		t.Fatalf("create controller: %v", err)
	}
	if got := s.World.Name(cid); got != "An Ultima IV-style moongate opening at Waxing Gibbous" {
		t.Fatalf("name = %q", got)
	}
	c := s.World.Controller(cid)
	if c.State() != ControllerDormant {
		t.Fatalf("controller managing before warmup")
	}

	s.Tick(ControllerWarmup)
	gid := c.Managed()
	g := s.World.Gate(gid)
	if g == nil {
		t.Fatalf("controller did not open a gate")
	}
	if c.State() != ControllerManaging || g.Controller() != cid {
		t.Fatalf("controller and gate not linked")
	}
	if g.OpenDuration != 98*time.Second || !g.PhaseDestination || g.Color != ColorBlue {
		t.Fatalf("unexpected gate options %+v", g.GateOptions)
	}
	if g.IsOpen() {
		t.Fatalf("fresh controller gate should rise first")
	}
	s.Tick(riseTime)
	if !g.IsOpen() {
		t.Fatalf("gate did not finish rising")
	}
}

func TestControllerStaysDormant(t *testing.T) {
	cases := []struct {
		name      string
		phase     int
		remaining time.Duration
	}{
		{"other phase", 2, 100 * time.Second},
		{"too close to phase end", 3, OpenThreshold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewShard(newFakeClock(tc.phase, tc.remaining), nil)
			cid, _ := s.CreatePhaseController(siteOf(3, ZoneTrammel), 3)
			s.Tick(ControllerWarmup)
			if len(s.Gates()) != 0 {
				t.Fatalf("gate opened")
			}
			if s.World.Controller(cid).State() != ControllerDormant {
				t.Fatalf("controller not dormant")
			}
			if s.Scheduler.Pending() != 1 {
				t.Fatalf("controller did not re-arm")
			}
		})
	}
}

func TestControllerRearmsAtLeastOneSecond(t *testing.T) {
	clock := newFakeClock(3, 0)
	s := NewShard(clock, nil)
	s.CreatePhaseController(siteOf(3, ZoneTrammel), 3)
	s.Tick(ControllerWarmup)
	if len(s.Gates()) != 0 {
		t.Fatalf("gate opened with no phase time left")
	}
	clock.remaining[CycleTrammel] = time.Minute
	s.Tick(MinRearm - time.Millisecond)
	if len(s.Gates()) != 0 {
		t.Fatalf("controller re-evaluated too early")
	}
	s.Tick(time.Millisecond)
	if len(s.Gates()) != 1 {
		t.Fatalf("controller did not re-evaluate after the minimum delay")
	}
}

func TestControllerDoesNotStackGates(t *testing.T) {
	clock := newFakeClock(3, 30*time.Second)
	s := NewShard(clock, nil)
	cid, _ := s.CreatePhaseController(siteOf(3, ZoneTrammel), 3)
	s.Tick(ControllerWarmup)
	first := s.World.Controller(cid).Managed()

	// the gate outlives the next evaluation when the clock stands still
	clock.remaining[CycleTrammel] = time.Hour
	s.Tick(30 * time.Second)
	if got := s.World.Controller(cid).Managed(); got != first || len(s.Gates()) != 1 {
		t.Fatalf("controller replaced or doubled its gate")
	}
}

func TestControllerReplacesGateDeletedElsewhere(t *testing.T) {
	clock := newFakeClock(3, 10*time.Second)
	s := NewShard(clock, nil)
	cid, _ := s.CreatePhaseController(siteOf(3, ZoneTrammel), 3)
	s.Tick(ControllerWarmup)
	c := s.World.Controller(cid)
	s.DeleteGate(c.Managed())
	if c.State() != ControllerDormant {
		t.Fatalf("controller still managing a deleted gate")
	}
	s.Tick(10 * time.Second)
	if c.Managed() == 0 {
		t.Fatalf("controller did not open a new gate")
	}
}

func TestDeleteControllerCascades(t *testing.T) {
	s := NewShard(newFakeClock(3, time.Minute), nil)
	cid, _ := s.CreatePhaseController(siteOf(3, ZoneTrammel), 3)
	s.Tick(ControllerWarmup + riseTime)
	gid := s.World.Controller(cid).Managed()
	s.DeleteController(cid)
	s.DeleteController(cid)
	if s.World.Exists(cid) || s.World.Exists(gid) {
		t.Fatalf("controller or gate survived")
	}
	if s.World.Count(CompFrame) != 0 || s.Scheduler.Pending() != 0 {
		t.Fatalf("frames or timers survived the controller")
	}
	if s.Index.Count(IndexController) != 0 || s.Index.Count(IndexGate) != 0 {
		t.Fatalf("index still holds deleted objects")
	}
}

func TestCreateControllerRejectsBadPhase(t *testing.T) {
	s := newTestShard(t)
	for _, phase := range []int{-1, PhaseCount} {
		if _, err := s.CreatePhaseController(britainTram, phase); err == nil {
			t.Fatalf("phase %d accepted", phase)
		}
	}
	if len(s.Controllers()) != 0 {
		t.Fatalf("controller created for a bad phase")
	}
}

func TestRestoredControllerOpensDirectly(t *testing.T) {
	clock := newFakeClock(3, time.Minute)
	s := NewShard(clock, nil)
	s.CreatePhaseController(siteOf(3, ZoneTrammel), 3)
	s.Tick(ControllerWarmup + riseTime)
	saved := s.Encode()

	again := NewShard(clock, nil)
	report := again.Restore(saved)
	if report.Err != nil || report.Controllers != 1 || report.Gates != 0 {
		t.Fatalf("restore report %+v", report)
	}
	again.Tick(ControllerWarmup)
	cid := again.Controllers()[0]
	g := again.World.Gate(again.World.Controller(cid).Managed())
	if g == nil || !g.IsOpen() {
		t.Fatalf("resumed controller gate not open")
	}
	if frameIndex(again, g.ID) != OpenFrame {
		t.Fatalf("resumed gate frame = %d", frameIndex(again, g.ID))
	}

	// later openings rise normally
	again.DeleteGate(g.ID)
	again.Tick(time.Minute)
	next := again.World.Gate(again.World.Controller(cid).Managed())
	if next == nil || next.IsOpen() {
		t.Fatalf("second gate should rise, got %+v", next)
	}
}

func TestPublicGates(t *testing.T) {
	s := newTestShard(t)
	obs := &recordingObserver{}
	s.Observer = obs
	site := s.PlacePublicGate(siteOf(1, ZoneFelucca))
	plain := s.PlacePublicGate(Location{Point3D: Point3D{1, 2, 3}, Zone: ZoneIlshenar})
	if got := s.World.Name(site); got != "Moongate (Britain)" {
		t.Fatalf("name = %q", got)
	}
	if got := s.World.Name(plain); got != "Moongate" {
		t.Fatalf("name = %q", got)
	}
	if len(obs.created) != 2 || obs.created[0].Asset != FrameAsset(ColorBlue, OpenFrame) {
		t.Fatalf("views = %+v", obs.created)
	}
	if views := s.Objects(ZoneIlshenar); len(views) != 1 || views[0].ID != plain {
		t.Fatalf("ilshenar objects = %+v", views)
	}
	s.Delete(site)
	s.DeletePublicGate(site)
	if s.World.Exists(site) || len(obs.deleted) != 1 {
		t.Fatalf("public gate delete not applied once")
	}
}
