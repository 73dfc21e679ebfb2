package game

import (
	"testing"
	"time"
)

var (
	feluccaDest  = Location{Point3D: Point3D{1336, 1997, 5}, Zone: ZoneFelucca}
	malasDest    = Location{Point3D: Point3D{1015, 527, -65}, Zone: ZoneMalas}
	trammelWilds = Location{Point3D: Point3D{2500, 500, 0}, Zone: ZoneTrammel}
)

func restrictedGate(s *Shard, dest Location) EntityID {
	return s.CreateOpenGate(britainTram, GateOptions{Destination: dest, Restricted: true})
}

func TestClosedGateIgnoresEveryone(t *testing.T) {
	s := newTestShard(t)
	id := s.CreateGate(britainTram, GateOptions{Destination: elsewhere, Restricted: true})
	a := newPlayer(britainTram)
	a.sigil = true
	a.young = true

	if res := s.RequestTraversal(id, a); res != TraversalClosed {
		t.Fatalf("result = %v, want closed", res)
	}
	if len(a.moves) != 0 || len(a.messages) != 0 || len(a.sounds) != 0 {
		t.Fatalf("closed gate touched the actor: %+v", a)
	}
	if n := s.HandleMoveOver(a); n != 0 {
		t.Fatalf("closed gate reacted to move-over")
	}
}

func TestUnrestrictedGateSkipsRestrictions(t *testing.T) {
	s := newTestShard(t)
	hook := &recordingHook{}
	s.Hook = hook
	id := s.CreateOpenGate(britainTram, GateOptions{Destination: feluccaDest})
	a := newPlayer(Location{Point3D: Point3D{10, 10, 0}, Zone: ZoneTrammel})
	a.sigil, a.young, a.casting, a.kills = true, true, true, 12

	if res := s.RequestTraversal(id, a); res != TraversalTraversed {
		t.Fatalf("result = %v, want traversed", res)
	}
	if a.loc != feluccaDest {
		t.Fatalf("actor at %v, want %v", a.loc, feluccaDest)
	}
	if len(a.sounds) != 1 || a.sounds[0] != SoundTranslocate {
		t.Fatalf("sounds = %v", a.sounds)
	}
	if len(hook.events) != 1 || hook.events[0].To != feluccaDest || hook.events[0].Gate != id {
		t.Fatalf("hook events = %+v", hook.events)
	}
}

func TestRestrictionsApplyInOrder(t *testing.T) {
	cases := []struct {
		name   string
		dest   Location
		setup  func(a *fakeActor)
		want   TraversalResult
		cliloc int
	}{
		{"sigil before young", feluccaDest, func(a *fakeActor) { a.sigil, a.young = true, true }, TraversalDeniedSigil, ClilocSigil},
		{"young to felucca", feluccaDest, func(a *fakeActor) { a.young, a.casting = true, true }, TraversalDeniedYoung, ClilocYoung},
		{"murderer to trammel", trammelWilds, func(a *fakeActor) { a.kills, a.casting = MurderThreshold, true }, TraversalDeniedForbidden, ClilocForbidden},
		{"missing expansion", malasDest, func(a *fakeActor) { a.flags = ClientIlshenar }, TraversalDeniedForbidden, ClilocForbidden},
		{"casting", trammelWilds, func(a *fakeActor) { a.casting = true }, TraversalDeniedBusy, ClilocBusy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestShard(t)
			id := restrictedGate(s, tc.dest)
			a := newPlayer(britainTram)
			tc.setup(a)
			if res := s.RequestTraversal(id, a); res != tc.want {
				t.Fatalf("result = %v, want %v", res, tc.want)
			}
			if !tc.want.Denied() {
				t.Fatalf("%v should count as a denial", tc.want)
			}
			if a.lastCliloc() != tc.cliloc {
				t.Fatalf("cliloc = %d, want %d", a.lastCliloc(), tc.cliloc)
			}
			if len(a.moves) != 0 {
				t.Fatalf("denied actor moved")
			}
		})
	}
}

func TestMurdererMayEnterFelucca(t *testing.T) {
	s := newTestShard(t)
	id := restrictedGate(s, feluccaDest)
	a := newPlayer(britainTram)
	a.kills = 40
	if res := s.RequestTraversal(id, a); res != TraversalTraversed {
		t.Fatalf("result = %v, want traversed", res)
	}
}

func TestRestrictedGateWithoutDestination(t *testing.T) {
	s := newTestShard(t)
	id := restrictedGate(s, Location{})
	a := newPlayer(britainTram)
	if res := s.RequestTraversal(id, a); res != TraversalNowhere {
		t.Fatalf("result = %v, want nowhere", res)
	}
	if len(a.messages) != 1 || a.messages[0].Text != MessageNowhere {
		t.Fatalf("messages = %+v", a.messages)
	}

	internal := restrictedGate(s, Location{Point3D: Point3D{5, 5, 0}, Zone: ZoneInternal})
	if res := s.RequestTraversal(internal, a); res != TraversalNowhere {
		t.Fatalf("internal destination result = %v", res)
	}
}

func TestLeavingTownAsksForConfirmation(t *testing.T) {
	s := newTestShard(t)
	s.Regions = guardedSet{britainTram: true}
	id := restrictedGate(s, trammelWilds)
	a := newPlayer(britainTram)

	if res := s.RequestTraversal(id, a); res != TraversalAwaitingConfirmation {
		t.Fatalf("result = %v, want awaiting confirmation", res)
	}
	if len(a.sounds) != 1 || a.sounds[0] != SoundConfirm {
		t.Fatalf("sounds = %v", a.sounds)
	}
	if len(a.prompts) != 1 || a.prompts[0].Gate != id || a.prompts[0].Destination != trammelWilds || a.prompts[0].HostileZone {
		t.Fatalf("prompts = %+v", a.prompts)
	}
	if pending, ok := s.Pending(a.ID()); !ok || pending != id {
		t.Fatalf("pending = %v %v", pending, ok)
	}

	if res := s.ConfirmTraversal(a, id, true); res != TraversalTraversed {
		t.Fatalf("confirm result = %v", res)
	}
	if a.loc != trammelWilds {
		t.Fatalf("actor at %v", a.loc)
	}
	if _, ok := s.Pending(a.ID()); ok {
		t.Fatalf("confirmation still pending")
	}
	if res := s.ConfirmTraversal(a, id, true); res != TraversalCancelled {
		t.Fatalf("second confirm = %v, want cancelled", res)
	}
}

func TestDecliningConfirmationKeepsActor(t *testing.T) {
	s := newTestShard(t)
	s.Regions = guardedSet{britainTram: true}
	id := restrictedGate(s, trammelWilds)
	a := newPlayer(britainTram)
	s.RequestTraversal(id, a)
	if res := s.ConfirmTraversal(a, id, false); res != TraversalCancelled {
		t.Fatalf("result = %v", res)
	}
	if len(a.moves) != 0 {
		t.Fatalf("actor moved after declining")
	}
}

func TestConfirmationRechecksRangeAndRules(t *testing.T) {
	s := newTestShard(t)
	s.Regions = guardedSet{britainTram: true}
	id := restrictedGate(s, trammelWilds)

	far := newPlayer(britainTram)
	s.RequestTraversal(id, far)
	far.loc = Location{Point3D: Point3D{1340, 1997, 5}, Zone: ZoneTrammel}
	if res := s.ConfirmTraversal(far, id, true); res != TraversalOutOfRange {
		t.Fatalf("result = %v, want out of range", res)
	}
	if far.lastCliloc() != ClilocTooFarAway {
		t.Fatalf("cliloc = %d", far.lastCliloc())
	}

	busy := newPlayer(britainTram)
	busy.id = "player-2"
	s.RequestTraversal(id, busy)
	busy.casting = true
	if res := s.ConfirmTraversal(busy, id, true); res != TraversalDeniedBusy {
		t.Fatalf("result = %v, want busy", res)
	}

	gone := newPlayer(britainTram)
	gone.id = "player-3"
	s.RequestTraversal(id, gone)
	s.DeleteGate(id)
	if res := s.ConfirmTraversal(gone, id, true); res != TraversalCancelled {
		t.Fatalf("result = %v, want cancelled once the gate is gone", res)
	}
}

func TestHostileZoneWarning(t *testing.T) {
	s := newTestShard(t)
	id := s.CreateOpenGate(britainTram, GateOptions{Destination: feluccaDest, Restricted: true, WarnHostileZone: true})
	a := newPlayer(britainTram)
	if res := s.RequestTraversal(id, a); res != TraversalAwaitingConfirmation {
		t.Fatalf("result = %v", res)
	}
	if !a.prompts[0].HostileZone {
		t.Fatalf("prompt should flag the hostile zone")
	}

	plain := restrictedGate(s, feluccaDest)
	b := newPlayer(britainTram)
	b.id = "player-2"
	if res := s.RequestTraversal(plain, b); res != TraversalTraversed {
		t.Fatalf("gate without warning = %v", res)
	}
}

func TestConcealedStaffTravelSilently(t *testing.T) {
	s := newTestShard(t)
	s.Regions = guardedSet{britainTram: true}
	id := restrictedGate(s, trammelWilds)
	gm := newPlayer(britainTram)
	gm.access = AccessGameMaster
	gm.hidden = true

	if res := s.RequestTraversal(id, gm); res != TraversalAwaitingConfirmation {
		t.Fatalf("result = %v", res)
	}
	if res := s.ConfirmTraversal(gm, id, true); res != TraversalTraversed {
		t.Fatalf("confirm = %v", res)
	}
	if len(gm.sounds) != 0 {
		t.Fatalf("concealed staff heard %v", gm.sounds)
	}
}

func TestPetsTravelBeforeTheirMaster(t *testing.T) {
	s := newTestShard(t)
	id := s.CreateOpenGate(britainTram, GateOptions{Destination: elsewhere})
	a := newPlayer(britainTram)
	a.pets = []*fakePet{{log: &a.order}, {log: &a.order}}
	s.RequestTraversal(id, a)
	if len(a.order) != 3 || a.order[2] != "actor" {
		t.Fatalf("move order = %v", a.order)
	}
	for _, p := range a.pets {
		if p.loc != elsewhere {
			t.Fatalf("pet at %v", p.loc)
		}
	}
}

func TestMoveOverWaitsBeforeTraversal(t *testing.T) {
	s := newTestShard(t)
	s.CreateOpenGate(britainTram, GateOptions{Destination: elsewhere})
	a := newPlayer(britainTram)
	a.hidden = true

	if n := s.HandleMoveOver(a); n != 1 {
		t.Fatalf("move-over reached %d gates", n)
	}
	if a.reveals != 1 || a.hidden {
		t.Fatalf("hidden player not revealed")
	}
	s.Tick(ConfirmDelay - time.Millisecond)
	if len(a.moves) != 0 {
		t.Fatalf("traversal ran before the delay")
	}
	s.Tick(time.Millisecond)
	if a.loc != elsewhere {
		t.Fatalf("actor at %v after delay", a.loc)
	}
}

func TestMoveOverCancelledWhenActorStepsOff(t *testing.T) {
	s := newTestShard(t)
	s.CreateOpenGate(britainTram, GateOptions{Destination: elsewhere})
	a := newPlayer(britainTram)
	s.HandleMoveOver(a)
	a.loc.X++
	s.Tick(ConfirmDelay)
	if len(a.moves) != 0 {
		t.Fatalf("actor pulled through after stepping off")
	}
}

func TestMoveOverIgnoresCreatures(t *testing.T) {
	s := newTestShard(t)
	s.CreateOpenGate(britainTram, GateOptions{Destination: elsewhere})
	a := newPlayer(britainTram)
	a.player = false
	if n := s.HandleMoveOver(a); n != 0 {
		t.Fatalf("creature triggered %d gates", n)
	}
}

func TestPhaseGateMoveOverIsImmediate(t *testing.T) {
	s := NewShard(&fakeClock{phase: map[Cycle]int{CycleFelucca: 4}}, nil)
	s.CreateOpenGate(britainTram, GateOptions{PhaseDestination: true})
	a := newPlayer(britainTram)
	s.HandleMoveOver(a)
	want := Location{Point3D: PhaseDestination(4), Zone: ZoneTrammel}
	if a.loc != want {
		t.Fatalf("actor at %v, want %v", a.loc, want)
	}

	fixed := s.CreateOpenGate(want, GateOptions{PhaseDestination: true, UseTargetPhase: true, TargetPhase: 6})
	if res := s.RequestTraversal(fixed, a); res != TraversalTraversed {
		t.Fatalf("result = %v", res)
	}
	if a.loc.Point3D != PhaseDestination(6) {
		t.Fatalf("fixed-phase gate led to %v", a.loc)
	}
}

func TestUseFrame(t *testing.T) {
	s := newTestShard(t)
	id := restrictedGate(s, elsewhere)
	frame := s.World.Gate(id).CurrentFrame()

	near := newPlayer(Location{Point3D: Point3D{1337, 1998, 5}, Zone: ZoneTrammel})
	if res := s.UseFrame(near, frame); res != TraversalDelayed {
		t.Fatalf("result = %v, want delayed", res)
	}
	s.Tick(ConfirmDelay)
	if near.loc != elsewhere {
		t.Fatalf("actor at %v", near.loc)
	}

	far := newPlayer(Location{Point3D: Point3D{1339, 1997, 5}, Zone: ZoneTrammel})
	if res := s.UseFrame(far, frame); res != TraversalOutOfRange {
		t.Fatalf("result = %v, want out of range", res)
	}
	if far.lastCliloc() != ClilocTooFarAway {
		t.Fatalf("cliloc = %d", far.lastCliloc())
	}

	free := s.CreateOpenGate(britainTram, GateOptions{Destination: elsewhere})
	if res := s.UseFrame(near, s.World.Gate(free).CurrentFrame()); res != TraversalCancelled {
		t.Fatalf("unrestricted frame use = %v", res)
	}

	rising := s.CreateGate(britainTram, GateOptions{Destination: elsewhere, Restricted: true})
	s.Tick(TickInterval)
	if res := s.UseFrame(near, s.World.Gate(rising).CurrentFrame()); res != TraversalClosed {
		t.Fatalf("rising frame use = %v", res)
	}
}

func TestFiveSecondGateScenario(t *testing.T) {
	s := newTestShard(t)
	dest := Location{Point3D: Point3D{100, 200, 0}, Zone: ZoneTrammel}
	id := s.CreateGate(britainTram, GateOptions{Destination: dest, OpenDuration: 5 * time.Second})

	for i := 0; i < FrameCount; i++ {
		s.Tick(TickInterval)
	}
	if !s.World.Gate(id).IsOpen() {
		t.Fatalf("gate not open after nine ticks")
	}

	a := newPlayer(britainTram)
	s.HandleMoveOver(a)
	s.Tick(ConfirmDelay)
	if a.loc != dest {
		t.Fatalf("actor at %v, want %v", a.loc, dest)
	}

	s.Tick(3750 * time.Millisecond)
	if !s.World.Gate(id).IsOpen() {
		t.Fatalf("gate closed early")
	}
	s.Tick(250 * time.Millisecond)
	g := s.World.Gate(id)
	if g.IsOpen() {
		t.Fatalf("gate still open after its hold")
	}
	if f := s.World.Frame(g.CurrentFrame()); f.Index != OpenFrame-1 || f.Direction != Sinking {
		t.Fatalf("frame = %+v", f)
	}
}

func TestForgetActorDropsPendingPrompt(t *testing.T) {
	s := newTestShard(t)
	s.Regions = guardedSet{britainTram: true}
	id := restrictedGate(s, trammelWilds)
	a := newPlayer(britainTram)
	s.RequestTraversal(id, a)
	s.ForgetActor(a.ID())
	if res := s.ConfirmTraversal(a, id, true); res != TraversalCancelled {
		t.Fatalf("result = %v", res)
	}
}

func TestTraversalResultNames(t *testing.T) {
	if TraversalAwaitingConfirmation.String() != "awaiting_confirmation" {
		t.Fatalf("name = %s", TraversalAwaitingConfirmation)
	}
	if TraversalResult(99).String() != "unknown" {
		t.Fatalf("out of range name")
	}
	if TraversalClosed.Denied() || TraversalDelayed.Denied() {
		t.Fatalf("non-restriction results counted as denials")
	}
}
