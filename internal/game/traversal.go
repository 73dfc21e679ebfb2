package game

import "go.uber.org/zap"

// TraversalResult is the outcome of one attempt to go through a gate.
type TraversalResult int

const (
	TraversalTraversed TraversalResult = iota
	TraversalClosed
	TraversalNowhere
	TraversalDeniedSigil
	TraversalDeniedYoung
	TraversalDeniedForbidden
	TraversalDeniedBusy
	TraversalAwaitingConfirmation
	TraversalOutOfRange
	TraversalCancelled
	TraversalDelayed
)

var traversalNames = [...]string{
	"traversed",
	"closed",
	"nowhere",
	"denied_sigil",
	"denied_young",
	"denied_forbidden",
	"denied_busy",
	"awaiting_confirmation",
	"out_of_range",
	"cancelled",
	"delayed",
}

func (r TraversalResult) String() string {
	if r >= 0 && int(r) < len(traversalNames) {
		return traversalNames[r]
	}
	return "unknown"
}

// Denied reports whether a restriction check rejected the actor.
func (r TraversalResult) Denied() bool {
	return r >= TraversalDeniedSigil && r <= TraversalDeniedBusy
}

// HandleMoveOver is called when an actor arrives on a tile. Open gates on
// that tile start their traversal check; it returns how many did.
func (s *Shard) HandleMoveOver(actor Actor) int {
	if actor == nil || !actor.IsPlayer() {
		return 0
	}
	n := 0
	for _, id := range s.Index.At(IndexGate, actor.Location()) {
		g := s.World.Gate(id)
		if g == nil || !g.open {
			continue
		}
		if g.PhaseDestination {
			s.RequestTraversal(id, actor)
		} else {
			s.CheckGate(id, actor, 0)
		}
		n++
	}
	return n
}

// UseFrame handles an actor activating a frame directly. Only the open
// frame of a restricted gate responds.
func (s *Shard) UseFrame(actor Actor, frameID EntityID) TraversalResult {
	f := s.World.Frame(frameID)
	if f == nil || !f.Interactive() || actor == nil || !actor.IsPlayer() {
		return TraversalClosed
	}
	g := s.World.Gate(f.Owner)
	if g == nil || !g.open {
		return TraversalClosed
	}
	if !g.Restricted {
		return TraversalCancelled
	}
	if !s.inReach(g, actor, UseRange) {
		actor.SendMessage(Message{Cliloc: ClilocTooFarAway, Text: MessageTooFarAway})
		return TraversalOutOfRange
	}
	s.CheckGate(g.ID, actor, UseRange)
	return TraversalDelayed
}

// CheckGate reveals hidden players and arms the delayed traversal check.
// The check runs only if the actor is still within rng tiles of the gate.
func (s *Shard) CheckGate(gateID EntityID, actor Actor, rng int) {
	if s.World.Gate(gateID) == nil {
		return
	}
	if actor.Hidden() && actor.AccessLevel() == AccessPlayer {
		actor.Reveal()
	}
	guard := func() bool { return s.World.Exists(gateID) && !actor.Deleted() }
	s.Scheduler.After(s.Timing.ConfirmDelay, guard, func() {
		g := s.World.Gate(gateID)
		if g == nil || !s.inReach(g, actor, rng) {
			return
		}
		s.RequestTraversal(gateID, actor)
	})
}

func (s *Shard) inReach(g *GateManager, actor Actor, rng int) bool {
	if g.deleted || actor.Deleted() {
		return false
	}
	here := s.World.Location(g.ID)
	if here == nil {
		return false
	}
	at := actor.Location()
	return at.Zone == here.Zone && at.InRange(here.Point3D, rng)
}

// validateUse is the last check before relocation after a confirmation.
func (s *Shard) validateUse(g *GateManager, actor Actor, message bool) bool {
	if s.inReach(g, actor, UseRange) {
		return true
	}
	if message && !actor.Deleted() {
		actor.SendMessage(Message{Cliloc: ClilocTooFarAway, Text: MessageTooFarAway})
	}
	return false
}

// RequestTraversal tries to send actor through the gate. Closed gates are
// ignored outright; unrestricted gates relocate at once.
func (s *Shard) RequestTraversal(gateID EntityID, actor Actor) TraversalResult {
	g := s.World.Gate(gateID)
	if g == nil || g.deleted || !g.open || actor == nil {
		return TraversalClosed
	}
	dest := s.destination(g)
	if !g.Restricted {
		return s.useGate(g, actor, dest)
	}
	if res := s.checkRestrictions(actor, dest); res != TraversalTraversed {
		return res
	}
	if !dest.Leads() {
		actor.SendMessage(Message{Text: MessageNowhere})
		return TraversalNowhere
	}
	if s.needsConfirmation(g, actor, dest) {
		s.pending[actor.ID()] = g.ID
		if !concealed(actor) {
			actor.PlaySound(SoundConfirm)
		}
		actor.ShowConfirmation(ConfirmPrompt{
			Gate:        g.ID,
			Destination: dest,
			HostileZone: dest.Zone.Hostile(),
		})
		return TraversalAwaitingConfirmation
	}
	if !s.validateUse(g, actor, true) {
		return TraversalOutOfRange
	}
	return s.useGate(g, actor, dest)
}

// ConfirmTraversal answers an outstanding confirmation prompt.
func (s *Shard) ConfirmTraversal(actor Actor, gateID EntityID, accept bool) TraversalResult {
	if actor == nil {
		return TraversalCancelled
	}
	pendingGate, ok := s.pending[actor.ID()]
	if !ok || pendingGate != gateID {
		return TraversalCancelled
	}
	delete(s.pending, actor.ID())
	if !accept {
		return TraversalCancelled
	}
	g := s.World.Gate(gateID)
	if g == nil || g.deleted || !g.open {
		return TraversalClosed
	}
	if !s.validateUse(g, actor, true) {
		return TraversalOutOfRange
	}
	dest := s.destination(g)
	if res := s.checkRestrictions(actor, dest); res != TraversalTraversed {
		return res
	}
	return s.useGate(g, actor, dest)
}

// Pending reports the gate an actor is being asked to confirm, if any.
func (s *Shard) Pending(actorID string) (EntityID, bool) {
	id, ok := s.pending[actorID]
	return id, ok
}

// ForgetActor drops any confirmation waiting on an actor that left.
func (s *Shard) ForgetActor(actorID string) {
	delete(s.pending, actorID)
}

// checkRestrictions applies the travel rules in order; the first failing
// rule rejects with its own message.
func (s *Shard) checkRestrictions(actor Actor, dest Location) TraversalResult {
	switch {
	case actor.CarriesSigil():
		actor.SendMessage(Message{Cliloc: ClilocSigil, Text: MessageSigil})
		return TraversalDeniedSigil
	case dest.Zone.Hostile() && actor.Young():
		actor.SendMessage(Message{Cliloc: ClilocYoung, Text: MessageYoung})
		return TraversalDeniedYoung
	case actor.Kills() >= s.Timing.MurderThreshold && !dest.Zone.Hostile(),
		!supports(actor.ClientFlags(), dest.Zone):
		actor.SendMessage(Message{Cliloc: ClilocForbidden, Text: MessageForbidden})
		return TraversalDeniedForbidden
	case actor.IsCasting():
		actor.SendMessage(Message{Cliloc: ClilocBusy, Text: MessageBusy})
		return TraversalDeniedBusy
	}
	return TraversalTraversed
}

func supports(flags ClientFlags, z Zone) bool {
	need := z.RequiredFlag()
	return need == 0 || flags&need != 0
}

func (s *Shard) needsConfirmation(g *GateManager, actor Actor, dest Location) bool {
	from := actor.Location()
	if s.Regions.IsGuarded(from) && !s.Regions.IsGuarded(dest) {
		return true
	}
	return g.WarnHostileZone && !from.Zone.Hostile() && dest.Zone.Hostile()
}

// useGate relocates the actor's pets, then the actor, and runs the hook.
func (s *Shard) useGate(g *GateManager, actor Actor, dest Location) TraversalResult {
	if !dest.Leads() {
		actor.SendMessage(Message{Text: MessageNowhere})
		return TraversalNowhere
	}
	from := actor.Location()
	for _, pet := range actor.Pets() {
		if pet != nil && !pet.Deleted() {
			pet.MoveTo(dest)
		}
	}
	actor.MoveTo(dest)
	if !concealed(actor) {
		actor.PlaySound(SoundTranslocate)
	}
	s.Log.Info("moongate traversal",
		zap.Int64("gate", int64(g.ID)),
		zap.String("actor", actor.ID()),
		zap.Stringer("from", from),
		zap.Stringer("to", dest),
	)
	if s.Hook != nil {
		s.Hook.OnTraversal(TraversalEvent{Gate: g.ID, Actor: actor, From: from, To: dest})
	}
	return TraversalTraversed
}
