package game

type AccessLevel int

const (
	AccessPlayer AccessLevel = iota
	AccessCounselor
	AccessGameMaster
	AccessSeer
	AccessAdministrator
)

func (a AccessLevel) String() string {
	switch a {
	case AccessPlayer:
		return "player"
	case AccessCounselor:
		return "counselor"
	case AccessGameMaster:
		return "gamemaster"
	case AccessSeer:
		return "seer"
	case AccessAdministrator:
		return "administrator"
	}
	return "unknown"
}

// ClientFlags are the expansion features an actor's client supports.
type ClientFlags uint32

const (
	ClientIlshenar ClientFlags = 1 << iota
	ClientMalas
	ClientTokuno

	ClientAll = ClientIlshenar | ClientMalas | ClientTokuno
)

// Message is sent to an actor. Cliloc is the client-side localized string
// number, 0 when only Text applies.
type Message struct {
	Cliloc int
	Text   string
}

// ConfirmPrompt asks an actor to confirm travel through a gate.
type ConfirmPrompt struct {
	Gate        EntityID
	Destination Location
	HostileZone bool
}

// Actor is a player or creature that can step into gates.
type Actor interface {
	ID() string
	IsPlayer() bool
	AccessLevel() AccessLevel
	Hidden() bool
	Reveal()
	Deleted() bool
	Location() Location
	IsCasting() bool
	CarriesSigil() bool
	Kills() int
	Young() bool
	ClientFlags() ClientFlags
	// Pets returns the dependents that follow the actor through a gate.
	Pets() []Follower
	MoveTo(loc Location)
	PlaySound(id int)
	SendMessage(msg Message)
	ShowConfirmation(prompt ConfirmPrompt)
}

// Follower is a dependent creature that travels with its master.
type Follower interface {
	Deleted() bool
	MoveTo(loc Location)
}

// concealed reports whether staff are hiding, which suppresses gate sounds.
func concealed(a Actor) bool {
	return a.AccessLevel() > AccessPlayer && a.Hidden()
}

// Regions answers whether a location is inside a guarded settlement.
type Regions interface {
	IsGuarded(loc Location) bool
}

type noRegions struct{}

func (noRegions) IsGuarded(Location) bool { return false }

// TraversalEvent describes an actor that just went through a gate.
type TraversalEvent struct {
	Gate  EntityID
	Actor Actor
	From  Location
	To    Location
}

// TraversalHook runs after every successful traversal.
type TraversalHook interface {
	OnTraversal(ev TraversalEvent)
}

// ObjectView is what clients are told about a placed object.
type ObjectView struct {
	ID       EntityID `json:"id"`
	Name     string   `json:"name"`
	Asset    int      `json:"asset"`
	Location Location `json:"-"`
	Visible  bool     `json:"visible"`
	Lit      bool     `json:"lit"`
}

// Observer is told when objects appear or disappear.
type Observer interface {
	ObjectCreated(view ObjectView)
	ObjectDeleted(id EntityID, loc Location)
}
