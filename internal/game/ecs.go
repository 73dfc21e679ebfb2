package game

type EntityID int64

type ComponentKey string

// World is the object store for everything the gate subsystem places in the
// world. An entity is live while it holds at least one component.
type World struct {
	nextEntity EntityID
	components map[ComponentKey]map[EntityID]any
}

type NameComponent struct {
	Name string
}

const (
	CompLocation   ComponentKey = "location"
	CompName       ComponentKey = "name"
	CompGate       ComponentKey = "gate"
	CompFrame      ComponentKey = "frame"
	CompController ComponentKey = "controller"
	CompPublicGate ComponentKey = "public_gate"
)

func (w *World) Location(id EntityID) *Location {
	if v, ok := w.GetComponent(id, CompLocation); ok {
		if t, ok := v.(*Location); ok {
			return t
		}
	}
	return nil
}

func (w *World) Name(id EntityID) string {
	if v, ok := w.GetComponent(id, CompName); ok {
		if t, ok := v.(*NameComponent); ok {
			return t.Name
		}
	}
	return ""
}

func (w *World) Gate(id EntityID) *GateManager {
	if v, ok := w.GetComponent(id, CompGate); ok {
		if t, ok := v.(*GateManager); ok {
			return t
		}
	}
	return nil
}

func (w *World) Frame(id EntityID) *GateFrame {
	if v, ok := w.GetComponent(id, CompFrame); ok {
		if t, ok := v.(*GateFrame); ok {
			return t
		}
	}
	return nil
}

func (w *World) Controller(id EntityID) *PhaseGateController {
	if v, ok := w.GetComponent(id, CompController); ok {
		if t, ok := v.(*PhaseGateController); ok {
			return t
		}
	}
	return nil
}

func (w *World) PublicGate(id EntityID) *PublicGate {
	if v, ok := w.GetComponent(id, CompPublicGate); ok {
		if t, ok := v.(*PublicGate); ok {
			return t
		}
	}
	return nil
}

func NewWorld() *World {
	return &World{
		nextEntity: 0,
		components: make(map[ComponentKey]map[EntityID]any),
	}
}

func (w *World) NewEntity() EntityID {
	w.nextEntity++
	return w.nextEntity
}

// Spawn creates an entity placed at loc with a display name.
func (w *World) Spawn(loc Location, name string) EntityID {
	id := w.NewEntity()
	placed := loc
	w.SetComponent(id, CompLocation, &placed)
	w.SetComponent(id, CompName, &NameComponent{Name: name})
	return id
}

func (w *World) SetComponent(id EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) GetComponent(id EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) RemoveEntity(id EntityID) {
	for _, store := range w.components {
		delete(store, id)
	}
}

func (w *World) ForEach(required []ComponentKey, fn func(EntityID)) {
	if len(required) == 0 {
		return
	}
	first := w.components[required[0]]
	if first == nil {
		return
	}
	for id := range first {
		match := true
		for _, key := range required[1:] {
			if store := w.components[key]; store == nil {
				match = false
				break
			} else if _, ok := store[id]; !ok {
				match = false
				break
			}
		}
		if match {
			fn(id)
		}
	}
}

// Count returns how many entities hold key.
func (w *World) Count(key ComponentKey) int {
	return len(w.components[key])
}

func (w *World) Exists(id EntityID) bool {
	for _, store := range w.components {
		if _, ok := store[id]; ok {
			return true
		}
	}
	return false
}
