package game

import "sort"

type IndexKind int

const (
	IndexGate IndexKind = iota
	IndexController
	IndexPublicGate
)

type indexEntry struct {
	kind IndexKind
	loc  Location
}

// GateIndex keeps gate-like objects addressable by kind and location so
// lookups never walk the whole world.
type GateIndex struct {
	byLoc   map[IndexKind]map[Location]map[EntityID]struct{}
	entries map[EntityID]indexEntry
}

func NewGateIndex() *GateIndex {
	return &GateIndex{
		byLoc:   make(map[IndexKind]map[Location]map[EntityID]struct{}),
		entries: make(map[EntityID]indexEntry),
	}
}

func (x *GateIndex) Add(kind IndexKind, id EntityID, loc Location) {
	x.Remove(id)
	locs, ok := x.byLoc[kind]
	if !ok {
		locs = make(map[Location]map[EntityID]struct{})
		x.byLoc[kind] = locs
	}
	ids, ok := locs[loc]
	if !ok {
		ids = make(map[EntityID]struct{})
		locs[loc] = ids
	}
	ids[id] = struct{}{}
	x.entries[id] = indexEntry{kind: kind, loc: loc}
}

func (x *GateIndex) Remove(id EntityID) {
	entry, ok := x.entries[id]
	if !ok {
		return
	}
	delete(x.entries, id)
	locs := x.byLoc[entry.kind]
	if ids := locs[entry.loc]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(locs, entry.loc)
		}
	}
}

// At returns the ids of kind standing at loc, lowest id first.
func (x *GateIndex) At(kind IndexKind, loc Location) []EntityID {
	ids := x.byLoc[kind][loc]
	if len(ids) == 0 {
		return nil
	}
	out := make([]EntityID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func (x *GateIndex) Count(kind IndexKind) int {
	n := 0
	for _, entry := range x.entries {
		if entry.kind == kind {
			n++
		}
	}
	return n
}

func (x *GateIndex) Contains(id EntityID) bool {
	_, ok := x.entries[id]
	return ok
}
