package server

import (
	"fmt"
	"sort"

	"Moongates/internal/game"

	"go.uber.org/zap"
)

// OutboundMessage packages queued websocket events.
type OutboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub owns the shard and the connected sessions. Sessions are only touched
// with Shard.Mu held.
type Hub struct {
	Shard *game.Shard
	// DebugProfiles accepts debug:profile messages from clients.
	DebugProfiles bool
	log           *zap.Logger
	sessions      map[string]*session
}

func NewHub(shard *game.Shard, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{Shard: shard, log: log, sessions: map[string]*session{}}
	shard.Observer = h
	return h
}

func (h *Hub) addSessionLocked(s *session) {
	h.sessions[s.id] = s
}

func (h *Hub) removeSessionLocked(id string) {
	if s, ok := h.sessions[id]; ok {
		s.deleted = true
		delete(h.sessions, id)
	}
	h.Shard.ForgetActor(id)
}

// SessionCountLocked is the number of connected sessions.
func (h *Hub) SessionCountLocked() int { return len(h.sessions) }

func (h *Hub) sessionsInZone(zone game.Zone) []*session {
	var out []*session
	for _, s := range h.sessions {
		if s.loc.Zone == zone {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// ObjectCreated implements game.Observer.
func (h *Hub) ObjectCreated(view game.ObjectView) {
	dto := objectFrom(view)
	for _, s := range h.sessionsInZone(view.Location.Zone) {
		s.queue("object:add", dto)
	}
}

// ObjectDeleted implements game.Observer.
func (h *Hub) ObjectDeleted(id game.EntityID, loc game.Location) {
	for _, s := range h.sessionsInZone(loc.Zone) {
		s.queue("object:remove", objectRemovedDTO{ID: int64(id)})
	}
}

// BroadcastLocked sends a plain text message to every session.
func (h *Hub) BroadcastLocked(text string) {
	for _, s := range h.sessions {
		s.queue("message", messageDTO{Text: text})
	}
}

// RegenerateLocked runs the regeneration command and announces its counts
// the way the command always has.
func (h *Hub) RegenerateLocked() game.RegenReport {
	report := h.Shard.RegenerateMoongates()
	if report.PhaseGatesRemoved > 0 {
		h.BroadcastLocked(fmt.Sprintf("%d UltimaMoongates removed.", report.PhaseGatesRemoved))
	}
	if report.PublicGatesRemoved > 0 {
		h.BroadcastLocked(fmt.Sprintf("%d PublicMoongates removed.", report.PublicGatesRemoved))
	}
	return report
}
