package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"Moongates/internal/game"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// spawnPoint is where new sessions appear: the Britain moongate circle.
var spawnPoint = game.Location{Point3D: game.PhaseDestination(1), Zone: game.ZoneTrammel}

func serveWS(h *Hub, sendRate time.Duration, adminToken string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade", zap.Error(err))
		return
	}
	sendTick := time.NewTicker(sendRate)
	shard := h.Shard

	sess := newSession(h, newSessionID(), spawnPoint)
	if authorized(r, adminToken) {
		sess.access = game.AccessAdministrator
	}
	shard.Mu.Lock()
	h.addSessionLocked(sess)
	sess.queue("welcome", welcomeFor(shard, sess))
	shard.Mu.Unlock()
	h.log.Info("session joined", zap.String("session", sess.id), zap.Bool("admin", sess.access == game.AccessAdministrator))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				h.log.Debug("unsupported websocket message type", zap.Int("type", msgType))
				continue
			}
			var inbound inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				h.log.Debug("invalid JSON message", zap.Error(err))
				continue
			}
			shard.Mu.Lock()
			h.dispatchLocked(sess, inbound)
			shard.Mu.Unlock()
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sendTick.C:
				shard.Mu.Lock()
				outbound := sess.consume()
				shard.Mu.Unlock()
				for _, event := range outbound {
					if err := conn.WriteJSON(event); err != nil {
						h.log.Debug("send json event error", zap.String("session", sess.id), zap.Error(err))
						cancel()
						return
					}
				}
			}
		}
	}()

	<-ctx.Done()
	sendTick.Stop()
	conn.Close()

	shard.Mu.Lock()
	h.removeSessionLocked(sess.id)
	shard.Mu.Unlock()
	h.log.Info("session left", zap.String("session", sess.id))
}

func welcomeFor(shard *game.Shard, s *session) welcomeDTO {
	views := shard.Objects(s.loc.Zone)
	objects := make([]objectDTO, 0, len(views))
	for _, v := range views {
		objects = append(objects, objectFrom(v))
	}
	return welcomeDTO{ID: s.id, Pos: positionFrom(s.loc), Objects: objects}
}

func (h *Hub) dispatchLocked(s *session, in inboundMessage) {
	shard := h.Shard
	switch in.Type {
	case "move":
		var payload moveDTO
		if !h.decode(in, &payload) {
			return
		}
		h.handleMoveLocked(s, payload.Pos.location())
	case "use":
		var payload useDTO
		if !h.decode(in, &payload) {
			return
		}
		res := shard.UseFrame(s, game.EntityID(payload.ID))
		s.queue("result", resultDTO{Action: "use", Result: res.String()})
	case "confirm":
		var payload confirmDTO
		if !h.decode(in, &payload) {
			return
		}
		res := shard.ConfirmTraversal(s, game.EntityID(payload.Gate), payload.Accept)
		s.queue("result", resultDTO{Action: "confirm", Result: res.String()})
	case "debug:profile":
		if !h.DebugProfiles {
			h.log.Warn("debug profile refused", zap.String("session", s.id))
			s.queue("message", messageDTO{Text: "Debug profiles are disabled."})
			return
		}
		var payload profileDTO
		if !h.decode(in, &payload) {
			return
		}
		s.applyProfile(payload)
	case "gm:create-gate":
		var payload createGateDTO
		if !h.decode(in, &payload) || !h.requireStaff(s) {
			return
		}
		id, err := h.createGateLocked(s.loc, payload)
		if err != nil {
			s.queue("message", messageDTO{Text: err.Error()})
			return
		}
		s.queue("gate:created", gateCreatedDTO{ID: int64(id)})
	case "gm:dispel":
		var payload dispelDTO
		if !h.decode(in, &payload) {
			return
		}
		ok := shard.Dispel(game.EntityID(payload.ID))
		result := "dispelled"
		if !ok {
			result = "not_dispellable"
		}
		s.queue("result", resultDTO{Action: "dispel", Result: result})
	case "admin:moongen":
		if s.access < game.AccessAdministrator {
			s.queue("message", messageDTO{Text: "You do not have access to that command."})
			return
		}
		report := h.RegenerateLocked()
		s.queue("report", report)
	default:
		h.log.Debug("unknown text message type", zap.String("type", in.Type))
	}
}

func (h *Hub) decode(in inboundMessage, v interface{}) bool {
	if err := json.Unmarshal(in.Payload, v); err != nil {
		h.log.Debug("invalid payload", zap.String("type", in.Type), zap.Error(err))
		return false
	}
	return true
}

func (h *Hub) requireStaff(s *session) bool {
	if s.access >= game.AccessGameMaster {
		return true
	}
	s.queue("message", messageDTO{Text: "You do not have access to that command."})
	return false
}

// handleMoveLocked relocates the session, refreshes its view on a zone
// change and lets gates under it react.
func (h *Hub) handleMoveLocked(s *session, to game.Location) {
	if !to.Zone.Travelable() {
		return
	}
	zoneChanged := to.Zone != s.loc.Zone
	s.loc = to
	for _, p := range s.pets {
		p.loc = to
	}
	if zoneChanged {
		s.queue("welcome", welcomeFor(h.Shard, s))
	}
	h.Shard.HandleMoveOver(s)
}

func (h *Hub) createGateLocked(at game.Location, p createGateDTO) (game.EntityID, error) {
	shard := h.Shard
	if p.Controller {
		return shard.CreatePhaseController(at, p.OpensAtPhase)
	}
	color, _ := game.ParseColor(p.Color)
	opts := game.GateOptions{
		Destination:      p.Destination.location(),
		OpenDuration:     time.Duration(p.OpenSeconds * float64(time.Second)),
		Color:            color,
		Restricted:       p.Restricted,
		Dispellable:      p.Dispellable,
		ReturnGate:       p.ReturnGate,
		WarnHostileZone:  p.WarnHostile,
		PhaseDestination: p.PhaseGate,
	}
	if p.TargetPhase != nil {
		opts.PhaseDestination = true
		opts.UseTargetPhase = true
		opts.TargetPhase = *p.TargetPhase
	}
	return shard.CreateGate(at, opts), nil
}
