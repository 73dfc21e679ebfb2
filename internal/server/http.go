package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type healthDTO struct {
	Status      string `json:"status"`
	Gates       int    `json:"gates"`
	Controllers int    `json:"controllers"`
	Sessions    int    `json:"sessions"`
	Timers      int    `json:"timers"`
}

func newMux(h *Hub, cfg ServerConfig, save func() error) *http.ServeMux {
	mux := http.NewServeMux()
	sendRate := cfg.SendRate
	if sendRate <= 0 {
		sendRate = 100 * time.Millisecond
	}
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(h, sendRate, cfg.AdminToken, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.Shard.Mu.Lock()
		dto := healthDTO{
			Status:      "ok",
			Gates:       len(h.Shard.Gates()),
			Controllers: len(h.Shard.Controllers()),
			Sessions:    h.SessionCountLocked(),
			Timers:      h.Shard.Scheduler.Pending(),
		}
		h.Shard.Mu.Unlock()
		writeJSON(w, http.StatusOK, dto)
	})
	mux.HandleFunc("/admin/moongen", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, cfg.AdminToken) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Shard.Mu.Lock()
		report := h.RegenerateLocked()
		h.Shard.Mu.Unlock()
		writeJSON(w, http.StatusOK, report)
	})
	mux.HandleFunc("/admin/save", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, cfg.AdminToken) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := save(); err != nil {
			h.log.Error("admin save failed", zap.Error(err))
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	got := r.Header.Get("X-Admin-Token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
