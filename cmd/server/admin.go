package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"gridrealm.ai/internal/persistence/indexdb"
	"gridrealm.ai/internal/sim/world"
)

// session is the part of world.Runner the HTTP surface needs.
type session interface {
	Status(ctx context.Context) (world.Status, error)
	SaveNow(ctx context.Context) (uint64, error)
}

type clientCounter interface {
	Clients() int
}

// Local-only admin endpoints (do not affect simulation determinism).
func registerAdmin(mux *http.ServeMux, s session, idx *indexdb.SQLiteIndex) {
	mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		st, err := s.Status(ctx)
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
			return
		}
		resp := struct {
			world.Status
			Index *indexdb.Stats `json:"index,omitempty"`
		}{Status: st}
		if idx != nil {
			is := idx.Stats()
			resp.Index = &is
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	mux.HandleFunc("/admin/v1/save", func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		tick, err := s.SaveNow(ctx)
		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
	})
}

// metricsHandler writes a minimal Prometheus exposition.
func metricsHandler(s session, clients clientCounter, idx *indexdb.SQLiteIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		st, err := s.Status(ctx)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		gauge := func(name, help string, v any) {
			fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
			fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
			fmt.Fprintf(rw, "%s{slot=%q} %v\n", name, st.Slot, v)
		}
		gauge("gridrealm_tick", "Current simulation tick.", st.Tick)
		gauge("gridrealm_characters", "Characters in the session.", st.Characters)
		gauge("gridrealm_monsters_live", "Live monsters across active zones.", st.Monsters)
		gauge("gridrealm_respawns_pending", "Monsters waiting to respawn.", st.Respawns)
		gauge("gridrealm_gold", "Team gold.", st.Gold)
		gauge("gridrealm_gems", "Team gems.", st.Gems)
		gauge("gridrealm_inbox_depth", "Queued intents not yet applied.", st.InboxDepth)
		if clients != nil {
			gauge("gridrealm_clients", "Connected websocket clients.", clients.Clients())
		}
		if idx != nil {
			is := idx.Stats()
			gauge("gridrealm_index_queue_depth", "Index writer backlog.", is.QueueDepth)
			gauge("gridrealm_index_drop_event_total", "Journal events the index dropped.", is.DropEventTotal)
			gauge("gridrealm_index_write_fail_total", "Failed index writes.", is.WriteFailTotal)
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
