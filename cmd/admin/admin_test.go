package main

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/persistence/indexdb"
	"gridrealm.ai/internal/persistence/save"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

func seedIndex(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.sqlite")
	idx, err := indexdb.OpenSQLite(path)
	require.NoError(t, err)
	for i, typ := range []string{"rat", "rat", "goblin"} {
		require.NoError(t, idx.WriteEvent(model.Event{
			Kind: model.EventKill, Tick: uint64(10 + i), At: time.Duration(i) * time.Second,
			CharacterID: "C1", MonsterID: typ + "-x", MonsterType: typ,
			Amount: map[string]int64{"rat": 2, "goblin": 8}[typ], Currency: "gold",
		}))
	}
	require.NoError(t, idx.WriteEvent(model.Event{Kind: model.EventRevive, Tick: 20, CharacterID: "C2"}))
	idx.RecordSave("/saves/main", save.SaveV3{Header: save.Header{Slot: "main", Version: 3, Tick: 20}, Team: save.TeamV1{Gold: 12}})
	require.NoError(t, idx.Close())
	return path
}

func TestDBQueries(t *testing.T) {
	db, err := sql.Open("sqlite", seedIndex(t))
	require.NoError(t, err)
	defer db.Close()

	saves, err := querySaves(db, "main", 10)
	require.NoError(t, err)
	require.Len(t, saves, 1)
	require.Equal(t, int64(12), saves[0].Gold)

	evs, err := queryEvents(db, eventFilter{Kind: "KILL", CharacterID: "C1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, "goblin", evs[0].MonsterType, "newest first")

	evs, err = queryEvents(db, eventFilter{CharacterID: "C2", Limit: 10})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, "REVIVE", evs[0].Kind)

	earn, err := queryEarnings(db)
	require.NoError(t, err)
	require.Equal(t, []earningRow{
		{MonsterType: "goblin", Currency: "gold", Kills: 1, Total: 8},
		{MonsterType: "rat", Currency: "gold", Kills: 2, Total: 4},
	}, earn)

	cats, err := queryCatalogs(db)
	require.NoError(t, err)
	require.Empty(t, cats)
}

func TestListSessionsAndInspect(t *testing.T) {
	data := t.TempDir()
	st := save.NewFileStore(filepath.Join(data, "sessions", "alpha", "saves"))
	sv := save.SaveV3{
		Header:     save.Header{Slot: "main", Tick: 42},
		Seed:       7,
		Team:       save.TeamV1{Gold: 5},
		Characters: []save.CharacterV3{{ID: "C1", HP: 30, Task: "mining"}},
	}
	require.NoError(t, st.Save(context.Background(), sv))

	sessions, err := listSessions(data)
	require.NoError(t, err)
	require.Equal(t, []sessionInfo{{Name: "alpha", Slots: []string{"main"}}}, sessions)

	loaded, err := readSaveFile(st.Path("main"))
	require.NoError(t, err)
	var out bytes.Buffer
	printSaveSummary(&out, loaded)
	require.Contains(t, out.String(), "slot=main tick=42")
	require.Contains(t, out.String(), "character C1")
	require.Contains(t, out.String(), "task=mining")
}

func TestDoAdmin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/v1/save" && r.Method == http.MethodPost {
			_, _ = rw.Write([]byte(`{"ok":true}`))
			return
		}
		rw.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, adminURL(srv.URL+"/", "save"), nil)
	require.Equal(t, 0, doAdmin(req, time.Second))
	req, _ = http.NewRequest(http.MethodGet, adminURL(srv.URL, "state"), nil)
	require.Equal(t, 1, doAdmin(req, time.Second))
}
