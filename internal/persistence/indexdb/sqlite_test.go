package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gridrealm.ai/internal/persistence/save"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqEvent}

	_ = s.WriteEvent(model.Event{Kind: model.EventKill, Tick: 2})
	s.RecordSave("/tmp/a.save.zst", save.SaveV3{})

	st := s.Stats()
	if st.DropEventTotal != 1 {
		t.Fatalf("DropEventTotal=%d want=1", st.DropEventTotal)
	}
	if st.DropSaveTotal != 1 {
		t.Fatalf("DropSaveTotal=%d want=1", st.DropSaveTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_WritesEventsAndSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "session.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	_ = idx.WriteEvent(model.Event{
		Kind: model.EventKill, Tick: 7, At: 700 * time.Millisecond,
		CharacterID: "C1", MonsterID: "R1", MonsterType: "rat",
		Amount: 3, Currency: "gold", Zone: model.ZoneID{X: 1, Y: 0},
	})
	_ = idx.WriteEvent(model.Event{Kind: model.EventUpgrade, Tick: 9, Item: "sharpen", Amount: 5})

	store := IndexedStore{
		Store: save.NewFileStore(t.TempDir()),
		Index: idx,
		Path:  func(slot string) string { return "/saves/" + slot },
	}
	sv := save.SaveV3{
		Header:     save.Header{Slot: "main", Tick: 9},
		NowMs:      900,
		Team:       save.TeamV1{Gold: 3},
		Characters: []save.CharacterV3{{ID: "C1"}},
	}
	if err := store.Save(context.Background(), sv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		kind, char, currency string
		amount, atMs         int64
		zoneX                int
	)
	row := db.QueryRow(`SELECT kind,character_id,amount,currency,at_ms,zone_x FROM events WHERE tick=7`)
	if err := row.Scan(&kind, &char, &amount, &currency, &atMs, &zoneX); err != nil {
		t.Fatalf("Scan event: %v", err)
	}
	if kind != "KILL" || char != "C1" || amount != 3 || currency != "gold" || atMs != 700 || zoneX != 1 {
		t.Fatalf("event row mismatch: %s %s %d %s %d %d", kind, char, amount, currency, atMs, zoneX)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("events count=%d err=%v", n, err)
	}

	var (
		p           string
		chars, gold int64
	)
	if err := db.QueryRow(`SELECT path,characters,gold FROM saves WHERE slot='main' AND tick=9`).Scan(&p, &chars, &gold); err != nil {
		t.Fatalf("Scan save: %v", err)
	}
	if p != "/saves/main" || chars != 1 || gold != 3 {
		t.Fatalf("save row mismatch: path=%q chars=%d gold=%d", p, chars, gold)
	}
}
