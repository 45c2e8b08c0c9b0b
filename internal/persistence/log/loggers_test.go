package log

import (
	"path/filepath"
	"testing"
	"time"

	"gridrealm.ai/internal/sim/world/kernel/model"
)

func readLines(t *testing.T, path string) []Entry {
	t.Helper()
	var out []Entry
	if err := ReadEvents(path, func(e Entry) bool {
		out = append(out, e)
		return true
	}); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return out
}

func TestEventLogger_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLogger(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	if err := l.WriteEvent(model.Event{Kind: model.EventKill, Tick: 1, MonsterID: "R1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.WriteEvent(model.Event{Kind: model.EventRespawn, Tick: 2, MonsterID: "R1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := l.WriteEvent(model.Event{Kind: model.EventRevive, Tick: 3, CharacterID: "C1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := l.Written(); got != 3 {
		t.Fatalf("written=%d", got)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	first := readLines(t, filepath.Join(dir, "events", "events-2026-03-01-10.jsonl.zst"))
	if len(first) != 2 || first[0].Kind != model.EventKill || first[1].Tick != 2 {
		t.Fatalf("unexpected first hour: %+v", first)
	}
	if first[0].Time != "2026-03-01T10:59:00Z" {
		t.Fatalf("ts=%q", first[0].Time)
	}
	second := readLines(t, filepath.Join(dir, "events", "events-2026-03-01-11.jsonl.zst"))
	if len(second) != 1 || second[0].CharacterID != "C1" {
		t.Fatalf("unexpected second hour: %+v", second)
	}

	files, err := EventFiles(dir)
	if err != nil {
		t.Fatalf("EventFiles: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "events-2026-03-01-10.jsonl.zst" {
		t.Fatalf("files=%v", files)
	}
}
