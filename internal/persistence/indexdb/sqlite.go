package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"gridrealm.ai/internal/persistence/save"
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/tuning"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

// SQLiteIndex is a queryable read model of the event journal and saves. Writes are
// queued and applied by a single goroutine; the journal files remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropEvents atomic.Uint64
	dropSaves  atomic.Uint64
	writeFails atomic.Uint64
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqSave
)

type req struct {
	kind reqKind

	event model.Event
	save  saveRow
}

type saveRow struct {
	Slot       string
	Version    int
	Tick       uint64
	NowMs      int64
	Path       string
	Characters int
	Respawns   int
	Gold       int64
	Gems       int64
	RecordedAt string
}

// Stats reports queue pressure. Drops happen only when the writer falls behind.
type Stats struct {
	QueueDepth     int    `json:"queue_depth"`
	QueueCapacity  int    `json:"queue_capacity"`
	DropEventTotal uint64 `json:"drop_event_total"`
	DropSaveTotal  uint64 `json:"drop_save_total"`
	WriteFailTotal uint64 `json:"write_fail_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tick INTEGER NOT NULL,
			at_ms INTEGER NOT NULL,
			kind TEXT NOT NULL,
			character_id TEXT,
			monster_id TEXT,
			monster_type TEXT,
			item TEXT,
			amount INTEGER NOT NULL,
			currency TEXT,
			zone_x INTEGER NOT NULL,
			zone_y INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind_tick ON events(kind, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_events_character_tick ON events(character_id, tick);`,
		`CREATE TABLE IF NOT EXISTS saves (
			slot TEXT NOT NULL,
			tick INTEGER NOT NULL,
			version INTEGER NOT NULL,
			now_ms INTEGER NOT NULL,
			path TEXT NOT NULL,
			characters INTEGER NOT NULL,
			respawns INTEGER NOT NULL,
			gold INTEGER NOT NULL,
			gems INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (slot, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropEventTotal: s.dropEvents.Load(),
		DropSaveTotal:  s.dropSaves.Load(),
		WriteFailTotal: s.writeFails.Load(),
	}
}

// WriteEvent implements the session event sink. It never blocks.
func (s *SQLiteIndex) WriteEvent(ev model.Event) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqEvent, event: ev}:
	default:
		s.dropEvents.Add(1)
	}
	return nil
}

// RecordSave indexes the metadata of a save written to path.
func (s *SQLiteIndex) RecordSave(path string, sv save.SaveV3) {
	if s == nil || s.closed.Load() {
		return
	}
	r := saveRow{
		Slot:       sv.Header.Slot,
		Version:    sv.Header.Version,
		Tick:       sv.Header.Tick,
		NowMs:      sv.NowMs,
		Path:       path,
		Characters: len(sv.Characters),
		Respawns:   len(sv.Respawns),
		Gold:       sv.Team.Gold,
		Gems:       sv.Team.Gems,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqSave, save: r}:
	default:
		s.dropSaves.Add(1)
	}
}

// UpsertCatalogs stores the content catalogs and the applied tuning, keyed by digest.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil || cats == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	read := func(name, file, digest string) {
		if configDir == "" {
			return
		}
		b, err := os.ReadFile(filepath.Join(configDir, file))
		if err != nil {
			return
		}
		rows = append(rows, kv{name: name, digest: digest, json: b})
	}
	read("monsters", "monsters.json", cats.Monsters.Digest)
	read("resources", "resources.json", cats.Resources.Digest)
	read("items", "items.json", cats.Items.Digest)
	read("upgrades", "upgrades.json", cats.Upgrades.Digest)
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// batch groups queued writes into one transaction, committed every commitEvery ops
// or commitMaxWait, whichever comes first.
type batch struct {
	s   *SQLiteIndex
	tx  *sql.Tx
	ops int
	at  time.Time

	insertEvent *sql.Stmt
	insertSave  *sql.Stmt
}

const (
	commitEvery   = 500
	commitMaxWait = time.Second
)

func (b *batch) begin() bool {
	if b.tx != nil {
		return true
	}
	tx, err := b.s.db.BeginTx(context.Background(), nil)
	if err != nil {
		b.s.writeFails.Add(1)
		time.Sleep(50 * time.Millisecond)
		return false
	}
	b.tx, b.ops, b.at = tx, 0, time.Now()
	return true
}

func (b *batch) end(commit bool) {
	if b.tx == nil {
		return
	}
	if commit {
		if err := b.tx.Commit(); err != nil {
			b.s.writeFails.Add(1)
		}
	} else {
		_ = b.tx.Rollback()
		b.s.writeFails.Add(1)
	}
	b.tx, b.ops, b.at = nil, 0, time.Now()
}

func (b *batch) apply(r req) error {
	switch r.kind {
	case reqEvent:
		ev := r.event
		raw, _ := json.Marshal(ev)
		_, err := b.tx.Stmt(b.insertEvent).Exec(
			int64(ev.Tick), ev.At.Milliseconds(), string(ev.Kind),
			ev.CharacterID, ev.MonsterID, ev.MonsterType, ev.Item,
			ev.Amount, ev.Currency, ev.Zone.X, ev.Zone.Y, string(raw),
		)
		return err
	case reqSave:
		sv := r.save
		_, err := b.tx.Stmt(b.insertSave).Exec(
			sv.Slot, int64(sv.Tick), sv.Version, sv.NowMs, sv.Path,
			sv.Characters, sv.Respawns, sv.Gold, sv.Gems, sv.RecordedAt,
		)
		return err
	}
	return fmt.Errorf("unknown request kind %d", r.kind)
}

func (s *SQLiteIndex) loop() {
	b := &batch{s: s, at: time.Now()}
	var err error
	if b.insertEvent, err = s.db.Prepare(`INSERT INTO events(tick,at_ms,kind,character_id,monster_id,monster_type,item,amount,currency,zone_x,zone_y,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`); err != nil {
		s.drain()
		return
	}
	defer b.insertEvent.Close()
	if b.insertSave, err = s.db.Prepare(`INSERT OR REPLACE INTO saves(slot,tick,version,now_ms,path,characters,respawns,gold,gems,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?)`); err != nil {
		s.drain()
		return
	}
	defer b.insertSave.Close()

	for r := range s.ch {
		if !b.begin() {
			continue
		}
		if err := b.apply(r); err != nil {
			b.end(false)
			continue
		}
		b.ops++
		if b.ops >= commitEvery || time.Since(b.at) >= commitMaxWait {
			b.end(true)
		}
	}
	b.end(true)
}

// drain discards the queue when statements cannot be prepared, counting every request as failed.
func (s *SQLiteIndex) drain() {
	for range s.ch {
		s.writeFails.Add(1)
	}
}
