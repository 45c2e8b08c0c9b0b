package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	session := fs.String("session", "default", "session name (ignored with -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	kind := fs.String("kind", "", "event kind filter (events)")
	character := fs.String("character", "", "character_id filter (events)")
	slot := fs.String("slot", "", "slot filter (saves)")
	_ = fs.Parse(args)

	q := "saves"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "sessions", *session, "index", "session.sqlite")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if *limit <= 0 {
		*limit = 20
	}
	var out any
	switch q {
	case "saves":
		out, err = querySaves(db, *slot, *limit)
	case "events":
		out, err = queryEvents(db, eventFilter{Kind: strings.ToUpper(*kind), CharacterID: *character, Limit: *limit})
	case "earnings":
		out, err = queryEarnings(db)
	case "catalogs":
		out, err = queryCatalogs(db)
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q, "(want saves|events|earnings|catalogs)")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

type saveRow struct {
	Slot       string `json:"slot"`
	Tick       int64  `json:"tick"`
	Version    int    `json:"version"`
	NowMs      int64  `json:"now_ms"`
	Path       string `json:"path"`
	Characters int    `json:"characters"`
	Respawns   int    `json:"respawns"`
	Gold       int64  `json:"gold"`
	Gems       int64  `json:"gems"`
	RecordedAt string `json:"recorded_at"`
}

func querySaves(db *sql.DB, slot string, limit int) ([]saveRow, error) {
	q := `SELECT slot,tick,version,now_ms,path,characters,respawns,gold,gems,recorded_at FROM saves`
	var args []any
	if slot != "" {
		q += ` WHERE slot=?`
		args = append(args, slot)
	}
	q += ` ORDER BY tick DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []saveRow
	for rows.Next() {
		var r saveRow
		if err := rows.Scan(&r.Slot, &r.Tick, &r.Version, &r.NowMs, &r.Path, &r.Characters, &r.Respawns, &r.Gold, &r.Gems, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type eventFilter struct {
	Kind        string
	CharacterID string
	Limit       int
}

type eventRow struct {
	Tick        int64  `json:"tick"`
	AtMs        int64  `json:"at_ms"`
	Kind        string `json:"kind"`
	CharacterID string `json:"character_id,omitempty"`
	MonsterID   string `json:"monster_id,omitempty"`
	MonsterType string `json:"monster_type,omitempty"`
	Item        string `json:"item,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Zone        [2]int `json:"zone"`
}

func queryEvents(db *sql.DB, f eventFilter) ([]eventRow, error) {
	q := `SELECT tick,at_ms,kind,COALESCE(character_id,''),COALESCE(monster_id,''),COALESCE(monster_type,''),COALESCE(item,''),amount,COALESCE(currency,''),zone_x,zone_y FROM events`
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		where = append(where, "kind=?")
		args = append(args, f.Kind)
	}
	if f.CharacterID != "" {
		where = append(where, "character_id=?")
		args = append(args, f.CharacterID)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []eventRow
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(&r.Tick, &r.AtMs, &r.Kind, &r.CharacterID, &r.MonsterID, &r.MonsterType, &r.Item, &r.Amount, &r.Currency, &r.Zone[0], &r.Zone[1]); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type earningRow struct {
	MonsterType string `json:"monster_type"`
	Currency    string `json:"currency"`
	Kills       int64  `json:"kills"`
	Total       int64  `json:"total"`
}

// queryEarnings totals kill rewards per monster type and currency.
func queryEarnings(db *sql.DB) ([]earningRow, error) {
	rows, err := db.Query(`SELECT monster_type,currency,COUNT(*),SUM(amount) FROM events WHERE kind='KILL' GROUP BY monster_type,currency ORDER BY SUM(amount) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []earningRow
	for rows.Next() {
		var r earningRow
		if err := rows.Scan(&r.MonsterType, &r.Currency, &r.Kills, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type catalogRow struct {
	Name      string `json:"name"`
	Digest    string `json:"digest"`
	UpdatedAt string `json:"updated_at"`
}

func queryCatalogs(db *sql.DB) ([]catalogRow, error) {
	rows, err := db.Query(`SELECT name,digest,updated_at FROM catalogs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []catalogRow
	for rows.Next() {
		var r catalogRow
		if err := rows.Scan(&r.Name, &r.Digest, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
