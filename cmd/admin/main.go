package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gridrealm.ai/internal/persistence/save"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "save":
			saveCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	sessions, err := listSessions(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, s := range sessions {
		fmt.Printf("%s\tsaves=%s\n", s.Name, strings.Join(s.Slots, ","))
	}
}

type sessionInfo struct {
	Name  string
	Slots []string
}

func listSessions(dataDir string) ([]sessionInfo, error) {
	base := filepath.Join(dataDir, "sessions")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var out []sessionInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		fs := save.NewFileStore(filepath.Join(base, e.Name(), "saves"))
		slots, err := fs.Slots()
		if err != nil {
			return nil, err
		}
		out = append(out, sessionInfo{Name: e.Name(), Slots: slots})
	}
	return out, nil
}

// inspect prints a save's header and a summary of its body.
func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	session := fs.String("session", "default", "session name (ignored with -file)")
	slot := fs.String("slot", "default", "save slot (ignored with -file)")
	file := fs.String("file", "", "path to a .save.zst (optional)")
	full := fs.Bool("full", false, "print the whole save as JSON")
	_ = fs.Parse(args)

	var (
		s   save.SaveV3
		err error
	)
	if *file != "" {
		s, err = readSaveFile(*file)
	} else {
		st := save.NewFileStore(filepath.Join(*dataDir, "sessions", *session, "saves"))
		s, err = st.Load(context.Background(), *slot)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}
	if *full {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(s)
		return
	}
	printSaveSummary(os.Stdout, s)
}

func readSaveFile(path string) (save.SaveV3, error) {
	f, err := os.Open(path)
	if err != nil {
		return save.SaveV3{}, err
	}
	defer f.Close()
	return save.Read(f)
}

func printSaveSummary(out io.Writer, s save.SaveV3) {
	fmt.Fprintf(out, "save v%d slot=%s tick=%d now_ms=%d seed=%d\n",
		s.Header.Version, s.Header.Slot, s.Header.Tick, s.NowMs, s.Seed)
	fmt.Fprintf(out, "team gold=%d gems=%d upgrades=%d unlocked_drops=%d first_kills=%d\n",
		s.Team.Gold, s.Team.Gems, len(s.Team.Upgrades), len(s.Team.UnlockedDrops), len(s.Team.FirstKills))
	fmt.Fprintf(out, "zones activated=%d respawns pending=%d\n", len(s.ActivatedZones), len(s.Respawns))
	for _, c := range s.Characters {
		fmt.Fprintf(out, "character %s zone=%v pos=%v hp=%.0f marks=%d task=%s\n",
			c.ID, c.Zone, c.Pos, c.HP, len(c.Marks), c.Task)
	}
}
