package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"gridrealm.ai/internal/config"
	"gridrealm.ai/internal/logging"
	persistlog "gridrealm.ai/internal/persistence/log"
	"gridrealm.ai/internal/persistence/save"
	"gridrealm.ai/internal/sim/world"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

// Headless runner: loads a save (or starts fresh), simulates N seconds of game time
// as fast as possible and prints a summary.
func main() {
	var (
		savePath   = flag.String("save", "", "path to .save.zst (optional; default: new session)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seconds    = flag.Float64("seconds", 60, "game seconds to simulate")
		task       = flag.String("task", "", "start this task on the active character (hunting|mining|woodcutting|fishing)")
		resource   = flag.String("resource", "", "resource id for gathering tasks (optional)")
		marks      = flag.String("mark", "", "comma-separated monster ids to mark before hunting")
		outPath    = flag.String("out", "", "write the resulting save here (optional)")
		eventsDir  = flag.String("events", "", "session dir whose journal to summarize instead of simulating")
		asJSON     = flag.Bool("json", false, "print the summary as JSON")
	)
	flag.Parse()

	if *eventsDir != "" {
		sum, err := summarizeJournal(*eventsDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "journal:", err)
			os.Exit(1)
		}
		printJournal(os.Stdout, sum)
		return
	}

	bundle, err := config.Load(*configDir, *tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(bundle.Tuning.LogLevel, bundle.Tuning.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	wcfg := world.Config{
		Tuning:   bundle.Tuning,
		Zones:    bundle.Zones,
		Catalogs: bundle.Catalogs,
		Logger:   logger.Named("world"),
	}
	w, err := openWorld(wcfg, *savePath)
	if err != nil {
		logger.Fatal("open session", zap.Error(err))
	}

	if *task != "" {
		if err := startTask(w, *task, *resource, splitList(*marks)); err != nil {
			logger.Fatal("start task", zap.String("task", *task), zap.Error(err))
		}
	}

	ticks := int(time.Duration(*seconds*float64(time.Second)) / bundle.Tuning.TickDuration())
	sum := simulate(w, ticks)

	if *outPath != "" {
		if err := writeSave(*outPath, w.ExportSave("replay")); err != nil {
			logger.Fatal("write save", zap.Error(err))
		}
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(sum)
		return
	}
	printSummary(os.Stdout, sum)
}

func openWorld(cfg world.Config, path string) (*world.World, error) {
	if path == "" {
		return world.New(cfg)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := save.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return world.NewFromSave(cfg, s)
}

func startTask(w *world.World, name, resource string, monsters []string) error {
	t, err := model.ParseTask(name)
	if err != nil {
		return err
	}
	charID := w.ActiveCharacter()
	for _, id := range monsters {
		m, ok := w.Monster(id)
		if !ok {
			return fmt.Errorf("monster %s is not live", id)
		}
		if err := w.ToggleMark(charID, m.Pos); err != nil {
			return fmt.Errorf("mark %s: %w", id, err)
		}
	}
	return w.StartTask(charID, t, resource)
}

type characterSummary struct {
	ID     string         `json:"id"`
	Zone   [2]int         `json:"zone"`
	Pos    [2]int         `json:"pos"`
	HP     float64        `json:"hp"`
	MaxHP  float64        `json:"max_hp"`
	Dead   bool           `json:"dead,omitempty"`
	Task   string         `json:"task,omitempty"`
	Status string         `json:"status,omitempty"`
	Skills map[string]int `json:"skills,omitempty"`
}

type summary struct {
	Ticks      uint64             `json:"ticks"`
	GameTime   string             `json:"game_time"`
	Wall       string             `json:"wall"`
	Gold       int64              `json:"gold"`
	Gems       int64              `json:"gems"`
	Inventory  map[string]int     `json:"inventory,omitempty"`
	Events     map[string]int     `json:"events"`
	Kills      map[string]int     `json:"kills,omitempty"`
	Characters []characterSummary `json:"characters"`
}

func simulate(w *world.World, ticks int) summary {
	sum := summary{Events: map[string]int{}, Kills: map[string]int{}}
	start := time.Now()
	from := w.Tick()
	for i := 0; i < ticks; i++ {
		w.Step()
		for _, ev := range w.DrainEvents() {
			sum.Events[string(ev.Kind)]++
			if ev.Kind == model.EventKill {
				sum.Kills[ev.MonsterType]++
			}
		}
	}
	sum.Ticks = w.Tick() - from
	sum.GameTime = w.Now().String()
	sum.Wall = time.Since(start).Round(time.Millisecond).String()

	f := w.Frame()
	sum.Gold = f.Team.Gold
	sum.Gems = f.Team.Gems
	sum.Inventory = f.Team.Inventory
	for _, c := range f.Characters {
		sum.Characters = append(sum.Characters, characterSummary{
			ID: c.ID, Zone: c.Zone, Pos: c.Pos, HP: c.HP, MaxHP: c.MaxHP,
			Dead: c.Dead, Task: c.Task, Status: c.Status, Skills: c.Skills,
		})
	}
	return sum
}

func printSummary(out io.Writer, s summary) {
	fmt.Fprintf(out, "simulated ticks=%d game_time=%s wall=%s\n", s.Ticks, s.GameTime, s.Wall)
	fmt.Fprintf(out, "team gold=%d gems=%d\n", s.Gold, s.Gems)
	for _, k := range sortedKeys(s.Inventory) {
		fmt.Fprintf(out, "  item %-16s %d\n", k, s.Inventory[k])
	}
	for _, k := range sortedKeys(s.Events) {
		fmt.Fprintf(out, "  event %-15s %d\n", k, s.Events[k])
	}
	for _, k := range sortedKeys(s.Kills) {
		fmt.Fprintf(out, "  kill %-16s %d\n", k, s.Kills[k])
	}
	for _, c := range s.Characters {
		fmt.Fprintf(out, "character %s zone=%v pos=%v hp=%.0f/%.0f task=%s", c.ID, c.Zone, c.Pos, c.HP, c.MaxHP, c.Task)
		if c.Dead {
			fmt.Fprint(out, " dead")
		}
		if c.Status != "" {
			fmt.Fprintf(out, " status=%q", c.Status)
		}
		fmt.Fprintln(out)
		for _, k := range sortedKeys(c.Skills) {
			fmt.Fprintf(out, "  skill %-12s xp=%d\n", k, c.Skills[k])
		}
	}
}

type journalSummary struct {
	Files  int
	First  uint64
	Last   uint64
	Events map[string]int
	Gold   int64
}

func summarizeJournal(sessionDir string) (journalSummary, error) {
	sum := journalSummary{Events: map[string]int{}}
	files, err := persistlog.EventFiles(sessionDir)
	if err != nil {
		return sum, err
	}
	if len(files) == 0 {
		return sum, errors.New("no journal files in " + sessionDir)
	}
	sum.Files = len(files)
	for _, path := range files {
		err := persistlog.ReadEvents(path, func(e persistlog.Entry) bool {
			if sum.First == 0 || e.Tick < sum.First {
				sum.First = e.Tick
			}
			if e.Tick > sum.Last {
				sum.Last = e.Tick
			}
			sum.Events[string(e.Kind)]++
			if e.Kind == model.EventKill && e.Currency == "gold" {
				sum.Gold += e.Amount
			}
			return true
		})
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func printJournal(out io.Writer, s journalSummary) {
	fmt.Fprintf(out, "journal files=%d ticks=%d..%d gold_earned=%d\n", s.Files, s.First, s.Last, s.Gold)
	for _, k := range sortedKeys(s.Events) {
		fmt.Fprintf(out, "  %-15s %d\n", k, s.Events[k])
	}
}

func writeSave(path string, s save.SaveV3) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := save.Write(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
