package world

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/tuning"
	"gridrealm.ai/internal/sim/world/feature/economy/stats"
	"gridrealm.ai/internal/sim/world/feature/entities"
	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/feature/pathing"
	"gridrealm.ai/internal/sim/world/feature/walkability"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

type Config struct {
	Tuning   tuning.Tuning
	Zones    *zones.Registry
	Catalogs *catalogs.Catalogs
	Logger   *zap.Logger
	// Sink receives events as they happen. Optional.
	Sink EventSink
}

// EventSink consumes state-affecting events. Implemented in internal/persistence/*.
type EventSink interface {
	WriteEvent(ev model.Event) error
}

// EventSinks fans an event out to every sink. Nil entries are skipped.
type EventSinks []EventSink

func (s EventSinks) WriteEvent(ev model.Event) error {
	var errs []error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.WriteEvent(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// World is one simulation session. It is single-threaded: all access happens from the
// goroutine driving Step.
type World struct {
	tun   tuning.Tuning
	zones *zones.Registry
	cats  *catalogs.Catalogs
	log   *zap.Logger
	sink  EventSink

	reg    *entities.Registry
	oracle *walkability.Oracle
	finder *pathing.Finder

	tick     uint64
	now      time.Duration
	team     model.Team
	active   string
	nextChar int

	intents []Intent
	events  []model.Event
	dirty   bool
}

func New(cfg Config) (*World, error) {
	if cfg.Zones == nil || cfg.Catalogs == nil {
		return nil, fmt.Errorf("%w: zones and catalogs are required", ErrConfigMissing)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		tun:   cfg.Tuning,
		zones: cfg.Zones,
		cats:  cfg.Catalogs,
		log:   log,
		sink:  cfg.Sink,
	}
	w.reset()
	for k, n := range w.tun.StarterItems {
		w.team.Inventory[k] += n
	}
	w.recomputeStats()

	home := w.zones.Home()
	w.activateZone(home)
	for i := 0; i < w.tun.StartingCharacters; i++ {
		if _, err := w.addCharacter(); err != nil {
			return nil, err
		}
	}
	w.reg.Commit()
	w.dirty = true
	return w, nil
}

// reset drops all mutable state.
func (w *World) reset() {
	w.reg = entities.NewRegistry()
	w.oracle = walkability.New(w.zones, w.reg)
	w.finder = pathing.NewFinder(w.oracle, w.zones)
	w.tick = 0
	w.now = 0
	w.team = model.Team{}
	w.team.InitDefaults()
	w.active = ""
	w.nextChar = 0
	w.intents = nil
	w.events = nil
}

func (w *World) Tick() uint64            { return w.tick }
func (w *World) Now() time.Duration      { return w.now }
func (w *World) Tuning() tuning.Tuning   { return w.tun }
func (w *World) Zones() *zones.Registry  { return w.zones }
func (w *World) Team() model.Team        { return w.team }
func (w *World) Stats() model.TeamStats  { return w.team.Stats }
func (w *World) ActiveCharacter() string { return w.active }

func (w *World) Character(id string) (*model.Character, bool) { return w.reg.Character(id) }
func (w *World) Characters() []*model.Character               { return w.reg.Characters() }
func (w *World) Monster(id string) (*model.Monster, bool)     { return w.reg.Monster(id) }
func (w *World) Monsters() []*model.Monster                   { return w.reg.Monsters() }
func (w *World) Respawns() []model.RespawnRecord              { return w.reg.AllRespawns() }

// Dirty reports whether state changed since the last MarkSaved.
func (w *World) Dirty() bool { return w.dirty }
func (w *World) MarkSaved()  { w.dirty = false }

// DrainEvents returns and clears the events recorded since the last call.
func (w *World) DrainEvents() []model.Event {
	out := w.events
	w.events = nil
	return out
}

func (w *World) emit(evs ...model.Event) {
	for _, ev := range evs {
		w.events = append(w.events, ev)
		if w.sink != nil {
			if err := w.sink.WriteEvent(ev); err != nil {
				w.log.Warn("event sink", zap.String("kind", string(ev.Kind)), zap.Error(err))
			}
		}
	}
	if len(evs) > 0 {
		w.dirty = true
	}
}

func (w *World) recomputeStats() {
	prev := w.team.Stats
	w.team.Stats = stats.Recompute(w.tun.Base, &w.team, w.cats)
	if prev.MaxHP != w.team.Stats.MaxHP {
		stats.ApplyMaxHP(w.reg.Characters(), w.team.Stats.MaxHP)
	}
}

// addCharacter creates a character on the free tile nearest the home respawn tile.
func (w *World) addCharacter() (*model.Character, error) {
	home := w.zones.Home()
	spot, ok := movement.NearestFree(w.env(), home, w.zones.RespawnTile())
	if !ok {
		return nil, fmt.Errorf("%w: no free tile near respawn", ErrUnreachable)
	}
	w.nextChar++
	c := &model.Character{
		ID:     fmt.Sprintf("C%d", w.nextChar),
		Name:   fmt.Sprintf("Adventurer %d", w.nextChar),
		ZoneID: home,
		Pos:    spot,
		HP:     w.team.Stats.MaxHP,
		MaxHP:  w.team.Stats.MaxHP,
	}
	c.InitDefaults()
	if err := w.reg.AddCharacter(c); err != nil {
		return nil, err
	}
	if w.active == "" {
		w.active = c.ID
	}
	return c, nil
}

// activateZone spawns a zone's templates the first time it is entered. A template whose
// footprint is occupied is queued to respawn immediately instead.
func (w *World) activateZone(id model.ZoneID) {
	if !w.reg.ActivateZone(id) {
		return
	}
	z, ok := w.zones.Zone(id)
	if !ok {
		return
	}
	for _, sp := range z.Spawns() {
		if w.reg.Known(sp.ID) {
			continue
		}
		m, err := w.monsterFromTemplate(id, sp)
		if err != nil {
			w.log.Warn("spawn skipped", zap.String("spawn", sp.ID), zap.Error(err))
			continue
		}
		if w.footprintOccupied(m) {
			if err := w.reg.Enqueue(model.RespawnRecord{Monster: m, DueAt: w.now}); err != nil {
				w.log.Warn("spawn deferred", zap.String("spawn", sp.ID), zap.Error(err))
			}
			continue
		}
		if _, err := w.reg.SpawnMonster(m); err != nil {
			w.log.Warn("spawn failed", zap.String("spawn", sp.ID), zap.Error(err))
		}
	}
	w.dirty = true
}

func (w *World) monsterFromTemplate(zone model.ZoneID, sp zones.Spawn) (model.Monster, error) {
	def, ok := w.cats.Monsters.ByID[sp.Monster]
	if !ok {
		return model.Monster{}, fmt.Errorf("%w: monster type %s", ErrConfigMissing, sp.Monster)
	}
	return model.Monster{
		ID:     sp.ID,
		Type:   def.ID,
		ZoneID: zone,
		Pos:    sp.At,
		Size:   model.Size{W: def.Size[0], H: def.Size[1]}.Normalize(),
		HP:     def.MaxHP,
		MaxHP:  def.MaxHP,
		Attack: def.Attack,
		Boss:   def.Boss,
	}, nil
}

func (w *World) footprintOccupied(m model.Monster) bool {
	for _, p := range m.Footprint().Tiles() {
		if w.reg.OccupiedNow(m.ZoneID, p) {
			return true
		}
	}
	return false
}

func (w *World) character(id string) (*model.Character, error) {
	c, ok := w.reg.Character(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}
	return c, nil
}
