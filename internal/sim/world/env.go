package world

import (
	"time"

	"go.uber.org/zap"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/world/feature/combat"
	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/feature/survival/respawn"
	"gridrealm.ai/internal/sim/world/kernel/model"
	"gridrealm.ai/internal/sim/zones"
)

// simEnv adapts the session to the feature packages' Env interfaces.
type simEnv struct {
	w *World
}

func (w *World) env() simEnv { return simEnv{w: w} }

func (e simEnv) Now() time.Duration            { return e.w.now }
func (e simEnv) Tick() uint64                  { return e.w.tick }
func (e simEnv) Seed() int64                   { return e.w.tun.Seed }
func (e simEnv) TickDuration() time.Duration   { return e.w.tun.TickDuration() }
func (e simEnv) ReplanInterval() time.Duration { return e.w.tun.ReplanInterval() }
func (e simEnv) XPLevelBase() int              { return e.w.tun.XPLevelBase }
func (e simEnv) Team() *model.Team             { return &e.w.team }
func (e simEnv) Stats() model.TeamStats        { return e.w.team.Stats }
func (e simEnv) SpeedPct() float64             { return e.w.team.Stats.SpeedPct }
func (e simEnv) BaseMoveInterval() time.Duration {
	return e.w.tun.MoveInterval()
}

func (e simEnv) Rules() combat.Rules {
	return combat.Rules{
		TurnInterval: e.w.tun.CombatTurnInterval(),
		Mitigation:   e.w.tun.DefenseMitigation,
		HealFraction: e.w.tun.MonsterHealFraction,
		ReviveDelay:  e.w.tun.CharacterReviveDelay(),
	}
}

func (e simEnv) Home() model.ZoneID     { return e.w.zones.Home() }
func (e simEnv) RespawnTile() model.Pos { return e.w.zones.RespawnTile() }

func (e simEnv) Zone(id model.ZoneID) (*zones.Zone, bool) { return e.w.zones.Zone(id) }
func (e simEnv) IsWalkable(p model.Pos, zone model.ZoneID, ignoreAgents bool) bool {
	return e.w.oracle.IsWalkable(p, zone, ignoreAgents)
}
func (e simEnv) OccupiedNow(zone model.ZoneID, p model.Pos) bool {
	return e.w.reg.OccupiedNow(zone, p)
}

func (e simEnv) FindPath(start, goal model.Pos, zone model.ZoneID) ([]model.Pos, bool) {
	return e.w.finder.FindPath(start, goal, zone)
}
func (e simEnv) SearchPath(start model.Pos, goals []model.Pos, zone model.ZoneID) ([]model.Pos, bool) {
	res := e.w.finder.Search(start, goals, zone)
	return res.Path, res.Found
}
func (e simEnv) FindPathToZone(start model.Pos, from, to model.ZoneID) ([]model.Pos, bool) {
	return e.w.finder.FindPathToZone(start, from, to)
}
func (e simEnv) ApproachTiles(entityID string, fp model.Footprint, zone model.ZoneID) []model.Pos {
	return e.w.finder.ApproachTiles(entityID, fp, zone)
}

func (e simEnv) CrossGateway(c *model.Character) bool { return movement.Transfer(e, c) }

func (e simEnv) MoveCharacter(c *model.Character, zone model.ZoneID, p model.Pos) {
	e.w.reg.MoveCharacter(c, zone, p)
}

// EnterZone activates the destination zone and records the crossing.
func (e simEnv) EnterZone(c *model.Character, from model.ZoneID) {
	e.w.activateZone(c.ZoneID)
	e.w.emit(model.Event{
		Kind: model.EventZoneEnter, Tick: e.w.tick, At: e.w.now,
		CharacterID: c.ID, Zone: c.ZoneID,
	})
}

func (e simEnv) Resource(id string) (catalogs.ResourceDef, bool) {
	def, ok := e.w.cats.Resources.ByID[id]
	return def, ok
}

func (e simEnv) Monster(id string) (*model.Monster, bool) { return e.w.reg.Monster(id) }
func (e simEnv) IsRespawning(id string) bool              { return e.w.reg.IsRespawning(id) }
func (e simEnv) MonsterDef(typ string) (catalogs.MonsterDef, bool) {
	def, ok := e.w.cats.Monsters.ByID[typ]
	return def, ok
}

// Reserved reports whether a character other than charID holds p as its approach to monsterID.
func (e simEnv) Reserved(monsterID, charID string, p model.Pos) bool {
	return e.w.reserved(monsterID, charID, p)
}

func (e simEnv) Engage(c *model.Character, m *model.Monster) bool {
	return combat.Engage(e, c, m)
}

// DefeatMonster queues m for respawn after its type's delay.
func (e simEnv) DefeatMonster(m *model.Monster) {
	def := e.w.cats.Monsters.ByID[m.Type]
	due := e.w.now + respawn.Delay(def, e.w.tun.MonsterRespawnDelay())
	if _, ok := e.w.reg.Defeat(m.ID, due); !ok {
		e.w.log.Warn("defeat of unknown monster", zap.String("monster", m.ID))
		return
	}
	e.w.finder.Perimeters().Invalidate(m.ID)
}

func (w *World) reserved(monsterID, charID string, p model.Pos) bool {
	for _, c := range w.reg.Characters() {
		if c.ID == charID {
			continue
		}
		if i := c.MarkIndex(monsterID); i >= 0 && c.Marks[i].Approach == p {
			return true
		}
	}
	return false
}
