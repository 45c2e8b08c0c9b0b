package respawn

import (
	"time"

	"gridrealm.ai/internal/sim/world/feature/movement"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

type ReviveEnv interface {
	movement.TileEnv
	Now() time.Duration
	Tick() uint64
	Home() model.ZoneID
	RespawnTile() model.Pos
	MoveCharacter(c *model.Character, zone model.ZoneID, p model.Pos)
	EnterZone(c *model.Character, from model.ZoneID)
}

// Revive restores a dead character at full health on the home respawn tile once its delay has passed.
func Revive(env ReviveEnv, c *model.Character) (model.Event, bool) {
	if c == nil || !c.Dead || env.Now() < c.ReviveAt {
		return model.Event{}, false
	}
	home := env.Home()
	spot, ok := movement.NearestFree(env, home, env.RespawnTile())
	if !ok {
		// Respawn area saturated; try again next tick.
		return model.Event{}, false
	}
	from := c.ZoneID
	env.MoveCharacter(c, home, spot)
	c.Dead = false
	c.HP = c.MaxHP
	c.ReviveAt = 0
	c.ClearPath()
	c.Disengage()
	c.Visual = model.VisualAt(spot)
	c.Status = ""
	if from != home {
		env.EnterZone(c, from)
	}
	return model.Event{
		Kind: model.EventRevive, Tick: env.Tick(), At: env.Now(),
		CharacterID: c.ID, Zone: home,
	}, true
}
