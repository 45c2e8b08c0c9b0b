package pathing

import "gridrealm.ai/internal/sim/world/kernel/model"

type placed struct {
	anchor model.Pos
	tiles  []model.Pos
}

// PerimeterCache indexes footprint perimeters. Relative offsets are cached per size class and
// absolute tiles per entity, recomputed only when the entity's anchor moves.
type PerimeterCache struct {
	bySize   map[model.Size][]model.Pos
	byEntity map[string]placed
}

func NewPerimeterCache() *PerimeterCache {
	return &PerimeterCache{
		bySize:   map[model.Size][]model.Pos{},
		byEntity: map[string]placed{},
	}
}

// Offsets lists the orthogonal ring around a w x h footprint: top, right, bottom, left.
func (c *PerimeterCache) Offsets(s model.Size) []model.Pos {
	s = s.Normalize()
	if off, ok := c.bySize[s]; ok {
		return off
	}
	off := make([]model.Pos, 0, 2*(s.W+s.H))
	for dx := 0; dx < s.W; dx++ {
		off = append(off, model.Pos{X: dx, Y: -1})
	}
	for dy := 0; dy < s.H; dy++ {
		off = append(off, model.Pos{X: s.W, Y: dy})
	}
	for dx := s.W - 1; dx >= 0; dx-- {
		off = append(off, model.Pos{X: dx, Y: s.H})
	}
	for dy := s.H - 1; dy >= 0; dy-- {
		off = append(off, model.Pos{X: -1, Y: dy})
	}
	c.bySize[s] = off
	return off
}

// For returns the absolute perimeter of fp for entityID.
func (c *PerimeterCache) For(entityID string, fp model.Footprint) []model.Pos {
	if p, ok := c.byEntity[entityID]; ok && p.anchor == fp.Anchor && len(p.tiles) == len(c.Offsets(fp.Size)) {
		return p.tiles
	}
	off := c.Offsets(fp.Size)
	tiles := make([]model.Pos, len(off))
	for i, o := range off {
		tiles[i] = fp.Anchor.Add(o.X, o.Y)
	}
	if entityID != "" {
		c.byEntity[entityID] = placed{anchor: fp.Anchor, tiles: tiles}
	}
	return tiles
}

// Invalidate drops the cached absolute perimeter of entityID.
func (c *PerimeterCache) Invalidate(entityID string) {
	delete(c.byEntity, entityID)
}
