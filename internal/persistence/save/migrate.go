package save

import "fmt"

type migration struct {
	from  int
	apply func(doc map[string]any) error
}

// migrations run in order; each lifts a body from version `from` to from+1.
var migrations = []migration{
	{from: 1, apply: v1ToV2},
	{from: 2, apply: v2ToV3},
}

// Migrate upgrades doc in place from version to CurrentVersion.
func Migrate(doc map[string]any, version int) error {
	for _, m := range migrations {
		if m.from < version {
			continue
		}
		if err := m.apply(doc); err != nil {
			return fmt.Errorf("migrate v%d->v%d: %w", m.from, m.from+1, err)
		}
		version = m.from + 1
	}
	if version != CurrentVersion {
		return fmt.Errorf("%w: stuck at %d", ErrUnsupportedVersion, version)
	}
	setVersion(doc, CurrentVersion)
	return nil
}

// v1ToV2 adds unlocked_drops and first_kills to the team.
func v1ToV2(doc map[string]any) error {
	team, err := object(doc, "team")
	if err != nil {
		return err
	}
	ensureObject(team, "unlocked_drops")
	ensureObject(team, "first_kills")
	setVersion(doc, 2)
	return nil
}

// v2ToV3 adds activated_zones, respawns and per-character skills.
func v2ToV3(doc map[string]any) error {
	if _, ok := doc["activated_zones"]; !ok {
		doc["activated_zones"] = []any{}
	}
	if _, ok := doc["respawns"]; !ok {
		doc["respawns"] = []any{}
	}
	chars, _ := doc["characters"].([]any)
	for i, c := range chars {
		obj, ok := c.(map[string]any)
		if !ok {
			return fmt.Errorf("characters[%d] is not an object", i)
		}
		ensureObject(obj, "skills")
	}
	setVersion(doc, 3)
	return nil
}

func object(doc map[string]any, key string) (map[string]any, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		obj := map[string]any{}
		doc[key] = obj
		return obj, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is not an object", key)
	}
	return obj, nil
}

func ensureObject(doc map[string]any, key string) {
	if v, ok := doc[key].(map[string]any); ok && v != nil {
		return
	}
	doc[key] = map[string]any{}
}

func setVersion(doc map[string]any, v int) {
	h, ok := doc["header"].(map[string]any)
	if !ok {
		h = map[string]any{}
		doc["header"] = h
	}
	h["version"] = v
}
