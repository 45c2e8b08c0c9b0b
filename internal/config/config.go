package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/tuning"
	"gridrealm.ai/internal/sim/zones"
)

// Bundle is everything a session needs from the config directory.
type Bundle struct {
	Dir      string
	Tuning   tuning.Tuning
	Catalogs *catalogs.Catalogs
	Zones    *zones.Registry
}

// Load reads tuning, catalogs and zones from dir. tuningPath overrides <dir>/tuning.yaml;
// a missing tuning file falls back to defaults.
func Load(dir, tuningPath string) (Bundle, error) {
	b := Bundle{Dir: dir}

	tp := strings.TrimSpace(tuningPath)
	if tp == "" {
		tp = filepath.Join(dir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	switch {
	case err == nil:
	case os.IsNotExist(err) && tuningPath == "":
		tune = tuning.Defaults()
	default:
		return b, fmt.Errorf("load tuning: %w", err)
	}
	b.Tuning = tune

	cats, err := catalogs.Load(dir)
	if err != nil {
		return b, fmt.Errorf("load catalogs: %w", err)
	}
	b.Catalogs = cats

	zcfg, err := zones.Load(filepath.Join(dir, "zones.yaml"))
	if err != nil {
		return b, fmt.Errorf("load zones: %w", err)
	}
	reg, err := zones.Build(zcfg, cats)
	if err != nil {
		return b, fmt.Errorf("build zones: %w", err)
	}
	b.Zones = reg
	return b, nil
}
