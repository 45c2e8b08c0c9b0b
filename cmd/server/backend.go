package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"gridrealm.ai/internal/persistence/indexdb"
	"gridrealm.ai/internal/persistence/pgstore"
	"gridrealm.ai/internal/persistence/save"
)

type backendConfig struct {
	SessionDir string
	PGDSN      string
	DisableDB  bool
}

// backend bundles the save store and the optional read-model index.
type backend struct {
	Store save.Store
	Index *indexdb.SQLiteIndex

	closers []func() error
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func openBackend(cfg backendConfig, logger *zap.Logger) (*backend, error) {
	b := &backend{}

	var store save.Store
	var pathOf func(slot string) string
	if dsn := strings.TrimSpace(cfg.PGDSN); dsn != "" {
		pg, err := pgstore.Open(dsn)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pg.Close)
		store = pg
		pathOf = func(slot string) string { return "postgres:" + slot }
		logger.Info("save store: postgres")
	} else {
		fs := save.NewFileStore(filepath.Join(cfg.SessionDir, "saves"))
		store = fs
		pathOf = fs.Path
		logger.Info("save store: file", zap.String("dir", fs.Dir))
	}

	idx, err := openIndex(cfg, logger)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if idx != nil {
		b.Index = idx
		b.closers = append(b.closers, idx.Close)
		store = indexdb.IndexedStore{Store: store, Index: idx, Path: pathOf}
	}
	b.Store = store
	return b, nil
}

func openIndex(cfg backendConfig, logger *zap.Logger) (*indexdb.SQLiteIndex, error) {
	if cfg.DisableDB {
		return nil, nil
	}
	kind := strings.ToLower(strings.TrimSpace(os.Getenv("GR_INDEX_BACKEND")))
	if kind == "" {
		kind = "sqlite"
	}
	switch kind {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		path := filepath.Join(cfg.SessionDir, "index", "session.sqlite")
		logger.Info("index: sqlite", zap.String("path", path))
		return indexdb.OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported GR_INDEX_BACKEND: %s", kind)
	}
}
