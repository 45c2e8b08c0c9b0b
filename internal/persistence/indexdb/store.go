package indexdb

import (
	"context"

	"gridrealm.ai/internal/persistence/save"
)

// IndexedStore records save metadata in the index after every successful save.
type IndexedStore struct {
	save.Store
	Index *SQLiteIndex
	// Path names the location of a slot for the index row. Optional.
	Path func(slot string) string
}

func (s IndexedStore) Save(ctx context.Context, sv save.SaveV3) error {
	if err := s.Store.Save(ctx, sv); err != nil {
		return err
	}
	path := sv.Header.Slot
	if s.Path != nil {
		path = s.Path(sv.Header.Slot)
	}
	s.Index.RecordSave(path, sv)
	return nil
}
