package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gridrealm.ai/internal/persistence/save"
)

// SaveRow is one slot. Body holds the same JSON the file store writes after its header line.
type SaveRow struct {
	Slot      string `gorm:"primaryKey;size:64"`
	Version   int    `gorm:"not null"`
	Tick      uint64 `gorm:"not null"`
	Body      []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (SaveRow) TableName() string { return "gridrealm_saves" }

type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db)
}

// New wraps an open database and migrates the saves table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&SaveRow{}); err != nil {
		return nil, fmt.Errorf("migrate saves: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(ctx context.Context, sv save.SaveV3) error {
	row, err := toRow(sv)
	if err != nil {
		return err
	}
	row.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).
		Where(&SaveRow{Slot: row.Slot}).
		Assign(SaveRow{Version: row.Version, Tick: row.Tick, Body: row.Body, UpdatedAt: row.UpdatedAt}).
		FirstOrCreate(&SaveRow{}).Error
}

func (s *Store) Load(ctx context.Context, slot string) (save.SaveV3, error) {
	var row SaveRow
	err := s.db.WithContext(ctx).Where(&SaveRow{Slot: slot}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return save.SaveV3{}, fmt.Errorf("%w: %s", save.ErrNotFound, slot)
	}
	if err != nil {
		return save.SaveV3{}, err
	}
	return fromRow(row)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(sv save.SaveV3) (SaveRow, error) {
	if sv.Header.Slot == "" {
		return SaveRow{}, fmt.Errorf("save slot must not be empty")
	}
	body, err := save.Marshal(sv)
	if err != nil {
		return SaveRow{}, err
	}
	return SaveRow{Slot: sv.Header.Slot, Version: save.CurrentVersion, Tick: sv.Header.Tick, Body: body}, nil
}

func fromRow(row SaveRow) (save.SaveV3, error) {
	sv, err := save.Unmarshal(row.Version, row.Body)
	if err != nil {
		return save.SaveV3{}, fmt.Errorf("slot %s: %w", row.Slot, err)
	}
	sv.Header.Slot = row.Slot
	return sv, nil
}
