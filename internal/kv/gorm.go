package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edumunicipal/school-backend/internal/domain"
)

// GormStore keeps values in the relational backend's blobs table, one row
// per key. Useful when the deployment already runs on SQLite/Postgres and a
// separate data directory or Redis is unwanted.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an existing GORM handle. The blobs table must be part
// of the schema migration (see repo.AutoMigrate).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the whole value for key; a missing row maps to "absent".
func (s *GormStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var row domain.Blob
	err := s.db.WithContext(ctx).First(&row, "key = ?", string(key)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row.Value, true, nil
}

// Set upserts the value for key.
func (s *GormStore) Set(ctx context.Context, key Key, value []byte) error {
	row := domain.Blob{Key: string(key), Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

// Delete removes the row for key; absent keys are a no-op.
func (s *GormStore) Delete(ctx context.Context, key Key) error {
	return s.db.WithContext(ctx).
		Delete(&domain.Blob{}, "key = ?", string(key)).Error
}

var _ Store = (*GormStore)(nil)
