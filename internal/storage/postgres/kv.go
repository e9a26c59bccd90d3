package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/budget-story/internal/core/datamodel/kv"
	"github.com/frahmantamala/budget-story/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KeyValueRepository implements storage.KeyValueAPI on the kv_store table.
// It works with both the PostgreSQL and the SQLite dialector.
type KeyValueRepository struct {
	db *gorm.DB
}

func NewKeyValueRepository(db *gorm.DB) storage.KeyValueAPI {
	return &KeyValueRepository{db: db}
}

func (r *KeyValueRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry kv.Entry
	err := r.db.WithContext(ctx).Where("store_key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return []byte(entry.Value), nil
}

// Put upserts so a snapshot write is a single statement.
func (r *KeyValueRepository) Put(ctx context.Context, key string, value []byte) error {
	entry := kv.Entry{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"store_value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (r *KeyValueRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("store_key = ?", key).Delete(&kv.Entry{}).Error
}
