package kv

import "time"

// Entry is one row of the durable key-value table.
type Entry struct {
	Key       string    `gorm:"column:store_key;primaryKey;size:128"`
	Value     string    `gorm:"column:store_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "kv_store"
}
