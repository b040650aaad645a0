package model

import "time"

// LabelerKV backs the generic cache adapter. ExpiresAt nil means the entry
// never expires.
type LabelerKV struct {
	Key       string     `gorm:"column:key;type:text;primaryKey"`
	Value     string     `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
}

func (LabelerKV) TableName() string {
	return "labeler_kv"
}
