package model

import "time"

type Label struct {
	ImageID          string    `gorm:"column:image_id;type:text;primaryKey"`
	LabeledBy        string    `gorm:"column:labeled_by;type:text;not null;index:idx_labels_by_created"`
	OriginalLabeler  *string   `gorm:"column:original_labeler;type:text"`
	Flagged          bool      `gorm:"column:flagged;not null;default:0"`
	SchemaVersion    int       `gorm:"column:schema_version;not null;default:1"`
	PayloadJSON      string    `gorm:"column:payload_json;type:text;not null"`
	TimestampCreated time.Time `gorm:"column:timestamp_created;not null;index:idx_labels_by_created"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"`
}

func (Label) TableName() string {
	return "labels"
}
