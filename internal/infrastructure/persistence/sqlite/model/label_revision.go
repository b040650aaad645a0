package model

import "time"

// LabelRevision rows are append-only; nothing updates or deletes them apart
// from a full label wipe.
type LabelRevision struct {
	RevisionID  string    `gorm:"column:revision_id;type:text;primaryKey"`
	ImageID     string    `gorm:"column:image_id;type:text;not null;index"`
	PayloadJSON string    `gorm:"column:payload_json;type:text;not null"`
	EditedBy    string    `gorm:"column:edited_by;type:text;not null"`
	EditedAt    time.Time `gorm:"column:edited_at;not null"`
}

func (LabelRevision) TableName() string {
	return "label_revisions"
}
