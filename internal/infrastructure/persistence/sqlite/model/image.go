package model

import "time"

type Image struct {
	ImageID                  string     `gorm:"column:image_id;type:text;primaryKey"`
	Status                   string     `gorm:"column:status;type:text;not null;index"`
	QAStatus                 string     `gorm:"column:qa_status;type:text;not null;default:'';index"`
	AssignedTo               *string    `gorm:"column:assigned_to;type:text;index"`
	PropertyID               *string    `gorm:"column:property_id;type:text;index"`
	BBURL                    string     `gorm:"column:bb_url;type:text;not null;default:''"`
	ImageURL                 string     `gorm:"column:image_url;type:text;not null;default:''"`
	TimestampUploaded        *time.Time `gorm:"column:timestamp_uploaded;index"`
	TimestampAssigned        *time.Time `gorm:"column:timestamp_assigned"`
	TimestampLabeled         *time.Time `gorm:"column:timestamp_labeled"`
	TimestampConfirmed       *time.Time `gorm:"column:timestamp_confirmed"`
	TimestampReviewRequested *time.Time `gorm:"column:timestamp_review_requested"`
	TaskExpiresAt            *time.Time `gorm:"column:task_expires_at"`
	Flagged                  bool       `gorm:"column:flagged;not null;default:0"`
	QAFeedback               *string    `gorm:"column:qa_feedback;type:text"`
	ConfirmedBy              *string    `gorm:"column:confirmed_by;type:text"`
	ReviewRequestedBy        *string    `gorm:"column:review_requested_by;type:text"`
	ResolverFailureCount     int64      `gorm:"column:resolver_failure_count;not null;default:0"`
	LastResolverError        *string    `gorm:"column:last_resolver_error;type:text"`
	Version                  uint64     `gorm:"column:version;not null;default:0"`
}

func (Image) TableName() string {
	return "images"
}
