package model

import "time"

type User struct {
	Username             string     `gorm:"column:username;type:text;primaryKey"`
	Role                 string     `gorm:"column:role;type:text;not null;default:'labeler'"`
	Enabled              bool       `gorm:"column:enabled;not null;default:1"`
	PasswordHash         string     `gorm:"column:password_hash;type:text;not null;default:''"`
	CurrentPropertyID    *string    `gorm:"column:current_property_id;type:text;index"`
	ImagesConfirmed      int64      `gorm:"column:images_confirmed;not null;default:0"`
	ImagesToReview       int64      `gorm:"column:images_to_review;not null;default:0"`
	ImagesProcessed      int64      `gorm:"column:images_processed;not null;default:0"`
	LastLabeledImageID   *string    `gorm:"column:last_labeled_image_id;type:text"`
	TimestampLastLabeled *time.Time `gorm:"column:timestamp_last_labeled"`
	Version              uint64     `gorm:"column:version;not null;default:0"`
}

func (User) TableName() string {
	return "users"
}
