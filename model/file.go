package model

import "time"

// File is an uploaded blob's metadata. Rows are immutable after creation;
// the bytes live in object storage under Bucket/ObjectName.
type File struct {
	ID uint64 `gorm:"primaryKey"`

	OriginalName string `gorm:"column:original_name;size:512;not null"`
	Size         int64  `gorm:"column:size;not null"`
	ContentType  string `gorm:"column:content_type;size:128;not null;default:'application/octet-stream'"`

	Bucket     string `gorm:"column:bucket;size:64;not null"`
	ObjectName string `gorm:"column:object_name;size:256;not null;index"`

	CreatedAt time.Time
}

// TableName returns the database table name.
func (File) TableName() string {
	return "file"
}
