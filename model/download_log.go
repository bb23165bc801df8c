package model

import "time"

// DownloadLog is an append-only audit record of a consumed download.
// Rows are never updated or deleted by the service.
type DownloadLog struct {
	ID uint64 `gorm:"primaryKey"`

	ShareLinkID uint64    `gorm:"column:share_link_id;not null;index"`
	ShareLink   ShareLink `gorm:"foreignKey:ShareLinkID;references:ID"`

	UserAgent string `gorm:"column:user_agent;type:text"`
	SourceIP  string `gorm:"column:source_ip;size:64;not null;default:''"`

	DownloadedAt time.Time `gorm:"column:downloaded_at;not null;index"`
	CreatedAt    time.Time
}

// TableName returns the database table name.
func (DownloadLog) TableName() string {
	return "download_log"
}
