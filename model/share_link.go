package model

import "time"

// ShareLink grants token-based access to a file under an expiry /
// download-count policy. CurrentDownloads only moves up, and only through
// the conditional consume update; IsActive only moves to false, and only
// through an explicit revoke.
type ShareLink struct {
	ID uint64 `gorm:"primaryKey"`

	Token string `gorm:"column:token;size:64;uniqueIndex;not null"`

	FileID uint64 `gorm:"column:file_id;not null;index"`
	File   File   `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE"`

	PasswordHash string `gorm:"column:password_hash;size:128;not null;default:''"`

	ExpiresAt        *time.Time `gorm:"column:expires_at"`              // nil = no time limit
	MaxDownloads     *int64     `gorm:"column:max_downloads"`           // nil = unlimited
	CurrentDownloads int64      `gorm:"column:current_downloads;not null;default:0"`
	IsActive         bool       `gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time
}

// TableName returns the database table name.
func (ShareLink) TableName() string {
	return "share_link"
}
