package repo

import (
	"SecureDrop/model"
	"time"

	"gorm.io/gorm"
)

// CreateShareLink inserts a new share link. A token collision is reported
// through the unique index; callers detect it with IsDuplicateKeyError.
func CreateShareLink(link *model.ShareLink) error {
	return Db.Create(link).Error
}

// GetShareLinkByToken loads a link and its file metadata.
func GetShareLinkByToken(token string) (*model.ShareLink, error) {
	var link model.ShareLink
	err := Db.Preload("File").Where("token = ?", token).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetShareLinkByID loads a link by its primary key.
func GetShareLinkByID(id uint64) (*model.ShareLink, error) {
	var link model.ShareLink
	err := Db.Preload("File").Where("id = ?", id).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ConsumeDownload spends one unit of download allowance. The policy check
// and the increment are a single conditional UPDATE, so two racing calls on
// a link with one slot left can never both succeed. Returns the number of
// rows affected: 1 on success, 0 when the link is missing, revoked, expired
// (boundary inclusive: expires_at <= now is dead) or saturated.
func ConsumeDownload(token string, now time.Time) (int64, error) {
	res := Db.Model(&model.ShareLink{}).
		Where("token = ? AND is_active = ?", token, true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("max_downloads IS NULL OR current_downloads < max_downloads").
		UpdateColumn("current_downloads", gorm.Expr("current_downloads + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// RevokeShareLink deactivates a link. Idempotent; revoking an already
// revoked link affects zero rows and is still a success.
func RevokeShareLink(id uint64) error {
	return Db.Model(&model.ShareLink{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// InsertDownloadLog appends one audit record.
func InsertDownloadLog(entry *model.DownloadLog) error {
	return Db.Create(entry).Error
}

// ListDownloadLogs returns the most recent audit records for a link.
func ListDownloadLogs(shareLinkID uint64, limit int) ([]model.DownloadLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.DownloadLog
	err := Db.Where("share_link_id = ?", shareLinkID).
		Order("downloaded_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// DownloadDailyCount is one day's consumed download count for a link.
type DownloadDailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// CountDownloadsByDay groups a link's audit records per day over the last
// `days` days, newest first.
func CountDownloadsByDay(shareLinkID uint64, days int) ([]DownloadDailyCount, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	var rows []DownloadDailyCount
	err := Db.Model(&model.DownloadLog{}).
		Select("DATE_FORMAT(downloaded_at, '%Y-%m-%d') AS day, COUNT(*) AS count").
		Where("share_link_id = ? AND downloaded_at >= ?", shareLinkID, since).
		Group("day").
		Order("day DESC").
		Scan(&rows).Error
	return rows, err
}
