package service

import (
	"SecureDrop/internal/repo"
	"SecureDrop/model"
	"errors"

	"gorm.io/gorm"
)

// DownloadStats summarizes a link's consumption for its manager.
type DownloadStats struct {
	Token            string                    `json:"token"`
	CurrentDownloads int64                     `json:"current_downloads"`
	MaxDownloads     *int64                    `json:"max_downloads,omitempty"`
	Days             []repo.DownloadDailyCount `json:"days"`
}

// GetManagedLink loads a link by id for its manager.
func GetManagedLink(linkID uint64) (*model.ShareLink, error) {
	link, err := repo.GetShareLinkByID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// ListDownloadLogs returns recent audit records for a link.
func ListDownloadLogs(linkID uint64, limit int) ([]model.DownloadLog, error) {
	if _, err := GetManagedLink(linkID); err != nil {
		return nil, err
	}
	return repo.ListDownloadLogs(linkID, limit)
}

// GetDownloadStats returns per-day download counts over the last `days`
// days plus the authoritative counters.
func GetDownloadStats(linkID uint64, days int) (*DownloadStats, error) {
	link, err := GetManagedLink(linkID)
	if err != nil {
		return nil, err
	}
	rows, err := repo.CountDownloadsByDay(linkID, days)
	if err != nil {
		return nil, err
	}
	return &DownloadStats{
		Token:            link.Token,
		CurrentDownloads: link.CurrentDownloads,
		MaxDownloads:     link.MaxDownloads,
		Days:             rows,
	}, nil
}
