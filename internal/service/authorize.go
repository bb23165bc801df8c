package service

import (
	"SecureDrop/model"
	"SecureDrop/internal/repo"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Validate classifies a token without touching any state. Check order is
// fixed and short-circuits: lookup, revocation, expiry, download limit.
// The expiry boundary is inclusive, a link whose expires_at equals now is
// already dead. Validate alone never gates a transfer; Consume re-checks
// the same policy atomically.
func Validate(token string) (*model.ShareLink, LinkStatus, error) {
	link, err := repo.GetShareLinkByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, StatusNotFound, nil
		}
		return nil, StatusNotFound, err
	}
	if !link.IsActive {
		return link, StatusRevoked, nil
	}
	if link.ExpiresAt != nil && !time.Now().Before(*link.ExpiresAt) {
		return link, StatusExpired, nil
	}
	if link.MaxDownloads != nil && link.CurrentDownloads >= *link.MaxDownloads {
		return link, StatusLimitReached, nil
	}
	return link, StatusActive, nil
}

// LinkView is the sanitized per-link view handed to callers. It carries
// file metadata and counters but never the storage path; that is resolved
// only inside the authorized download path.
type LinkView struct {
	FileName           string     `json:"filename"`
	SizeBytes          int64      `json:"size_bytes"`
	ContentType        string     `json:"content_type,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	MaxDownloads       *int64     `json:"max_downloads,omitempty"`
	CurrentDownloads   int64      `json:"current_downloads"`
	RemainingDownloads *int64     `json:"remaining_downloads,omitempty"` // nil = unlimited
	RequiresPassword   bool       `json:"requires_password"`
	Status             string     `json:"status"`
}

// BuildLinkView sanitizes a link and its status for external callers.
func BuildLinkView(link *model.ShareLink, status LinkStatus) *LinkView {
	view := &LinkView{Status: status.String()}
	if link == nil {
		return view
	}
	view.FileName = link.File.OriginalName
	view.SizeBytes = link.File.Size
	view.ContentType = link.File.ContentType
	view.ExpiresAt = link.ExpiresAt
	view.MaxDownloads = link.MaxDownloads
	view.CurrentDownloads = link.CurrentDownloads
	view.RequiresPassword = link.PasswordHash != ""
	if link.MaxDownloads != nil {
		remaining := *link.MaxDownloads - link.CurrentDownloads
		if remaining < 0 {
			remaining = 0
		}
		view.RemainingDownloads = &remaining
	}
	return view
}
