package service

import (
	"SecureDrop/internal/repo"
	"SecureDrop/internal/task"
	"SecureDrop/model"
	"context"
	"fmt"
	"time"
)

// AccessInfo carries the audit fields of a download request.
type AccessInfo struct {
	UserAgent string
	SourceIP  string
}

// Consume spends one unit of download allowance. The policy check and the
// increment are one conditional UPDATE, so current_downloads can never pass
// max_downloads no matter how many calls race. Zero rows affected means the
// link died (or saturated) between Validate and here; the precise reason is
// re-derived and returned as a LedgerError.
func Consume(ctx context.Context, token string, access AccessInfo) (*model.ShareLink, error) {
	now := time.Now()
	rows, err := repo.ConsumeDownload(token, now)
	if err != nil {
		return nil, fmt.Errorf("consume download: %w", err)
	}
	if rows == 0 {
		_, status, verr := Validate(token)
		if verr != nil {
			return nil, fmt.Errorf("consume download: %w", verr)
		}
		if status == StatusActive {
			return nil, ErrLedgerConflict
		}
		return nil, &LedgerError{Status: status}
	}

	link, err := repo.GetShareLinkByToken(token)
	if err != nil {
		// Allowance is spent either way; report the read failure.
		return nil, fmt.Errorf("reload share link: %w", err)
	}

	// Audit append is fire-and-forget relative to the consume decision.
	go task.EnqueueDownloadLog(link.ID, access.UserAgent, access.SourceIP, now)
	repo.InvalidateStatusView(ctx, token)

	return link, nil
}
