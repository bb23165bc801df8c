package service

import (
	"SecureDrop/config"
	"SecureDrop/internal/repo"
	"SecureDrop/model"
	"SecureDrop/utils"
	"context"
	"fmt"
	"log"
	"time"
)

// IssuePolicy is the expiry / allowance policy attached at issue time.
// Nil TTL means no time limit, nil MaxDownloads means unlimited.
type IssuePolicy struct {
	TTL          *time.Duration
	MaxDownloads *int64
	Password     string
}

// IssueLink creates a share link for an uploaded file. The token comes from
// the CSPRNG; a colliding token hits the unique index and gets exactly one
// retry with a fresh token.
func IssueLink(ctx context.Context, fileID uint64, policy IssuePolicy) (*model.ShareLink, error) {
	link := &model.ShareLink{
		Token:            utils.NewShareToken(),
		FileID:           fileID,
		MaxDownloads:     policy.MaxDownloads,
		CurrentDownloads: 0,
		IsActive:         true,
	}
	if policy.TTL != nil {
		expiresAt := time.Now().Add(*policy.TTL)
		link.ExpiresAt = &expiresAt
	}
	if policy.Password != "" {
		link.PasswordHash = utils.GetPwd(policy.Password)
	}

	err := repo.CreateShareLink(link)
	if err != nil && repo.IsDuplicateKeyError(err) {
		link.ID = 0
		link.Token = utils.NewShareToken()
		err = repo.CreateShareLink(link)
	}
	if err != nil {
		return nil, fmt.Errorf("persist share link: %w", err)
	}

	if link.ExpiresAt != nil {
		if err := repo.SetExpireMarker(ctx, link.Token, *link.ExpiresAt); err != nil {
			log.Printf("set expire marker for %s failed: %v", link.Token, err)
		}
	}

	return link, nil
}

// ShareURL builds the public download URL for a token. All policy lives
// server-side; the URL carries nothing but the token.
func ShareURL(token string) string {
	return config.AppConfig.BaseURL + "/download/" + token
}
