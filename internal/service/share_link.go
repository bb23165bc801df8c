package service

import (
	"SecureDrop/config"
	"SecureDrop/internal/repo"
	"SecureDrop/internal/storage"
	"SecureDrop/model"
	"SecureDrop/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

// RequestDownload is the single authorized-download entry point:
// Validate (advisory fast-fail) -> password check -> Consume (the atomic
// gate) -> blob fetch. A fetch failure after Consume leaves the allowance
// spent; rolling the counter back would reopen the race the conditional
// update closes.
func RequestDownload(ctx context.Context, token, password string, access AccessInfo) (io.ReadCloser, *model.ShareLink, int64, error) {
	link, status, err := Validate(token)
	if err != nil {
		return nil, nil, 0, err
	}
	if status != StatusActive {
		return nil, nil, 0, statusErr(status)
	}
	if err := checkPassword(link, password); err != nil {
		return nil, nil, 0, err
	}

	link, err = Consume(ctx, token, access)
	if err != nil {
		return nil, nil, 0, err
	}

	object, info, err := fetchBlob(ctx, link.File.Bucket, link.File.ObjectName)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return object, link, info.Size, nil
}

// PresignDownload consumes one allowance unit and returns a short-lived
// presigned URL instead of streaming the bytes through this process.
func PresignDownload(ctx context.Context, token, password string, access AccessInfo) (string, error) {
	link, status, err := Validate(token)
	if err != nil {
		return "", err
	}
	if status != StatusActive {
		return "", statusErr(status)
	}
	if err := checkPassword(link, password); err != nil {
		return "", err
	}

	link, err = Consume(ctx, token, access)
	if err != nil {
		return "", err
	}

	params := map[string]string{
		"response-content-disposition": fmt.Sprintf(`attachment; filename="%s"`, utils.SanitizeHeaderFilename(link.File.OriginalName)),
		"response-content-type":        link.File.ContentType,
	}
	var url string
	for attempt := 0; attempt <= config.AppConfig.BlobFetchRetries; attempt++ {
		url, err = storage.Default.PresignedGetObjectWithResponse(
			ctx,
			link.File.Bucket,
			link.File.ObjectName,
			config.AppConfig.PresignExpiry,
			params,
		)
		if err == nil {
			return url, nil
		}
	}
	return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

// GetLinkStatus returns the sanitized status view backing link previews.
// Redis caches it briefly; the cached copy is a hint, the authoritative
// counters always come from the consume path.
func GetLinkStatus(ctx context.Context, token string) (*LinkView, error) {
	key := repo.StatusViewKey(token)
	var cached LinkView
	if utils.GetCachedJSON(ctx, key, &cached) {
		return &cached, nil
	}

	link, status, err := Validate(token)
	if err != nil {
		return nil, err
	}
	view := BuildLinkView(link, status)
	if status != StatusNotFound {
		if err := utils.SetCachedJSON(ctx, key, view, config.AppConfig.StatusCacheTTL); err != nil {
			log.Printf("cache status view %s failed: %v", token, err)
		}
	}
	return view, nil
}

// RevokeLink deactivates a link. Idempotent: revoking twice is still a
// success. IsActive never goes back to true.
func RevokeLink(ctx context.Context, linkID uint64) error {
	link, err := repo.GetShareLinkByID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkNotFound
		}
		return err
	}
	if err := repo.RevokeShareLink(linkID); err != nil {
		return err
	}
	repo.InvalidateStatusView(ctx, link.Token)
	return nil
}

func checkPassword(link *model.ShareLink, password string) error {
	if link.PasswordHash == "" {
		return nil
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if !utils.CheckPwd(password, link.PasswordHash) {
		return ErrPasswordMismatch
	}
	return nil
}

func fetchBlob(ctx context.Context, bucket, object string) (io.ReadCloser, storage.ObjectInfo, error) {
	var lastErr error
	for attempt := 0; attempt <= config.AppConfig.BlobFetchRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
		rc, info, err := storage.Default.GetObject(ctx, bucket, object)
		if err == nil {
			return rc, info, nil
		}
		lastErr = err
	}
	return nil, storage.ObjectInfo{}, lastErr
}
