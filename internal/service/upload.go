package service

import (
	"SecureDrop/config"
	"SecureDrop/internal/repo"
	"SecureDrop/internal/storage"
	"SecureDrop/model"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// GetFile loads stored file metadata.
func GetFile(id uint64) (*model.File, error) {
	return repo.GetFileByID(id)
}

// StoreFile writes the (already client-side encrypted, opaque) bytes to the
// blob store and records the file metadata. The metadata row is immutable
// after this returns.
func StoreFile(ctx context.Context, reader io.Reader, size int64, originalName, contentType string) (*model.File, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	bucket := config.AppConfig.BucketName
	objectName := uuid.NewString()

	err := storage.Default.PutObject(ctx, bucket, objectName, reader, size, storage.PutOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	file := &model.File{
		OriginalName: originalName,
		Size:         size,
		ContentType:  contentType,
		Bucket:       bucket,
		ObjectName:   objectName,
	}
	if err := repo.Db.Create(file).Error; err != nil {
		// No metadata row, no link will ever reference the blob.
		if rmErr := storage.Default.RemoveObject(ctx, bucket, objectName); rmErr != nil {
			log.Printf("remove orphan object %s failed: %v", objectName, rmErr)
		}
		return nil, fmt.Errorf("persist file metadata: %w", err)
	}
	return file, nil
}
