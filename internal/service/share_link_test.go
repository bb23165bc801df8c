package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestGetLinkStatusAlreadyExpired(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{TTL: ttlPtr(-time.Second)})
	if err != nil {
		t.Fatal(err)
	}

	view, err := GetLinkStatus(context.Background(), link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != "Expired" {
		t.Fatalf("status = %q, want Expired", view.Status)
	}
}

func TestGetLinkStatusRefreshesAfterConsume(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{MaxDownloads: int64Ptr(5)})
	if err != nil {
		t.Fatal(err)
	}

	view, err := GetLinkStatus(context.Background(), link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if view.CurrentDownloads != 0 {
		t.Fatalf("current downloads = %d, want 0", view.CurrentDownloads)
	}

	if _, err := Consume(context.Background(), link.Token, AccessInfo{}); err != nil {
		t.Fatal(err)
	}

	// Consume invalidates the cached view, so the next read is fresh.
	view, err = GetLinkStatus(context.Background(), link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if view.CurrentDownloads != 1 {
		t.Fatalf("current downloads = %d, want 1", view.CurrentDownloads)
	}
	if view.RemainingDownloads == nil || *view.RemainingDownloads != 4 {
		t.Fatalf("remaining = %v, want 4", view.RemainingDownloads)
	}
}

func TestRevokeLink(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{})
	if err != nil {
		t.Fatal(err)
	}

	if err := RevokeLink(context.Background(), link.ID); err != nil {
		t.Fatal(err)
	}
	if err := RevokeLink(context.Background(), link.ID); err != nil {
		t.Fatalf("second revoke failed: %v", err)
	}

	_, status, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusRevoked {
		t.Fatalf("status = %v, want Revoked", status)
	}

	if err := RevokeLink(context.Background(), 999999); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("revoke missing link: %v", err)
	}
}

func TestRequestDownloadPassword(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{Password: "hunter2"})
	if err != nil {
		t.Fatal(err)
	}

	_, _, _, err = RequestDownload(context.Background(), link.Token, "", AccessInfo{})
	if !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("err = %v, want password required", err)
	}

	_, _, _, err = RequestDownload(context.Background(), link.Token, "wrong", AccessInfo{})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("err = %v, want password mismatch", err)
	}

	// Neither attempt may spend allowance.
	got, _, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != 0 {
		t.Fatalf("current downloads = %d, want 0", got.CurrentDownloads)
	}
}

func TestUploadAndDownloadRoundtrip(t *testing.T) {
	cleanTables(t)

	payload := []byte("opaque ciphertext bytes")
	file, err := StoreFile(
		context.Background(),
		bytes.NewReader(payload),
		int64(len(payload)),
		"notes.txt.enc",
		"application/octet-stream",
	)
	if err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{MaxDownloads: int64Ptr(2)})
	if err != nil {
		t.Fatal(err)
	}

	object, gotLink, size, err := RequestDownload(context.Background(), link.Token, "", AccessInfo{UserAgent: "go-test"})
	if err != nil {
		t.Fatalf("RequestDownload failed: %v", err)
	}
	defer object.Close()

	if size != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", size, len(payload))
	}
	if gotLink.File.OriginalName != "notes.txt.enc" {
		t.Fatalf("filename = %q", gotLink.File.OriginalName)
	}

	data, err := io.ReadAll(object)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatal("downloaded bytes differ from uploaded bytes")
	}

	got, _, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != 1 {
		t.Fatalf("current downloads = %d, want 1", got.CurrentDownloads)
	}
}
