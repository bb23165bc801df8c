package repo

import (
	"SecureDrop/config"
	"SecureDrop/model"
	"github.com/google/uuid"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	config.InitConfig()
	InitMysqlTest()
	os.Exit(m.Run())
}

// cleanTables clears test tables.
func cleanTables(t *testing.T) {
	db := Db

	db.Exec("SET FOREIGN_KEY_CHECKS = 0")

	tables := []string{
		"download_log",
		"share_link",
		"file",
	}

	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("clean %s failed: %v", table, err)
		}
	}

	db.Exec("SET FOREIGN_KEY_CHECKS = 1")
}

// seedLink creates a file and a share link around it.
func seedLink(t *testing.T, expiresAt *time.Time, maxDownloads *int64, active bool) *model.ShareLink {
	file := model.File{
		OriginalName: "report.pdf",
		Size:         1024,
		ContentType:  "application/pdf",
		Bucket:       config.AppConfig.BucketNameTest,
		ObjectName:   uuid.NewString(),
	}
	if err := Db.Create(&file).Error; err != nil {
		t.Fatal(err)
	}
	link := model.ShareLink{
		Token:        uuid.NewString(),
		FileID:       file.ID,
		ExpiresAt:    expiresAt,
		MaxDownloads: maxDownloads,
		IsActive:     active,
	}
	if err := CreateShareLink(&link); err != nil {
		t.Fatal(err)
	}
	return &link
}

func TestConsumeDownloadLimit(t *testing.T) {
	cleanTables(t)
	max := int64(2)
	link := seedLink(t, nil, &max, true)

	now := time.Now()
	for i, want := range []int64{1, 1, 0} {
		rows, err := ConsumeDownload(link.Token, now)
		if err != nil {
			t.Fatalf("consume %d failed: %v", i, err)
		}
		if rows != want {
			t.Fatalf("consume %d affected %d rows, want %d", i, rows, want)
		}
	}

	got, err := GetShareLinkByToken(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != 2 {
		t.Fatalf("current_downloads = %d, want 2", got.CurrentDownloads)
	}
}

func TestConsumeDownloadExpiryBoundary(t *testing.T) {
	cleanTables(t)
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	link := seedLink(t, &expiresAt, nil, true)

	// Exactly at expiry counts as expired.
	rows, err := ConsumeDownload(link.Token, expiresAt)
	if err != nil {
		t.Fatal(err)
	}
	if rows != 0 {
		t.Fatalf("consume at expiry affected %d rows, want 0", rows)
	}

	rows, err = ConsumeDownload(link.Token, expiresAt.Add(-time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Fatalf("consume before expiry affected %d rows, want 1", rows)
	}
}

func TestConsumeDownloadRevoked(t *testing.T) {
	cleanTables(t)
	link := seedLink(t, nil, nil, true)

	if err := RevokeShareLink(link.ID); err != nil {
		t.Fatal(err)
	}
	rows, err := ConsumeDownload(link.Token, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if rows != 0 {
		t.Fatalf("consume on revoked link affected %d rows, want 0", rows)
	}
}

func TestConsumeDownloadMissingToken(t *testing.T) {
	cleanTables(t)

	rows, err := ConsumeDownload("no-such-token", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if rows != 0 {
		t.Fatalf("consume on missing token affected %d rows, want 0", rows)
	}
}

func TestRevokeShareLinkIdempotent(t *testing.T) {
	cleanTables(t)
	link := seedLink(t, nil, nil, true)

	if err := RevokeShareLink(link.ID); err != nil {
		t.Fatal(err)
	}
	if err := RevokeShareLink(link.ID); err != nil {
		t.Fatalf("second revoke failed: %v", err)
	}

	got, err := GetShareLinkByID(link.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("link still active after revoke")
	}
}

func TestCreateShareLinkDuplicateToken(t *testing.T) {
	cleanTables(t)
	link := seedLink(t, nil, nil, true)

	dup := model.ShareLink{
		Token:    link.Token,
		FileID:   link.FileID,
		IsActive: true,
	}
	err := CreateShareLink(&dup)
	if err == nil {
		t.Fatal("expected duplicate token error")
	}
	if !IsDuplicateKeyError(err) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestDownloadLogRoundtrip(t *testing.T) {
	cleanTables(t)
	link := seedLink(t, nil, nil, true)

	entry := model.DownloadLog{
		ShareLinkID:  link.ID,
		UserAgent:    "curl/8.0",
		SourceIP:     "203.0.113.9",
		DownloadedAt: time.Now(),
	}
	if err := InsertDownloadLog(&entry); err != nil {
		t.Fatal(err)
	}

	logs, err := ListDownloadLogs(link.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	if logs[0].SourceIP != "203.0.113.9" {
		t.Fatalf("source ip = %q", logs[0].SourceIP)
	}

	days, err := CountDownloadsByDay(link.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || days[0].Count != 1 {
		t.Fatalf("daily counts = %+v", days)
	}
}
