package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestConsumeSingleSlotConcurrent(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{MaxDownloads: int64Ptr(1)})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = Consume(context.Background(), link.Token, AccessInfo{SourceIP: "198.51.100.1"})
		}(i)
	}
	wg.Wait()

	successes := 0
	limitReached := 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrLimitReached):
			limitReached++
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	if successes != 1 || limitReached != 1 {
		t.Fatalf("successes = %d, limit-reached = %d, want 1 and 1", successes, limitReached)
	}

	got, _, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != 1 {
		t.Fatalf("current downloads = %d, want 1", got.CurrentDownloads)
	}
}

func TestConsumeConcurrentNeverOvershoots(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	const limit = 3
	const callers = 10

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{MaxDownloads: int64Ptr(limit)})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = Consume(context.Background(), link.Token, AccessInfo{})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, ErrLimitReached) {
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	if successes != limit {
		t.Fatalf("successes = %d, want %d", successes, limit)
	}

	got, _, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != limit {
		t.Fatalf("current downloads = %d, want %d", got.CurrentDownloads, limit)
	}
}

func TestConsumeExpiredLink(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{TTL: ttlPtr(-time.Second)})
	if err != nil {
		t.Fatal(err)
	}

	_, err = Consume(context.Background(), link.Token, AccessInfo{})
	if !errors.Is(err, ErrLinkExpired) {
		t.Fatalf("err = %v, want expired", err)
	}
	var ledgerErr *LedgerError
	if !errors.As(err, &ledgerErr) || ledgerErr.Status != StatusExpired {
		t.Fatalf("err = %v, want LedgerError{Expired}", err)
	}
}

func TestConsumeRevokedDespiteAllowance(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{MaxDownloads: int64Ptr(10)})
	if err != nil {
		t.Fatal(err)
	}
	if err := RevokeLink(context.Background(), link.ID); err != nil {
		t.Fatal(err)
	}

	_, err = Consume(context.Background(), link.Token, AccessInfo{})
	if !errors.Is(err, ErrLinkRevoked) {
		t.Fatalf("err = %v, want revoked", err)
	}

	got, _, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != 0 {
		t.Fatalf("revoked link was consumed: %d", got.CurrentDownloads)
	}
}

func TestConsumeMissingToken(t *testing.T) {
	cleanTables(t)

	_, err := Consume(context.Background(), "no-such-token", AccessInfo{})
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestConsumeWritesAuditLog(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Consume(context.Background(), link.Token, AccessInfo{UserAgent: "go-test", SourceIP: "192.0.2.7"}); err != nil {
		t.Fatal(err)
	}

	// The append is asynchronous; give it a moment.
	deadline := time.Now().Add(3 * time.Second)
	for {
		logs, err := ListDownloadLogs(link.ID, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(logs) == 1 {
			if logs[0].UserAgent != "go-test" {
				t.Fatalf("user agent = %q", logs[0].UserAgent)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit log never appeared, got %d entries", len(logs))
		}
		time.Sleep(50 * time.Millisecond)
	}
}
