package service

import (
	"context"
	"testing"
	"time"
)

func TestIssueLinkToken(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{})
	if err != nil {
		t.Fatalf("IssueLink failed: %v", err)
	}
	if link.Token == "" {
		t.Fatal("token is empty")
	}
	// 32 random bytes base64url, no padding.
	if len(link.Token) != 43 {
		t.Fatalf("token length = %d, want 43", len(link.Token))
	}
	if link.CurrentDownloads != 0 {
		t.Fatalf("current downloads = %d, want 0", link.CurrentDownloads)
	}
	if !link.IsActive {
		t.Fatal("new link not active")
	}

	other, err := IssueLink(context.Background(), file.ID, IssuePolicy{})
	if err != nil {
		t.Fatal(err)
	}
	if other.Token == link.Token {
		t.Fatal("two issued links share a token")
	}
}

func TestValidateNotFound(t *testing.T) {
	cleanTables(t)

	_, status, err := Validate("definitely-not-a-token")
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusNotFound {
		t.Fatalf("status = %v, want NotFound", status)
	}
}

func TestValidateUnlimitedStaysActive(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{})
	if err != nil {
		t.Fatal(err)
	}

	// Validate is read-only; any number of calls changes nothing.
	for i := 0; i < 5; i++ {
		_, status, err := Validate(link.Token)
		if err != nil {
			t.Fatal(err)
		}
		if status != StatusActive {
			t.Fatalf("status = %v, want Active", status)
		}
	}

	got, _, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != 0 {
		t.Fatalf("validate mutated current downloads: %d", got.CurrentDownloads)
	}
	if !got.IsActive {
		t.Fatal("validate deactivated the link")
	}
}

func TestValidateExpired(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{TTL: ttlPtr(-time.Second)})
	if err != nil {
		t.Fatal(err)
	}

	_, status, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusExpired {
		t.Fatalf("status = %v, want Expired", status)
	}
}

func TestValidateRevokedBeforeExpired(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	// Revoked and expired at once: revocation wins the check order.
	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{TTL: ttlPtr(-time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if err := RevokeLink(context.Background(), link.ID); err != nil {
		t.Fatal(err)
	}

	_, status, err := Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusRevoked {
		t.Fatalf("status = %v, want Revoked", status)
	}
}

func TestBuildLinkViewRemaining(t *testing.T) {
	cleanTables(t)
	file := seedFile(t)

	link, err := IssueLink(context.Background(), file.ID, IssuePolicy{MaxDownloads: int64Ptr(5)})
	if err != nil {
		t.Fatal(err)
	}
	link, _, err = Validate(link.Token)
	if err != nil {
		t.Fatal(err)
	}

	view := BuildLinkView(link, StatusActive)
	if view.RemainingDownloads == nil || *view.RemainingDownloads != 5 {
		t.Fatalf("remaining = %v, want 5", view.RemainingDownloads)
	}
	if view.FileName != "secret.bin" {
		t.Fatalf("filename = %q", view.FileName)
	}

	unlimited, err := IssueLink(context.Background(), file.ID, IssuePolicy{})
	if err != nil {
		t.Fatal(err)
	}
	unlimited, _, err = Validate(unlimited.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got := BuildLinkView(unlimited, StatusActive); got.RemainingDownloads != nil {
		t.Fatalf("unlimited link has remaining = %v", *got.RemainingDownloads)
	}
}
