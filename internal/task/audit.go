package task

import (
	"SecureDrop/internal/mq"
	"SecureDrop/internal/repo"
	"SecureDrop/model"
	"context"
	"encoding/json"
	"log"
	"time"
)

// AuditMessage is the download-log payload sent to the audit worker.
type AuditMessage struct {
	ShareLinkID  uint64    `json:"share_link_id"`
	UserAgent    string    `json:"user_agent,omitempty"`
	SourceIP     string    `json:"source_ip,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at"`
	Attempt      int       `json:"attempt"`
}

// EnqueueDownloadLog publishes an audit record for asynchronous insertion.
// Fire-and-forget: when the broker is unreachable it falls back to one
// direct best-effort insert, and any remaining failure is only logged.
// Nothing here may fail or delay the consume decision.
func EnqueueDownloadLog(shareLinkID uint64, userAgent, sourceIP string, downloadedAt time.Time) {
	msg := AuditMessage{
		ShareLinkID:  shareLinkID,
		UserAgent:    userAgent,
		SourceIP:     sourceIP,
		DownloadedAt: downloadedAt,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("audit: marshal failed: %v", err)
		return
	}
	publisher, err := mq.GetPublisher()
	if err == nil {
		if err = publisher.PublishAudit(context.Background(), body); err == nil {
			return
		}
	}
	log.Printf("audit: publish failed, inserting directly: %v", err)
	if err := insertDownloadLog(&msg); err != nil {
		log.Printf("audit: direct insert failed: %v", err)
	}
}

// ProcessAuditMessage inserts the audit record carried by a worker delivery.
func ProcessAuditMessage(ctx context.Context, msg AuditMessage) error {
	return insertDownloadLog(&msg)
}

func insertDownloadLog(msg *AuditMessage) error {
	return repo.InsertDownloadLog(&model.DownloadLog{
		ShareLinkID:  msg.ShareLinkID,
		UserAgent:    msg.UserAgent,
		SourceIP:     msg.SourceIP,
		DownloadedAt: msg.DownloadedAt,
	})
}
