package dto

import "time"

// IssueLinkResponse carries the share URL and the manage token that
// authorizes revocation and analytics for this link.
type IssueLinkResponse struct {
	Token        string     `json:"token"`
	URL          string     `json:"url"`
	ManageToken  string     `json:"manage_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaxDownloads *int64     `json:"max_downloads,omitempty"`
}

// UploadResponse is returned after a successful upload + link issuance.
type UploadResponse struct {
	FileID       uint64     `json:"file_id"`
	Token        string     `json:"token"`
	URL          string     `json:"url"`
	ManageToken  string     `json:"manage_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaxDownloads *int64     `json:"max_downloads,omitempty"`
}
