package dto

// IssueLinkRequest issues a link for a file that is already stored.
type IssueLinkRequest struct {
	FileID       uint64 `json:"file_id" binding:"required"`
	TTLSeconds   *int64 `json:"ttl_seconds"`
	MaxDownloads *int64 `json:"max_downloads"`
	Password     string `json:"password"`
	NotifyEmail  string `json:"notify_email"`
}
