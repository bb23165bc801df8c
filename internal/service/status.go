package service

import "errors"

// LinkStatus is the single authoritative classification of a share link.
// It is computed only by Validate; nothing else re-derives expiry or limit
// checks from raw fields.
type LinkStatus int

const (
	StatusActive LinkStatus = iota
	StatusExpired
	StatusLimitReached
	StatusRevoked
	StatusNotFound
)

// String returns the wire name of the status.
func (s LinkStatus) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusExpired:
		return "Expired"
	case StatusLimitReached:
		return "LimitReached"
	case StatusRevoked:
		return "Revoked"
	case StatusNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

var (
	ErrLinkNotFound = errors.New("share link not found")
	ErrLinkRevoked  = errors.New("share link revoked")
	ErrLinkExpired  = errors.New("share link expired")
	ErrLimitReached = errors.New("download limit reached")

	ErrPasswordRequired = errors.New("password required")
	ErrPasswordMismatch = errors.New("password mismatch")

	// ErrLedgerConflict: the conditional update affected zero rows but an
	// immediate re-validation still saw the link as Active. The caller can
	// simply retry.
	ErrLedgerConflict = errors.New("download consume conflict")

	// ErrStorageFailure: blob fetch failed after the allowance was already
	// spent. The counter is not rolled back.
	ErrStorageFailure = errors.New("blob storage failure")
)

// statusErr maps a dead-link status to its sentinel error.
func statusErr(status LinkStatus) error {
	switch status {
	case StatusRevoked:
		return ErrLinkRevoked
	case StatusExpired:
		return ErrLinkExpired
	case StatusLimitReached:
		return ErrLimitReached
	case StatusNotFound:
		return ErrLinkNotFound
	default:
		return nil
	}
}

// LedgerError reports why a consume was rejected. The reason is re-derived
// by re-running Validate after the conditional update affected zero rows.
type LedgerError struct {
	Status LinkStatus
}

func (e *LedgerError) Error() string {
	return "consume rejected: " + e.Status.String()
}

// Unwrap lets errors.Is match the per-status sentinels.
func (e *LedgerError) Unwrap() error {
	return statusErr(e.Status)
}
