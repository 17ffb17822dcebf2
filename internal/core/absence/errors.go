package absence

import "errors"

var (
	ErrInvalidReason    = errors.New("absence: invalid reason")
	ErrInvalidDateRange = errors.New("absence: end date precedes start date")
	ErrInvalidLimit     = errors.New("absence: invalid limit")
	ErrNotPermitted     = errors.New("absence: role not permitted")
	ErrNotFound         = errors.New("absence: not found")
	ErrAlreadyDecided   = errors.New("absence: already decided")
)
