package achievements

import "errors"

var (
	// ErrStorageUnavailable wraps any failure of the progress, share or award
	// storage. It is never retried here.
	ErrStorageUnavailable = errors.New("achievement storage unavailable")
	// ErrUnknownBadge is returned by a manual award of a key outside the catalog.
	ErrUnknownBadge = errors.New("unknown badge")
)
