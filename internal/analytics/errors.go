package analytics

import "errors"

var (
	// ErrDataUnavailable means no quote exists on or before the window start,
	// so there is nothing to forward-fill from. Retrying without new data
	// cannot succeed.
	ErrDataUnavailable = errors.New("no quote available on or before window start")

	// ErrInvalidWindow means the requested window is inverted, or the end
	// date precedes the address's first transfer.
	ErrInvalidWindow = errors.New("invalid analysis window")
)
