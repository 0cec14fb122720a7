package listing

import "errors"

var (
	// ErrUnknownFilter is returned for a filter key the screen does not declare.
	ErrUnknownFilter = errors.New("listing: unknown filter")
	// ErrPageOutOfRange is returned when a page lies outside 1..LastPage.
	ErrPageOutOfRange = errors.New("listing: page out of range")
	// ErrInvalidPageSize is returned for a page size outside the allowed set.
	ErrInvalidPageSize = errors.New("listing: page size not allowed")
	// ErrClosed is returned by intents issued after Close.
	ErrClosed = errors.New("listing: controller closed")
)
