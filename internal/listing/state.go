package listing

import "time"

// Status is the lifecycle state of a Controller.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorInfo describes the last failed fetch.
type ErrorInfo struct {
	Message string
	Err     error
	At      time.Time
}

// State is a read-only snapshot of a Controller.
type State[T any] struct {
	Status Status
	// Query is the last dispatched query.
	Query Query
	// SearchInput echoes the search box, including text still inside the debounce window.
	SearchInput string
	// Debouncing is true while a search dispatch is scheduled but not yet issued.
	Debouncing bool
	// Result is the last successfully applied page, nil until the first success.
	Result    *PageResult[T]
	LastError *ErrorInfo
	// Seq is the sequence number of the last dispatch.
	Seq uint64
}

// Display tells the presentation layer which of the easily conflated states to render.
type Display int

const (
	DisplayIdle Display = iota
	// DisplayLoading is a fetch without any prior result: spinner, no empty message.
	DisplayLoading
	// DisplayEmpty is a successful fetch with no matches: empty message plus create action.
	DisplayEmpty
	// DisplayError is a failed fetch; Result may still hold the stale list.
	DisplayError
	DisplayItems
)

// Display classifies s for rendering.
func (s State[T]) Display() Display {
	switch s.Status {
	case StatusIdle:
		return DisplayIdle
	case StatusError:
		return DisplayError
	case StatusLoading:
		if s.Result == nil {
			return DisplayLoading
		}
		return DisplayItems
	default:
		if s.Result == nil || s.Result.IsEmpty() {
			return DisplayEmpty
		}
		return DisplayItems
	}
}

// Items returns the displayed items, empty when no result has been applied.
func (s State[T]) Items() []T {
	if s.Result == nil {
		return nil
	}
	return s.Result.Items
}
