package shared

const (
	// Default pagination
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"

	// Status filter values
	StatusActive   = "active"
	StatusInactive = "inactive"
)
