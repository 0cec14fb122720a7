package shared

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// Domain errors share the httpx sentinels so handlers can map them directly.
var (
	ErrNotFound   = httpx.ErrNotFound
	ErrDuplicate  = httpx.ErrDuplicate
	ErrConflict   = httpx.ErrConflict
	ErrValidation = httpx.ErrValidation
	ErrInvalidID  = fmt.Errorf("invalid ID: %w", httpx.ErrValidation)
)
