package matrix

import "errors"

// Sentinel errors classify mutation failures per the taxonomy in SPEC_FULL.md §7. Callers
// in internal/httpapi map these to HTTP status codes; internal callers (the routing loop,
// keepalive) never see them because they only read snapshots.
var (
	ErrNotFound        = errors.New("matrix: not found")
	ErrInvalidRequest  = errors.New("matrix: invalid request")
	ErrResourceCreate  = errors.New("matrix: resource create failed")
)
