package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so handlers can decide how a failure surfaces to the caller:
// - ErrNotFound: key does not exist in the store
// - ErrUnavailable: backend unreachable after retries
//
// Validation failures never use these; they are collected by the schema package.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
