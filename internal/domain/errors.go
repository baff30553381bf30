package domain

import "errors"

// Sentinel errors services return so handlers can pick the right HTTP
// status without string matching.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrInvalid   = errors.New("invalid input")
)
