package object

import "errors"

// Error kinds shared by the store, the repository and the transfer layer.
// Callers test for them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrKindMismatch    = errors.New("kind mismatch")
	ErrMalformedObject = errors.New("malformed object")
	ErrIO              = errors.New("i/o failure")
	ErrMissingTree     = errors.New("missing tree")
)
