package model

import "errors"

// ErrInvalidInput is the base error for all pre-write payload validation
// failures. Callers map it to a 4xx-equivalent outcome.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound is the shared sentinel every repository backend wraps when a
// requested document does not exist
var ErrNotFound = errors.New("not found")
