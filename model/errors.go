package model

import (
	"errors"
)

// Error kinds of the content core. Call sites wrap these with context
// via pkg/errors, callers classify with errors.Is.
var (
	// ErrNotFound: referenced id absent from the store.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: actor lacks permission for the operation. Terminal,
	// never retried.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation: malformed input, e.g. neither file nor URL supplied.
	ErrValidation = errors.New("invalid input")
	// ErrStorageIO: blob read/write/delete failure.
	ErrStorageIO = errors.New("storage io failure")
	// ErrDecode: unparsable image bytes. Ingestion degrades to zero
	// thumbnails instead of failing on it.
	ErrDecode = errors.New("image decode failure")
	// ErrConflict: duplicate unique constraint at the identity boundary.
	ErrConflict = errors.New("conflict")
)
