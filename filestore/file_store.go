package filestore

import (
	"io"
)

// FileStore is the blob store collaborator of the content core. Keys
// are caller-generated, collision-resistant identifiers, paths are the
// store's durable addresses recorded on Content rows.
type FileStore interface {
	// PutBytes writes a blob under key and returns its durable path.
	PutBytes(key string, r io.Reader) (path string, err error)
	// GetBytes opens the blob at path for reading.
	GetBytes(path string) (io.ReadCloser, error)
	// DeleteBytes removes the blob at path. Deleting an absent blob is
	// an error, callers on cleanup paths log and move on.
	DeleteBytes(path string) error
}
