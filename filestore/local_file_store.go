package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/memeboard/memeboard-backend/model"
)

// LocalFileStore keeps blobs on the local disk under a configured root.
// Keys may carry a directory prefix (e.g. "thumbnails/") which is
// created on demand.
type LocalFileStore struct {
	root string
}

func NewLocalFileStore(root string) (*LocalFileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(model.ErrStorageIO, "fail to create blob root %s: %v", root, err)
	}
	return &LocalFileStore{root: root}, nil
}

func (s *LocalFileStore) PutBytes(key string, r io.Reader) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrapf(model.ErrStorageIO, "fail to create dir for %s: %v", key, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(model.ErrStorageIO, "fail to create blob %s: %v", key, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		// half-written blob is worse than none
		os.Remove(path)
		return "", errors.Wrapf(model.ErrStorageIO, "fail to write blob %s: %v", key, err)
	}
	return path, nil
}

func (s *LocalFileStore) GetBytes(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(model.ErrNotFound, "blob %s", path)
		}
		return nil, errors.Wrapf(model.ErrStorageIO, "fail to open blob %s: %v", path, err)
	}
	return f, nil
}

func (s *LocalFileStore) DeleteBytes(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(model.ErrNotFound, "blob %s", path)
		}
		return errors.Wrapf(model.ErrStorageIO, "fail to remove blob %s: %v", path, err)
	}
	return nil
}

var _ FileStore = &LocalFileStore{}
