package audit

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/memeboard/memeboard-backend/model"
	Logger "github.com/memeboard/memeboard-backend/utils/log"
)

func strPtr(s string) *string { return &s }

// TestAuditStore records mutations in memory. RecordDeletion is
// all-or-nothing, same as the transactional gorm store it stands in
// for.
type TestAuditStore struct {
	contents   map[string]*model.Content
	deletions  []model.Deletion
	failRecord bool
}

func NewTestAuditStore() *TestAuditStore {
	return &TestAuditStore{contents: map[string]*model.Content{}}
}

func (s *TestAuditStore) GetContent(id string) (*model.Content, error) {
	if c, ok := s.contents[id]; ok {
		return c, nil
	}
	return nil, model.ErrNotFound
}

func (s *TestAuditStore) RecordDeletion(deletion *model.Deletion) error {
	if s.failRecord {
		return fmt.Errorf("injected record failure for %s", deletion.ContentID)
	}
	c, ok := s.contents[deletion.ContentID]
	if !ok {
		return model.ErrNotFound
	}
	at := deletion.DeletionDate
	c.Deleted = true
	c.DeletedAt = &at
	s.deletions = append(s.deletions, *deletion)
	return nil
}

// TestBlobStore tracks deletes, optionally failing all of them.
type TestBlobStore struct {
	deleted    []string
	failDelete bool
}

func (s *TestBlobStore) PutBytes(key string, r io.Reader) (string, error) {
	return key, nil
}

func (s *TestBlobStore) GetBytes(path string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("no blob %s", path)
}

func (s *TestBlobStore) DeleteBytes(path string) error {
	if s.failDelete {
		return fmt.Errorf("injected delete failure for %s", path)
	}
	s.deleted = append(s.deleted, path)
	return nil
}

var admin = &model.User{Id: "user-admin", IsAdmin: true}

func newFixture() (*TestAuditStore, *TestBlobStore, *Trail) {
	s := NewTestAuditStore()
	s.contents["content-1"] = &model.Content{
		Id:           "content-1",
		OwnerID:      strPtr("user-owner"),
		OriginalPath: "orig.png",
		Thumbnails: []model.Thumbnail{
			{ContentID: "content-1", Size: model.ThumbnailSizeSmall, Path: "thumbnails/small_orig.png"},
			{ContentID: "content-1", Size: model.ThumbnailSizeMedium, Path: "thumbnails/medium_orig.png"},
		},
	}
	blobs := &TestBlobStore{}
	return s, blobs, NewTrail(s, blobs)
}

func TestSoftDelete(t *testing.T) {
	t.Run("admin delete flags row, records audit, removes bytes", func(t *testing.T) {
		s, blobs, trail := newFixture()

		require.NoError(t, trail.SoftDelete(admin, "content-1", "policy violation"))

		require.True(t, s.contents["content-1"].Deleted)
		require.NotNil(t, s.contents["content-1"].DeletedAt)

		require.Len(t, s.deletions, 1)
		require.Equal(t, "content-1", s.deletions[0].ContentID)
		require.Equal(t, admin.Id, s.deletions[0].DeletedBy)
		require.Equal(t, "policy violation", s.deletions[0].Reason)

		require.ElementsMatch(t, []string{
			"orig.png",
			"thumbnails/small_orig.png",
			"thumbnails/medium_orig.png",
		}, blobs.deleted)
	})

	t.Run("non-admin is forbidden with no side effects", func(t *testing.T) {
		s, blobs, trail := newFixture()
		owner := &model.User{Id: "user-owner"}

		err := trail.SoftDelete(owner, "content-1", "mine, removing")
		require.True(t, errors.Is(err, model.ErrForbidden))

		require.False(t, s.contents["content-1"].Deleted)
		require.Empty(t, s.deletions)
		require.Empty(t, blobs.deleted)
	})

	t.Run("anonymous is forbidden", func(t *testing.T) {
		_, _, trail := newFixture()
		err := trail.SoftDelete(nil, "content-1", "")
		require.True(t, errors.Is(err, model.ErrForbidden))
	})

	t.Run("unknown content reports not found", func(t *testing.T) {
		_, _, trail := newFixture()
		err := trail.SoftDelete(admin, "content-missing", "")
		require.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("already deleted content reports not found", func(t *testing.T) {
		s, _, trail := newFixture()
		require.NoError(t, trail.SoftDelete(admin, "content-1", "first"))

		err := trail.SoftDelete(admin, "content-1", "second")
		require.True(t, errors.Is(err, model.ErrNotFound))
		// the first audit record stays the only one
		require.Len(t, s.deletions, 1)
	})

	t.Run("record failure leaves neither flag nor audit row behind", func(t *testing.T) {
		s, _, trail := newFixture()
		s.failRecord = true

		err := trail.SoftDelete(admin, "content-1", "first try")
		require.Error(t, err)
		require.False(t, s.contents["content-1"].Deleted)
		require.Empty(t, s.deletions)

		// a retry after the transient failure records exactly one row
		s.failRecord = false
		require.NoError(t, trail.SoftDelete(admin, "content-1", "second try"))
		require.Len(t, s.deletions, 1)
	})

	t.Run("byte removal failure never loses the audit trail", func(t *testing.T) {
		s, blobs, trail := newFixture()
		blobs.failDelete = true

		hook := logrustest.NewLocal(Logger.LogV2.Logger)
		defer hook.Reset()

		require.NoError(t, trail.SoftDelete(admin, "content-1", "storage drifted"))

		require.True(t, s.contents["content-1"].Deleted)
		require.Len(t, s.deletions, 1)

		// every failed removal leaves a warning, one per blob
		require.Len(t, hook.Entries, 3)
		for _, entry := range hook.Entries {
			require.Equal(t, logrus.WarnLevel, entry.Level)
			require.Contains(t, entry.Message, "content-1")
		}
	})

	t.Run("note without bytes deletes cleanly", func(t *testing.T) {
		s, blobs, trail := newFixture()
		s.contents["note-1"] = &model.Content{
			Id:      "note-1",
			Kind:    model.ContentKindNote,
			OwnerID: strPtr("user-owner"),
		}

		require.NoError(t, trail.SoftDelete(admin, "note-1", ""))
		require.True(t, s.contents["note-1"].Deleted)
		require.Empty(t, blobs.deleted)
	})
}
