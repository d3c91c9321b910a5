// Package audit implements the soft-delete state machine and its
// permanent deletion trail. Active -> Deleted is the only transition,
// there is no way back through this package.
package audit

import (
	"time"

	"github.com/pkg/errors"

	"github.com/memeboard/memeboard-backend/access"
	"github.com/memeboard/memeboard-backend/filestore"
	"github.com/memeboard/memeboard-backend/model"
	Logger "github.com/memeboard/memeboard-backend/utils/log"
)

// AuditStore is the slice of the entity store the trail needs.
// RecordDeletion must commit the audit row and the deleted flag as one
// unit, a partial deletion is never observable.
type AuditStore interface {
	GetContent(id string) (*model.Content, error)
	RecordDeletion(deletion *model.Deletion) error
}

type Trail struct {
	store AuditStore
	fs    filestore.FileStore
}

func NewTrail(s AuditStore, fs filestore.FileStore) *Trail {
	return &Trail{store: s, fs: fs}
}

// SoftDelete marks the item deleted, records exactly one Deletion audit
// row and removes the stored bytes.
//
// The audit record and the deleted flag must survive even when byte
// removal fails, so blobs are removed last and removal failures are
// logged as warnings instead of failing the operation.
func (t *Trail) SoftDelete(actor *model.User, contentId, reason string) error {
	content, err := t.store.GetContent(contentId)
	if err != nil {
		return err
	}
	if content.Deleted {
		// already gone from every ordinary path
		return errors.Wrapf(model.ErrNotFound, "content %s", contentId)
	}
	if !access.CanDelete(actor, content) {
		return errors.Wrapf(model.ErrForbidden, "user cannot delete content %s", contentId)
	}

	deletion := model.Deletion{
		ContentID:    contentId,
		DeletedBy:    actor.Id,
		DeletionDate: time.Now(),
		Reason:       reason,
	}
	if err := t.store.RecordDeletion(&deletion); err != nil {
		return errors.Wrapf(err, "fail to record deletion of %s", contentId)
	}

	t.removeBytes(content)
	return nil
}

// removeBytes best-effort removes the original and every derived
// artifact. An already-absent blob is a recoverable inconsistency, not
// a reason to lose the audit trail.
func (t *Trail) removeBytes(content *model.Content) {
	paths := []string{}
	if content.OriginalPath != "" {
		paths = append(paths, content.OriginalPath)
	}
	for _, thumb := range content.Thumbnails {
		paths = append(paths, thumb.Path)
	}
	for _, p := range paths {
		if err := t.fs.DeleteBytes(p); err != nil {
			Logger.LogV2.Warnf("fail to remove bytes %s for deleted content %s: %s",
				p, content.Id, err.Error())
		}
	}
}
