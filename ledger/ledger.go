// Package ledger maintains the many-to-many relation facts of the
// system: saved, liked, seen and group membership. Mutations are
// idempotent at the level of end state and every one of them re-checks
// visibility on its target first.
package ledger

import (
	"github.com/pkg/errors"

	"github.com/memeboard/memeboard-backend/access"
	"github.com/memeboard/memeboard-backend/model"
	"github.com/memeboard/memeboard-backend/store"
)

// RelationStore is the slice of the entity store the ledger needs.
type RelationStore interface {
	GetContent(id string) (*model.Content, error)
	GetGroup(id string) (*model.Group, error)
	GetUser(id string) (*model.User, error)
	UpsertRelation(kind store.RelationKind, userId, contentId string) error
	DeleteRelation(kind store.RelationKind, userId, contentId string) error
	HasRelation(kind store.RelationKind, userId, contentId string) (bool, error)
	AddGroupMember(groupId, userId string) error
	RemoveGroupMember(groupId, userId string) error
}

type Ledger struct {
	store RelationStore
}

func NewLedger(s RelationStore) *Ledger {
	return &Ledger{store: s}
}

// ToggleSaved flips the saved mark and returns the new state. Two
// toggles in a row land back on the original state.
func (l *Ledger) ToggleSaved(actor *model.User, contentId string) (bool, error) {
	return l.toggle(store.RelationSaved, actor, contentId)
}

// ToggleLiked flips the liked mark and returns the new state.
func (l *Ledger) ToggleLiked(actor *model.User, contentId string) (bool, error) {
	return l.toggle(store.RelationLiked, actor, contentId)
}

// MarkSeen is a one-way set-insert, a seen mark is never removed.
// Marking twice is absorbed by the relation table's primary key.
func (l *Ledger) MarkSeen(actor *model.User, contentId string) error {
	if err := l.guardRelationMutation(actor, contentId); err != nil {
		return err
	}
	return l.store.UpsertRelation(store.RelationSeen, actor.Id, contentId)
}

func (l *Ledger) IsSaved(actor *model.User, contentId string) (bool, error) {
	return l.query(store.RelationSaved, actor, contentId)
}

func (l *Ledger) IsLiked(actor *model.User, contentId string) (bool, error) {
	return l.query(store.RelationLiked, actor, contentId)
}

func (l *Ledger) IsSeen(actor *model.User, contentId string) (bool, error) {
	return l.query(store.RelationSeen, actor, contentId)
}

// AddMember adds userId to the group's member set. Only the group owner
// manages membership.
func (l *Ledger) AddMember(actor *model.User, groupId, userId string) error {
	group, err := l.store.GetGroup(groupId)
	if err != nil {
		return err
	}
	if !access.CanManageGroup(actor, group) {
		return errors.Wrapf(model.ErrForbidden, "user cannot manage group %s", groupId)
	}
	if _, err := l.store.GetUser(userId); err != nil {
		return err
	}
	return l.store.AddGroupMember(groupId, userId)
}

// RemoveMember removes userId from the explicit member set. The owner
// removing themselves stays owner, ownership is not a membership row.
func (l *Ledger) RemoveMember(actor *model.User, groupId, userId string) error {
	group, err := l.store.GetGroup(groupId)
	if err != nil {
		return err
	}
	if !access.CanManageGroup(actor, group) {
		return errors.Wrapf(model.ErrForbidden, "user cannot manage group %s", groupId)
	}
	return l.store.RemoveGroupMember(groupId, userId)
}

func (l *Ledger) toggle(kind store.RelationKind, actor *model.User, contentId string) (bool, error) {
	if err := l.guardRelationMutation(actor, contentId); err != nil {
		return false, err
	}
	present, err := l.store.HasRelation(kind, actor.Id, contentId)
	if err != nil {
		return false, err
	}
	if present {
		if err := l.store.DeleteRelation(kind, actor.Id, contentId); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := l.store.UpsertRelation(kind, actor.Id, contentId); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) query(kind store.RelationKind, actor *model.User, contentId string) (bool, error) {
	if actor.IsAnonymous() {
		return false, nil
	}
	return l.store.HasRelation(kind, actor.Id, contentId)
}

// guardRelationMutation enforces that a user can only mark content they
// are permitted to view.
func (l *Ledger) guardRelationMutation(actor *model.User, contentId string) error {
	if actor.IsAnonymous() {
		return errors.Wrap(model.ErrForbidden, "anonymous actor cannot mark content")
	}
	content, err := l.store.GetContent(contentId)
	if err != nil {
		return err
	}
	if content.Deleted {
		// same answer a View would give, deletion stays unobservable
		return errors.Wrapf(model.ErrNotFound, "content %s", contentId)
	}
	var group *model.Group
	if content.GroupID != nil {
		if group, err = l.store.GetGroup(*content.GroupID); err != nil {
			return err
		}
	}
	if !access.CanView(actor, content, group) {
		return errors.Wrapf(model.ErrForbidden, "user cannot view content %s", contentId)
	}
	return nil
}
