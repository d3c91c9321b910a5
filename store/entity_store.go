package store

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/memeboard/memeboard-backend/model"
)

// ContentFilter is the predicate applied by listing queries. The zero
// value matches every non-deleted item. Term is a case-insensitive
// substring match over name, details and body, which is the filter
// search results must respect (ranking is a caller concern).
type ContentFilter struct {
	Term    string
	OwnerID *string
	GroupID *string
	Kind    *model.ContentKind
}

// RelationKind selects one of the three (user, content) relation tables.
type RelationKind string

const (
	RelationSaved RelationKind = "saved"
	RelationLiked RelationKind = "liked"
	RelationSeen  RelationKind = "seen"
)

// EntityStore is the gorm-backed persistence layer of the content core.
// It holds no authorization logic: callers run candidates through the
// access predicates after reading.
type EntityStore struct {
	db *gorm.DB
}

func NewEntityStore(db *gorm.DB) *EntityStore {
	return &EntityStore{db: db}
}

func (s *EntityStore) GetContent(id string) (*model.Content, error) {
	var content model.Content
	result := s.db.Preload("Thumbnails").Where("id = ?", id).First(&content)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(model.ErrNotFound, "content %s", id)
		}
		return nil, result.Error
	}
	return &content, nil
}

// ListContent returns non-deleted items matching filter in stable
// insertion order. Visibility filtering happens in the caller.
func (s *EntityStore) ListContent(filter ContentFilter) ([]*model.Content, error) {
	query := s.db.Preload("Thumbnails").Where("deleted = ?", false)
	query = applyContentFilter(query, filter)

	var contents []*model.Content
	if err := query.Order("created_at asc, id asc").Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// ListContentIncludingDeleted is the privileged admin listing. It is the
// only read path that surfaces soft-deleted rows.
func (s *EntityStore) ListContentIncludingDeleted() ([]*model.Content, error) {
	var contents []*model.Content
	if err := s.db.Preload("Thumbnails").Order("created_at asc, id asc").Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

func (s *EntityStore) CreateContent(content *model.Content) error {
	return s.db.Create(content).Error
}

// ContentMutation is the set of caller-editable content fields. Nil
// pointer fields are left untouched.
type ContentMutation struct {
	Name    *string
	Details *string
	Body    *string
	Private *bool
	GroupID *string
}

// UpdateContent applies mutation to a non-deleted row and returns the
// updated item. Deleted rows are immutable and report not-found, same
// as every other ordinary path.
func (s *EntityStore) UpdateContent(id string, mutation ContentMutation) (*model.Content, error) {
	content, err := s.GetContent(id)
	if err != nil {
		return nil, err
	}
	if content.Deleted {
		return nil, errors.Wrapf(model.ErrNotFound, "content %s", id)
	}

	if mutation.Name != nil {
		content.Name = *mutation.Name
	}
	if mutation.Details != nil {
		content.Details = *mutation.Details
	}
	if mutation.Body != nil {
		content.Body = *mutation.Body
	}
	if mutation.Private != nil {
		content.Private = *mutation.Private
	}
	if mutation.GroupID != nil {
		content.GroupID = mutation.GroupID
	}

	if err := s.db.Save(content).Error; err != nil {
		return nil, err
	}
	return content, nil
}

// RecordDeletion commits the Deletion audit row and the deleted flag in
// one transaction. Either both land or neither does, so a Deletion row
// can never describe a still-live item.
func (s *EntityStore) RecordDeletion(deletion *model.Deletion) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(deletion).Error; err != nil {
			// return error will rollback
			return err
		}
		result := tx.Model(&model.Content{}).Where("id = ?", deletion.ContentID).
			Updates(map[string]interface{}{"deleted": true, "deleted_at": deletion.DeletionDate})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.Wrapf(model.ErrNotFound, "content %s", deletion.ContentID)
		}
		// return nil will commit the whole transaction
		return nil
	})
}

func (s *EntityStore) CreateDownload(download *model.Download) error {
	return s.db.Create(download).Error
}

func (s *EntityStore) GetUser(id string) (*model.User, error) {
	var user model.User
	result := s.db.Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(model.ErrNotFound, "user %s", id)
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *EntityStore) CreateUser(user *model.User) error {
	return s.db.Create(user).Error
}

func (s *EntityStore) GetGroup(id string) (*model.Group, error) {
	var group model.Group
	result := s.db.Preload("Members").Where("id = ?", id).First(&group)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(model.ErrNotFound, "group %s", id)
		}
		return nil, result.Error
	}
	return &group, nil
}

func (s *EntityStore) CreateGroup(group *model.Group) error {
	return s.db.Create(group).Error
}

// GroupMutation mirrors ContentMutation for owner-editable group fields.
type GroupMutation struct {
	Name    *string
	Private *bool
}

func (s *EntityStore) UpdateGroup(id string, mutation GroupMutation) (*model.Group, error) {
	group, err := s.GetGroup(id)
	if err != nil {
		return nil, err
	}
	if mutation.Name != nil {
		group.Name = *mutation.Name
	}
	if mutation.Private != nil {
		group.Private = *mutation.Private
	}
	if err := s.db.Save(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// AddGroupMember is idempotent: re-adding an existing member is a no-op
// absorbed by the composite primary key.
func (s *EntityStore) AddGroupMember(groupId, userId string) error {
	member := model.GroupMember{GroupID: groupId, UserID: userId, CreatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}

func (s *EntityStore) RemoveGroupMember(groupId, userId string) error {
	return s.db.Where("group_id = ? AND user_id = ?", groupId, userId).
		Delete(&model.GroupMember{}).Error
}

// UpsertRelation inserts a (user, content) relation row. Uniqueness is
// the composite primary key, concurrent duplicate inserts collapse into
// one row rather than racing at the application level.
func (s *EntityStore) UpsertRelation(kind RelationKind, userId, contentId string) error {
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(relationRow(kind, userId, contentId)).Error
}

func (s *EntityStore) DeleteRelation(kind RelationKind, userId, contentId string) error {
	return s.db.Where("user_id = ? AND content_id = ?", userId, contentId).
		Delete(relationRow(kind, userId, contentId)).Error
}

func (s *EntityStore) HasRelation(kind RelationKind, userId, contentId string) (bool, error) {
	var count int64
	err := s.db.Model(relationRow(kind, userId, contentId)).
		Where("user_id = ? AND content_id = ?", userId, contentId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func relationRow(kind RelationKind, userId, contentId string) interface{} {
	switch kind {
	case RelationLiked:
		return &model.UserContentLike{UserID: userId, ContentID: contentId, CreatedAt: time.Now()}
	case RelationSeen:
		return &model.UserContentSeen{UserID: userId, ContentID: contentId, CreatedAt: time.Now()}
	default:
		return &model.UserContentSave{UserID: userId, ContentID: contentId, CreatedAt: time.Now()}
	}
}

func applyContentFilter(query *gorm.DB, filter ContentFilter) *gorm.DB {
	if filter.Term != "" {
		pattern := "%" + strings.ToLower(filter.Term) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(details) LIKE ? OR LOWER(body) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	return query
}
