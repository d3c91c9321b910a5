// Package server exposes the content core to the calling web layer: a
// Service facade over the core packages plus the thin gin handlers that
// drive it. Every operation takes an explicit actor, there is no
// ambient session state.
package server

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/google/uuid"

	"github.com/memeboard/memeboard-backend/access"
	"github.com/memeboard/memeboard-backend/audit"
	"github.com/memeboard/memeboard-backend/filestore"
	"github.com/memeboard/memeboard-backend/ingest"
	"github.com/memeboard/memeboard-backend/ledger"
	"github.com/memeboard/memeboard-backend/model"
	"github.com/memeboard/memeboard-backend/store"
	Logger "github.com/memeboard/memeboard-backend/utils/log"
)

// Store is the slice of the entity store the facade reads and writes
// directly. Ledger, audit and ingest mutations go through their own
// packages.
type Store interface {
	GetContent(id string) (*model.Content, error)
	ListContent(filter store.ContentFilter) ([]*model.Content, error)
	ListContentIncludingDeleted() ([]*model.Content, error)
	UpdateContent(id string, mutation store.ContentMutation) (*model.Content, error)
	GetUser(id string) (*model.User, error)
	GetGroup(id string) (*model.Group, error)
	CreateGroup(group *model.Group) error
	UpdateGroup(id string, mutation store.GroupMutation) (*model.Group, error)
	CreateDownload(download *model.Download) error
}

type Service struct {
	store    Store
	files    filestore.FileStore
	ledger   *ledger.Ledger
	trail    *audit.Trail
	ingestor *ingest.Orchestrator
}

func NewService(s Store, fs filestore.FileStore, l *ledger.Ledger, t *audit.Trail, o *ingest.Orchestrator) *Service {
	return &Service{store: s, files: fs, ledger: l, trail: t, ingestor: o}
}

// IngestInput carries one upload: either raw bytes with the original
// filename, or a source URL. Supplying neither is a validation error.
type IngestInput struct {
	Filename string
	Data     []byte
	URL      string
	Private  bool
	GroupID  *string
}

func (s *Service) Ingest(actor *model.User, input IngestInput) (*model.Content, error) {
	switch {
	case len(input.Data) > 0:
		return s.ingestor.FromBytes(actor, input.Filename, input.Data, input.Private, input.GroupID)
	case input.URL != "":
		return s.ingestor.FromURL(actor, input.URL, input.Private, input.GroupID)
	default:
		return nil, errors.Wrap(model.ErrValidation, "neither file nor url supplied")
	}
}

func (s *Service) CreateNote(actor *model.User, title, body string, private bool) (*model.Content, error) {
	return s.ingestor.FromNote(actor, title, body, private)
}

// View returns one item if actor may see it. Soft-deleted items report
// not-found for everyone, including the owner and admins.
func (s *Service) View(actor *model.User, contentId string) (*model.Content, error) {
	content, err := s.store.GetContent(contentId)
	if err != nil {
		return nil, err
	}
	if content.Deleted {
		return nil, errors.Wrapf(model.ErrNotFound, "content %s", contentId)
	}
	group, err := s.contentGroup(content)
	if err != nil {
		return nil, err
	}
	if !access.CanView(actor, content, group) {
		return nil, errors.Wrapf(model.ErrForbidden, "user cannot view content %s", contentId)
	}
	return content, nil
}

// Download returns the stored original bytes of an item actor may view
// and appends one Download row per fetch. Notes carry no bytes and
// report not-found. The caller owns closing the reader.
func (s *Service) Download(actor *model.User, contentId string) (*model.Content, io.ReadCloser, error) {
	content, err := s.View(actor, contentId)
	if err != nil {
		return nil, nil, err
	}
	if content.OriginalPath == "" {
		return nil, nil, errors.Wrapf(model.ErrNotFound, "content %s has no stored bytes", contentId)
	}
	reader, err := s.files.GetBytes(content.OriginalPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fail to read bytes of content %s", contentId)
	}
	download := &model.Download{
		Id:           uuid.New().String(),
		ContentID:    contentId,
		DownloadDate: time.Now(),
	}
	if !actor.IsAnonymous() {
		download.UserID = &actor.Id
	}
	if err := s.store.CreateDownload(download); err != nil {
		reader.Close()
		return nil, nil, errors.Wrapf(err, "fail to record download of %s", contentId)
	}
	return content, reader, nil
}

// ListVisible lists every non-deleted item matching filter that actor
// may view. filter may be nil for no predicate.
func (s *Service) ListVisible(actor *model.User, filter *store.ContentFilter) ([]*model.Content, error) {
	f := store.ContentFilter{}
	if filter != nil {
		f = *filter
	}
	candidates, err := s.store.ListContent(f)
	if err != nil {
		return nil, err
	}

	// groups rarely repeat enough to matter, but one fetch per group id
	// per listing keeps the hot path off N+1
	groups := map[string]*model.Group{}
	visible := []*model.Content{}
	for _, content := range candidates {
		group, err := s.cachedGroup(groups, content)
		if err != nil {
			return nil, err
		}
		if access.CanView(actor, content, group) {
			visible = append(visible, content)
		}
	}
	return visible, nil
}

// Search is ListVisible with the free-text predicate applied.
func (s *Service) Search(actor *model.User, term string) ([]*model.Content, error) {
	if term == "" {
		return []*model.Content{}, nil
	}
	return s.ListVisible(actor, &store.ContentFilter{Term: term})
}

// ListUserContent lists userId's items that actor may view.
func (s *Service) ListUserContent(actor *model.User, userId string) ([]*model.Content, error) {
	return s.ListVisible(actor, &store.ContentFilter{OwnerID: &userId})
}

// ListAllForAdmin is the one privileged listing that bypasses the view
// predicate and includes soft-deleted rows. It is reported as a
// privileged operation in the log.
func (s *Service) ListAllForAdmin(actor *model.User) ([]*model.Content, error) {
	if !actor.Admin() {
		return nil, errors.Wrap(model.ErrForbidden, "admin listing requires admin")
	}
	Logger.LogV2.Infof("privileged: admin %s listed all content", actor.Id)
	return s.store.ListContentIncludingDeleted()
}

// UpdateContent applies an owner or admin edit to a non-deleted item.
func (s *Service) UpdateContent(actor *model.User, contentId string, mutation store.ContentMutation) (*model.Content, error) {
	content, err := s.store.GetContent(contentId)
	if err != nil {
		return nil, err
	}
	if content.Deleted {
		return nil, errors.Wrapf(model.ErrNotFound, "content %s", contentId)
	}
	if !access.CanEdit(actor, content) {
		return nil, errors.Wrapf(model.ErrForbidden, "user cannot edit content %s", contentId)
	}
	return s.store.UpdateContent(contentId, mutation)
}

func (s *Service) SoftDelete(actor *model.User, contentId, reason string) error {
	return s.trail.SoftDelete(actor, contentId, reason)
}

func (s *Service) ToggleSaved(actor *model.User, contentId string) (bool, error) {
	return s.ledger.ToggleSaved(actor, contentId)
}

func (s *Service) ToggleLiked(actor *model.User, contentId string) (bool, error) {
	return s.ledger.ToggleLiked(actor, contentId)
}

func (s *Service) MarkSeen(actor *model.User, contentId string) error {
	return s.ledger.MarkSeen(actor, contentId)
}

func (s *Service) CreateGroup(actor *model.User, name string, private bool) (*model.Group, error) {
	if actor.IsAnonymous() {
		return nil, errors.Wrap(model.ErrForbidden, "anonymous actor cannot create groups")
	}
	if name == "" {
		return nil, errors.Wrap(model.ErrValidation, "group name required")
	}
	group := &model.Group{
		Id:      uuid.New().String(),
		Name:    name,
		OwnerID: actor.Id,
		Private: private,
	}
	if err := s.store.CreateGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) UpdateGroup(actor *model.User, groupId string, mutation store.GroupMutation) (*model.Group, error) {
	group, err := s.store.GetGroup(groupId)
	if err != nil {
		return nil, err
	}
	if !access.CanManageGroup(actor, group) {
		return nil, errors.Wrapf(model.ErrForbidden, "user cannot manage group %s", groupId)
	}
	return s.store.UpdateGroup(groupId, mutation)
}

func (s *Service) AddMember(actor *model.User, groupId, userId string) error {
	return s.ledger.AddMember(actor, groupId, userId)
}

func (s *Service) RemoveMember(actor *model.User, groupId, userId string) error {
	return s.ledger.RemoveMember(actor, groupId, userId)
}

func (s *Service) contentGroup(content *model.Content) (*model.Group, error) {
	if content.GroupID == nil {
		return nil, nil
	}
	group, err := s.store.GetGroup(*content.GroupID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// dangling affiliation, treat as restricted
			return nil, nil
		}
		return nil, err
	}
	return group, nil
}

func (s *Service) cachedGroup(cache map[string]*model.Group, content *model.Content) (*model.Group, error) {
	if content.GroupID == nil {
		return nil, nil
	}
	if group, ok := cache[*content.GroupID]; ok {
		return group, nil
	}
	group, err := s.store.GetGroup(*content.GroupID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// dangling affiliation, treat as restricted rather than failing
			// the whole listing
			cache[*content.GroupID] = nil
			return nil, nil
		}
		return nil, err
	}
	cache[*content.GroupID] = group
	return group, nil
}
