// Package ingest coordinates store-then-register-then-derive for new
// uploads. The ordering guarantee is that a Content row only ever
// exists when its original bytes were written first.
package ingest

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/memeboard/memeboard-backend/filestore"
	"github.com/memeboard/memeboard-backend/model"
	"github.com/memeboard/memeboard-backend/utils"
	Logger "github.com/memeboard/memeboard-backend/utils/log"
)

const fetchTimeout = 30 * time.Second

// IngestStore is the slice of the entity store the orchestrator needs.
type IngestStore interface {
	CreateContent(content *model.Content) error
	GetGroup(id string) (*model.Group, error)
}

// Deriver produces the thumbnail set from decoded original bytes.
type Deriver interface {
	Derive(originalKey string, data []byte) ([]model.Thumbnail, error)
}

type Orchestrator struct {
	store    IngestStore
	fs       filestore.FileStore
	pipeline Deriver
	client   *http.Client
}

func NewOrchestrator(s IngestStore, fs filestore.FileStore, pipeline Deriver) *Orchestrator {
	return &Orchestrator{
		store:    s,
		fs:       fs,
		pipeline: pipeline,
		client:   &http.Client{Timeout: fetchTimeout},
	}
}

// FromBytes ingests an uploaded blob. Steps in order: persist original
// under a fresh collision-resistant key, attempt derivation, create the
// Content row. A storage failure on step one aborts with nothing
// created. A row-create failure on step three removes the now-orphaned
// bytes best-effort and surfaces the failure.
func (o *Orchestrator) FromBytes(actor *model.User, filename string, data []byte, private bool, groupId *string) (*model.Content, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(model.ErrValidation, "empty upload")
	}
	return o.ingestBytes(actor, filename, "", data, private, groupId)
}

// FromURL fetches a remote original and ingests it like an upload,
// recording the source URL on the row.
func (o *Orchestrator) FromURL(actor *model.User, rawUrl string, private bool, groupId *string) (*model.Content, error) {
	parsed, err := url.ParseRequestURI(rawUrl)
	if err != nil {
		return nil, errors.Wrapf(model.ErrValidation, "invalid source url %s", rawUrl)
	}

	resp, err := o.client.Get(rawUrl)
	if err != nil {
		return nil, errors.Wrapf(model.ErrStorageIO, "fail to fetch %s: %v", rawUrl, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(model.ErrStorageIO, "fail to fetch %s: status %d", rawUrl, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(model.ErrStorageIO, "fail to read %s: %v", rawUrl, err)
	}
	if len(data) == 0 {
		return nil, errors.Wrapf(model.ErrValidation, "empty body from %s", rawUrl)
	}

	return o.ingestBytes(actor, parsed.Path, rawUrl, data, private, groupId)
}

// FromNote registers a text-only content item. No bytes, no derivation.
func (o *Orchestrator) FromNote(actor *model.User, title, body string, private bool) (*model.Content, error) {
	if title == "" && body == "" {
		return nil, errors.Wrap(model.ErrValidation, "empty note")
	}
	content := &model.Content{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		Kind:      model.ContentKindNote,
		OwnerID:   ownerId(actor),
		Name:      title,
		Body:      body,
		Private:   private,
	}
	if err := o.store.CreateContent(content); err != nil {
		return nil, errors.Wrap(err, "fail to create note")
	}
	return content, nil
}

func (o *Orchestrator) ingestBytes(actor *model.User, filename, sourceUrl string, data []byte, private bool, groupId *string) (*model.Content, error) {
	if groupId != nil {
		if _, err := o.store.GetGroup(*groupId); err != nil {
			return nil, err
		}
	}

	// Fresh random key per ingest: user-supplied names never reach the
	// blob store, which rules out traversal and overwrite collisions.
	key := uuid.New().String() + utils.GetExtNameWithDot(filename)
	originalPath, err := o.fs.PutBytes(key, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "fail to persist original %s", key)
	}

	kind := model.ContentKindMeme
	thumbnails, err := o.pipeline.Derive(key, data)
	if err != nil {
		// Not an image, or not one we can decode. The original stays
		// retrievable, the item just has no derived artifacts.
		Logger.LogV2.Infof("ingest %s without thumbnails: %s", key, err.Error())
		kind = model.ContentKindFile
		thumbnails = nil
	}

	content := &model.Content{
		Id:           uuid.New().String(),
		CreatedAt:    time.Now(),
		Kind:         kind,
		OwnerID:      ownerId(actor),
		GroupID:      groupId,
		Name:         displayName(filename),
		Private:      private,
		OriginalPath: originalPath,
		OriginalURL:  sourceUrl,
		FileSize:     utils.HumanReadableSize(int64(len(data))),
		FileType:     fileType(key),
		Thumbnails:   thumbnails,
	}

	if err := o.store.CreateContent(content); err != nil {
		o.cleanUpOrphans(originalPath, thumbnails)
		return nil, errors.Wrapf(err, "fail to register content for %s", key)
	}
	return content, nil
}

// cleanUpOrphans removes bytes written before a failed row create.
// Best effort: a leaked blob is logged, not propagated.
func (o *Orchestrator) cleanUpOrphans(originalPath string, thumbnails []model.Thumbnail) {
	paths := []string{originalPath}
	for _, t := range thumbnails {
		paths = append(paths, t.Path)
	}
	for _, p := range paths {
		if err := o.fs.DeleteBytes(p); err != nil {
			Logger.LogV2.Warnf("fail to clean up orphaned bytes %s: %s", p, err.Error())
		}
	}
}

func ownerId(actor *model.User) *string {
	if actor.IsAnonymous() {
		return nil
	}
	id := actor.Id
	return &id
}

func displayName(filename string) string {
	name := utils.BaseName(filename)
	if name == "" || name == "." || name == "/" {
		return "untitled"
	}
	return name
}

func fileType(key string) string {
	ext := utils.GetExtNameWithDot(key)
	if ext == "" {
		return ""
	}
	return ext[1:]
}
