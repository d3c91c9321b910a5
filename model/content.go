package model

import (
	"time"
)

type ContentKind string

const (
	ContentKindMeme ContentKind = "MEME"
	ContentKindFile ContentKind = "FILE"
	ContentKindNote ContentKind = "NOTE"
)

/*

Content is a data model for any posted unit: a meme image, a generic
file or a plain note. The three kinds share one lifecycle, one privacy
rule set and one soft-delete path, so they share one row type.

Id: primary key, use to identify a content item
CreatedAt: time when entity is created
Kind: MEME / FILE / NOTE
OwnerID: user who posted it. Nullable, nil means anonymous content
GroupID: group this item is affiliated to, nullable
Name: display name, for files the original upload name
Details: free-text details, searchable
Body: note body, searchable, empty for media kinds
Private: visibility restricted to owner and group members
Deleted: soft-delete marker. A deleted row stays in the table for the
audit trail but never comes back from ordinary read paths
DeletedAt: time when the item was soft-deleted
OriginalPath: blob store path of the stored original bytes
OriginalURL: source URL when the item was ingested from a remote URL
FileSize: human readable size of the original, e.g. "1.24 MB"
FileType: extension-derived type of the original, e.g. "png"
Thumbnails: derived artifacts, at most one per size label

*/

type Content struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Kind      ContentKind `gorm:"default:'FILE'"`
	OwnerID   *string     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Owner     *User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	GroupID   *string
	Name      string
	Details   string
	Body      string
	Private   bool `gorm:"default:false"`
	Deleted   bool `gorm:"default:false"`
	DeletedAt *time.Time

	OriginalPath string
	OriginalURL  string
	FileSize     string
	FileType     string
	Thumbnails   []Thumbnail `gorm:"constraint:OnDelete:CASCADE;"`
}

// Restricted is the capability surface the access evaluator needs from
// anything subject to visibility rules. Content is the only implementer
// today, kinds differ by columns, not by rules.
type Restricted interface {
	OwnerId() *string
	IsPrivate() bool
	IsDeleted() bool
}

func (c *Content) OwnerId() *string { return c.OwnerID }
func (c *Content) IsPrivate() bool  { return c.Private }
func (c *Content) IsDeleted() bool  { return c.Deleted }

func (c *Content) IsAnonymous() bool { return c.OwnerID == nil }

func (c *Content) IsOwnedBy(userId string) bool {
	return c.OwnerID != nil && *c.OwnerID == userId
}

// ThumbnailPath returns the stored path for a size label, empty string
// when that size was never derived.
func (c *Content) ThumbnailPath(size ThumbnailSize) string {
	for _, t := range c.Thumbnails {
		if t.Size == size {
			return t.Path
		}
	}
	return ""
}

var _ Restricted = &Content{}
