package model

// ThumbnailSize is the enumerated label of a derived artifact. The size
// table is fixed, per-size paths are rows keyed by (content, size), not
// dynamically named columns.
type ThumbnailSize string

const (
	ThumbnailSizeSmall  ThumbnailSize = "small"
	ThumbnailSizeMedium ThumbnailSize = "medium"
)

/*

Thumbnail is a derived artifact of a Content original

ContentID: content this artifact belongs to
Size: size label, one of the fixed ThumbnailSize set
Path: blob store path of the derived bytes
Width: pixel width of the derived image
Height: pixel height of the derived image

*/

type Thumbnail struct {
	ContentID string        `gorm:"primaryKey"`
	Size      ThumbnailSize `gorm:"primaryKey"`
	Path      string
	Width     int
	Height    int
}
