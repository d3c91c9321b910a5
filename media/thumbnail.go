package media

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"

	xdraw "golang.org/x/image/draw"

	"github.com/pkg/errors"

	"github.com/memeboard/memeboard-backend/filestore"
	"github.com/memeboard/memeboard-backend/model"
	Logger "github.com/memeboard/memeboard-backend/utils/log"
)

// Bound is the max box of a thumbnail size. Neither output dimension
// exceeds it, aspect ratio is preserved, images are never upscaled.
type Bound struct {
	Width  int
	Height int
}

var sizeTable = map[model.ThumbnailSize]Bound{
	model.ThumbnailSizeSmall:  {Width: 150, Height: 150},
	model.ThumbnailSizeMedium: {Width: 350, Height: 350},
}

// sizeOrder fixes derivation order so partial failures are reproducible.
var sizeOrder = []model.ThumbnailSize{
	model.ThumbnailSizeSmall,
	model.ThumbnailSizeMedium,
}

// SizeBound exposes the configured bound of a size label.
func SizeBound(size model.ThumbnailSize) (Bound, bool) {
	b, ok := sizeTable[size]
	return b, ok
}

// Pipeline derives the fixed thumbnail set from stored originals.
type Pipeline struct {
	fs filestore.FileStore
}

func NewPipeline(fs filestore.FileStore) *Pipeline {
	return &Pipeline{fs: fs}
}

// Derive decodes the original once and produces one thumbnail per entry
// of the size table.
//
// Failure policy: an undecodable original returns ErrDecode and no
// thumbnails, the caller keeps the original retrievable. A single
// size's resample or store failure skips that size and the rest
// proceed, so a partial set is a valid result.
func (p *Pipeline) Derive(originalKey string, data []byte) ([]model.Thumbnail, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(model.ErrDecode, "fail to decode %s: %v", originalKey, err)
	}

	thumbnails := []model.Thumbnail{}
	for _, size := range sizeOrder {
		bound := sizeTable[size]
		thumb, err := p.deriveOne(originalKey, src, format, size, bound)
		if err != nil {
			Logger.LogV2.Warnf("skip %s thumbnail for %s: %s", size, originalKey, err.Error())
			continue
		}
		thumbnails = append(thumbnails, *thumb)
	}
	return thumbnails, nil
}

func (p *Pipeline) deriveOne(originalKey string, src image.Image, format string, size model.ThumbnailSize, bound Bound) (*model.Thumbnail, error) {
	scaled := Scale(src, bound)

	var buf bytes.Buffer
	if err := encode(&buf, scaled, format); err != nil {
		return nil, err
	}

	// Deterministic per-size key, collision-free because original keys
	// are unique.
	key := ThumbnailKey(size, originalKey)
	storedPath, err := p.fs.PutBytes(key, &buf)
	if err != nil {
		return nil, err
	}

	rect := scaled.Bounds()
	return &model.Thumbnail{
		Size:   size,
		Path:   storedPath,
		Width:  rect.Dx(),
		Height: rect.Dy(),
	}, nil
}

// ThumbnailKey derives the blob key of a size label from the original's
// key, e.g. "thumbnails/small_ab12cd.png".
func ThumbnailKey(size model.ThumbnailSize, originalKey string) string {
	return path.Join("thumbnails", fmt.Sprintf("%s_%s", size, path.Base(originalKey)))
}

// Scale resamples src so neither dimension exceeds bound, preserving
// aspect ratio. Images already inside the bound come back at original
// resolution.
func Scale(src image.Image, bound Bound) image.Image {
	rect := src.Bounds()
	w, h := rect.Dx(), rect.Dy()

	scale := 1.0
	if s := float64(bound.Width) / float64(w); s < scale {
		scale = s
	}
	if s := float64(bound.Height) / float64(h); s < scale {
		scale = s
	}
	if scale >= 1.0 {
		return src
	}

	tw := int(float64(w)*scale + 0.5)
	th := int(float64(h)*scale + 0.5)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, rect, xdraw.Over, nil)
	return dst
}

// encode re-encodes in the original's codec. GIF thumbnails drop
// animation, a single resampled frame is enough for a preview.
func encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return png.Encode(w, img)
	}
}
