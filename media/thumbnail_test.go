package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memeboard/memeboard-backend/model"
)

// TestFileStore keeps blobs in memory, optionally failing puts whose
// key contains failSubstring.
type TestFileStore struct {
	blobs         map[string][]byte
	failSubstring string
}

func NewTestFileStore() *TestFileStore {
	return &TestFileStore{blobs: map[string][]byte{}}
}

func (s *TestFileStore) PutBytes(key string, r io.Reader) (string, error) {
	if s.failSubstring != "" && strings.Contains(key, s.failSubstring) {
		return "", fmt.Errorf("injected put failure for %s", key)
	}
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.blobs[key] = data
	return key, nil
}

func (s *TestFileStore) GetBytes(path string) (io.ReadCloser, error) {
	data, ok := s.blobs[path]
	if !ok {
		return nil, fmt.Errorf("no blob %s", path)
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

func (s *TestFileStore) DeleteBytes(path string) error {
	if _, ok := s.blobs[path]; !ok {
		return fmt.Errorf("no blob %s", path)
	}
	delete(s.blobs, path)
	return nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeStored(t *testing.T, fs *TestFileStore, path string) image.Image {
	r, err := fs.GetBytes(path)
	require.NoError(t, err)
	defer r.Close()
	img, _, err := image.Decode(r)
	require.NoError(t, err)
	return img
}

func TestDerive(t *testing.T) {
	t.Run("produces every configured size within bounds", func(t *testing.T) {
		fs := NewTestFileStore()
		pipeline := NewPipeline(fs)

		thumbnails, err := pipeline.Derive("orig.png", pngBytes(t, 700, 500))
		require.NoError(t, err)
		require.Len(t, thumbnails, 2)

		for _, thumb := range thumbnails {
			bound, ok := SizeBound(thumb.Size)
			require.True(t, ok)

			img := decodeStored(t, fs, thumb.Path)
			require.LessOrEqual(t, img.Bounds().Dx(), bound.Width)
			require.LessOrEqual(t, img.Bounds().Dy(), bound.Height)
			require.Equal(t, thumb.Width, img.Bounds().Dx())
			require.Equal(t, thumb.Height, img.Bounds().Dy())

			// aspect ratio within rounding tolerance of 700:500
			ratio := float64(img.Bounds().Dx()) / float64(img.Bounds().Dy())
			require.InDelta(t, 1.4, ratio, 0.02)
		}
	})

	t.Run("longest edge hits the bound exactly for oversized input", func(t *testing.T) {
		fs := NewTestFileStore()
		pipeline := NewPipeline(fs)

		thumbnails, err := pipeline.Derive("wide.png", pngBytes(t, 1400, 700))
		require.NoError(t, err)

		for _, thumb := range thumbnails {
			bound, _ := SizeBound(thumb.Size)
			require.Equal(t, bound.Width, thumb.Width)
		}
	})

	t.Run("never upscales a small original", func(t *testing.T) {
		fs := NewTestFileStore()
		pipeline := NewPipeline(fs)

		thumbnails, err := pipeline.Derive("tiny.png", pngBytes(t, 40, 30))
		require.NoError(t, err)
		require.Len(t, thumbnails, 2)

		for _, thumb := range thumbnails {
			require.Equal(t, 40, thumb.Width)
			require.Equal(t, 30, thumb.Height)
		}
	})

	t.Run("undecodable bytes fail the whole derivation", func(t *testing.T) {
		fs := NewTestFileStore()
		pipeline := NewPipeline(fs)

		thumbnails, err := pipeline.Derive("junk.bin", []byte("definitely not an image"))
		require.Error(t, err)
		require.True(t, errors.Is(err, model.ErrDecode))
		require.Empty(t, thumbnails)
		require.Empty(t, fs.blobs)
	})

	t.Run("one failed size does not block the others", func(t *testing.T) {
		fs := NewTestFileStore()
		fs.failSubstring = string(model.ThumbnailSizeSmall) + "_"
		pipeline := NewPipeline(fs)

		thumbnails, err := pipeline.Derive("orig.png", pngBytes(t, 700, 500))
		require.NoError(t, err)
		require.Len(t, thumbnails, 1)
		require.Equal(t, model.ThumbnailSizeMedium, thumbnails[0].Size)
	})

	t.Run("thumbnail keys are deterministic per size", func(t *testing.T) {
		require.Equal(t, "thumbnails/small_abc.png",
			ThumbnailKey(model.ThumbnailSizeSmall, "abc.png"))
		require.Equal(t, "thumbnails/medium_abc.png",
			ThumbnailKey(model.ThumbnailSizeMedium, "abc.png"))
	})
}
