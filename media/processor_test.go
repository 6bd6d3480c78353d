package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newDiskProcessor(t *testing.T) (*Processor, string) {
	t.Helper()
	root := t.TempDir()
	storage, err := NewDiskStorage(root, "/api/uploads/")
	require.NoError(t, err)
	return NewProcessor(storage), root
}

func TestProcessor_ResizesLargeImages(t *testing.T) {
	p, root := newDiskProcessor(t)
	uploader := primitive.NewObjectID()

	m, err := p.Process(context.Background(), bytes.NewReader(pngBytes(t, 2400, 1200)), "road.png", uploader)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", m.MimeType)
	assert.Equal(t, uploader, m.UploadedBy)
	assert.Equal(t, "road.png", m.OriginalName)
	assert.True(t, strings.HasPrefix(m.URL, "/api/uploads/processed/processed-image-"), m.URL)
	assert.True(t, strings.HasSuffix(m.URL, ".jpg"))

	stored := filepath.Join(root, strings.TrimPrefix(m.URL, "/api/uploads/"))
	img, err := imaging.Open(stored)
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestProcessor_DoesNotEnlarge(t *testing.T) {
	p, root := newDiskProcessor(t)

	m, err := p.Process(context.Background(), bytes.NewReader(pngBytes(t, 300, 200)), "small.png", primitive.NewObjectID())
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(root, strings.TrimPrefix(m.URL, "/api/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestProcessor_RejectsNonImages(t *testing.T) {
	p, root := newDiskProcessor(t)

	_, err := p.Process(context.Background(), strings.NewReader("just some text"), "notes.txt", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotImage)

	entries, _ := os.ReadDir(root)
	assert.Empty(t, entries)
}

func TestProcessor_CorruptImage(t *testing.T) {
	p, _ := newDiskProcessor(t)

	data := pngBytes(t, 50, 50)
	_, err := p.Process(context.Background(), bytes.NewReader(data[:40]), "broken.png", primitive.NewObjectID())
	assert.Error(t, err)
}

func header(size int64, contentType string) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: "f", Size: size, Header: h}
}

func TestValidateUploads(t *testing.T) {
	assert.NoError(t, ValidateUploads(nil))
	assert.NoError(t, ValidateUploads([]*multipart.FileHeader{header(10, "image/png"), header(10, "image/jpg")}))

	six := make([]*multipart.FileHeader, 6)
	for i := range six {
		six[i] = header(10, "image/png")
	}
	assert.ErrorIs(t, ValidateUploads(six), ErrTooManyFiles)
	assert.ErrorIs(t, ValidateUploads([]*multipart.FileHeader{header(MaxFileSize+1, "image/png")}), ErrTooLarge)
	assert.ErrorIs(t, ValidateUploads([]*multipart.FileHeader{header(10, "application/pdf")}), ErrNotImage)
}
