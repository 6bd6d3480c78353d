// Package media validates, resizes and stores uploaded issue photos.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"pragatipath-be/models"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxFiles    = 5
	MaxFileSize = 5 << 20

	maxDimension = 1200
	jpegQuality  = 80
	outputType   = "image/jpeg"
)

// allowedTypes are the content types accepted from clients.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
	"image/gif":  true,
}

var (
	ErrTooManyFiles = fmt.Errorf("at most %d files may be uploaded", MaxFiles)
	ErrTooLarge     = fmt.Errorf("each file must be at most %d MB", MaxFileSize>>20)
	ErrNotImage     = errors.New("only JPEG, PNG, JPG, and GIF images are allowed")
)

// ValidateUploads applies the request-level upload limits before any file is processed.
func ValidateUploads(files []*multipart.FileHeader) error {
	if len(files) > MaxFiles {
		return ErrTooManyFiles
	}
	for _, fh := range files {
		if fh.Size > MaxFileSize {
			return ErrTooLarge
		}
		ct := strings.ToLower(fh.Header.Get("Content-Type"))
		if ct != "" && !allowedTypes[ct] {
			return ErrNotImage
		}
	}
	return nil
}

// Processor turns an uploaded image into a bounded JPEG in Storage.
type Processor struct {
	storage Storage
	now     func() time.Time
}

func NewProcessor(storage Storage) *Processor {
	return &Processor{storage: storage, now: time.Now}
}

// Ingest processes a single upload. Errors are per file; callers decide whether to skip.
func (p *Processor) Ingest(ctx context.Context, fh *multipart.FileHeader, uploader primitive.ObjectID) (*models.Media, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return p.Process(ctx, f, fh.Filename, uploader)
}

// Process sniffs, resizes and stores one image read from r.
func (p *Processor) Process(ctx context.Context, r io.Reader, filename string, uploader primitive.ObjectID) (*models.Media, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrTooLarge
	}

	detected := mimetype.Detect(data)
	if !allowedTypes[detected.String()] {
		return nil, fmt.Errorf("%s is %s: %w", filename, detected.String(), ErrNotImage)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	// Fit never enlarges an image that is already inside the bounds
	img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", filename, err)
	}

	now := p.now()
	key := fmt.Sprintf("processed/processed-image-%s.jpg", ulid.Make().String())
	url, err := p.storage.Save(ctx, key, outputType, &out)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", filename, err)
	}

	return &models.Media{
		URL:          url,
		MimeType:     outputType,
		UploadedBy:   uploader,
		UploadedAt:   now,
		OriginalName: filename,
	}, nil
}
