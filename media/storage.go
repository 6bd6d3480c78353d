package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultPublicPath is the URL prefix disk-stored media is served under.
const DefaultPublicPath = "/api/uploads"

// Storage persists processed media and returns the URL clients fetch it from.
type Storage interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// DiskStorage writes files below Root; the router serves Root under PublicPath.
type DiskStorage struct {
	Root       string
	PublicPath string
}

func NewDiskStorage(root, publicPath string) (*DiskStorage, error) {
	if publicPath == "" {
		publicPath = DefaultPublicPath
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{Root: root, PublicPath: strings.TrimSuffix(publicPath, "/")}, nil
}

func (d *DiskStorage) Save(_ context.Context, key, _ string, body io.Reader) (string, error) {
	dst := filepath.Join(d.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return d.PublicPath + "/" + key, nil
}

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage uploads media to a bucket and links to it through BaseURL.
type S3Storage struct {
	Client  ObjectPutter
	Bucket  string
	Prefix  string
	BaseURL string
}

// NewS3Storage defaults BaseURL to the bucket's virtual-hosted endpoint.
func NewS3Storage(client ObjectPutter, bucket, region, prefix, baseURL string) *S3Storage {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Storage{
		Client:  client,
		Bucket:  bucket,
		Prefix:  strings.Trim(prefix, "/"),
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *S3Storage) Save(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	objectKey := key
	if s.Prefix != "" {
		objectKey = path.Join(s.Prefix, key)
	}

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", objectKey, err)
	}
	return s.BaseURL + "/" + objectKey, nil
}
