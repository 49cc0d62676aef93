// Package media stores tweet images and avatars in an S3-compatible bucket.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"go.uber.org/zap"
)

// Store uploads and removes image blobs. Upload returns the public URL and
// the key later passed to Delete.
type Store interface {
	Upload(ctx context.Context, folder, owner, filename, contentType string, body io.Reader) (url, key string, err error)
	Delete(ctx context.Context, key string) error
}

// Key prefixes for the kinds of images stored.
const (
	FolderTweetImages = "tweetImages"
	FolderAvatars     = "avatars"
)

// ObjectKey names an uploaded image.
func ObjectKey(folder, owner, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return fmt.Sprintf("%s/%s/%s_%s", folder, owner, uuid.New().String(), name)
}

type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3(ctx context.Context, cfg lib.StorageConfig) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithHTTPClient(&http.Client{}),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: cfg.Bucket, publicURL: strings.TrimRight(cfg.PublicURL, "/")}, nil
}

func (s *S3) Upload(ctx context.Context, folder, owner, filename, contentType string, body io.Reader) (string, string, error) {
	key := ObjectKey(folder, owner, filename)
	obj, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", err
	}
	lib.Log.Info("image uploaded", zap.String("key", key), zap.String("etag", aws.ToString(obj.ETag)))
	return s.urlFor(key), key, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3) urlFor(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

// Disabled rejects uploads. Deletes succeed so cascades never block on it.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, string, string, io.Reader) (string, string, error) {
	return "", "", lib.InvalidOperation("Image uploads are not configured.")
}

func (Disabled) Delete(context.Context, string) error { return nil }

// Memory keeps blobs in a map; used by tests and local runs.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte
	// FailDelete makes Delete return this error when set.
	FailDelete error
}

func NewMemory() *Memory { return &Memory{blobs: make(map[string][]byte)} }

func (m *Memory) Upload(_ context.Context, folder, owner, filename, _ string, body io.Reader) (string, string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", "", err
	}
	key := ObjectKey(folder, owner, filename)
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return "memory://" + key, key, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}
