package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/accountsvc/apiserver/config"
)

// ErrObjectNotFound is returned by Stat for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// Object is a single upload.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectStorage is implemented by each bucket backend.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, obj Object) error
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Bucket() string
	Close() error
}

// Storage fronts a backend and normalizes object keys.
type Storage struct {
	backend ObjectStorage
}

func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Open builds the backend selected by cfg.Backend and makes sure its bucket
// exists.
func Open(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch cfg.Backend {
	case config.StorageBackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case config.StorageBackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Backend, err)
	}

	s := NewStorage(backend)
	if err := backend.EnsureBucket(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return s, nil
}

// Upload stores obj. Keys are stored without a leading slash.
func (s *Storage) Upload(ctx context.Context, obj Object) error {
	obj.Key = NormalizeKey(obj.Key)
	if obj.Key == "" {
		return errors.New("object key is required")
	}
	return s.backend.Upload(ctx, obj)
}

func (s *Storage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	return s.backend.Stat(ctx, NormalizeKey(key))
}

func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}

func (s *Storage) Close() error {
	return s.backend.Close()
}

// NormalizeKey trims whitespace and leading slashes; keys are stored in
// this form.
func NormalizeKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}
