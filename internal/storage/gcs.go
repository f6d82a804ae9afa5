package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/accountsvc/apiserver/config"
	"google.golang.org/api/option"
)

// GCSClient uploads to a Google Cloud Storage bucket.
type GCSClient struct {
	client    *storage.Client
	bucket    string
	projectID string
}

func NewGCSClient(ctx context.Context, cfg config.GCSConfig) (*GCSClient, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSClient{client: client, bucket: cfg.Bucket, projectID: cfg.ProjectID}, nil
}

// EnsureBucket creates the bucket when missing; creation needs a project id.
func (g *GCSClient) EnsureBucket(ctx context.Context) error {
	handle := g.client.Bucket(g.bucket)
	_, err := handle.Attrs(ctx)
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	if strings.TrimSpace(g.projectID) == "" {
		return errors.New("gcs project id is required to create bucket")
	}
	return handle.Create(ctx, g.projectID, nil)
}

func (g *GCSClient) Upload(ctx context.Context, obj Object) error {
	w := g.client.Bucket(g.bucket).Object(obj.Key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.Metadata = obj.Metadata

	written, err := io.Copy(w, obj.Body)
	if err != nil {
		_ = w.Close()
		return err
	}
	if obj.Size >= 0 && written != obj.Size {
		_ = w.Close()
		return fmt.Errorf("short upload: wrote %d of %d bytes", written, obj.Size)
	}
	return w.Close()
}

func (g *GCSClient) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	attrs, err := g.client.Bucket(g.bucket).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ObjectInfo{}, ErrObjectNotFound
		}
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:         attrs.Name,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Metadata:    attrs.Metadata,
	}, nil
}

func (g *GCSClient) Bucket() string {
	return g.bucket
}

func (g *GCSClient) Close() error {
	return g.client.Close()
}
