package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/accountsvc/apiserver/internal/storage"
	"github.com/accountsvc/apiserver/types"
)

const exportContentType = "application/json"

// AccountLister yields the client-facing views of all accounts.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]types.AccountView, error)
}

// ObjectStore uploads objects to a bucket and reads back their attributes.
type ObjectStore interface {
	Upload(ctx context.Context, obj storage.Object) error
	Stat(ctx context.Context, key string) (storage.ObjectInfo, error)
}

// Metadata keys attached to every export object.
const (
	MetaAccountCount = "account-count"
	MetaExportedAt   = "exported-at"
)

// ExportResult describes a finished export.
type ExportResult struct {
	Key      string
	Accounts int
	Bytes    int64
}

// ExportService writes JSON snapshots of account views to object storage.
type ExportService struct {
	accounts AccountLister
	objects  ObjectStore
	now      func() time.Time
}

func NewExportService(accounts AccountLister, objects ObjectStore) *ExportService {
	return &ExportService{
		accounts: accounts,
		objects:  objects,
		now:      time.Now,
	}
}

// DefaultExportKey names an export after its start time.
func DefaultExportKey(at time.Time) string {
	return fmt.Sprintf("exports/accounts-%s.json", at.UTC().Format("20060102T150405Z"))
}

// Export uploads every account view under key, normalized the way storage
// stores it. An empty key uses DefaultExportKey.
func (s *ExportService) Export(ctx context.Context, key string) (ExportResult, error) {
	startedAt := s.now().UTC()
	key = storage.NormalizeKey(key)
	if key == "" {
		key = DefaultExportKey(startedAt)
	}

	views, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return ExportResult{}, err
	}

	data, err := json.Marshal(views)
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode accounts: %w", err)
	}

	size := int64(len(data))
	err = s.objects.Upload(ctx, storage.Object{
		Key:         key,
		Body:        bytes.NewReader(data),
		Size:        size,
		ContentType: exportContentType,
		Metadata: map[string]string{
			MetaAccountCount: strconv.Itoa(len(views)),
			MetaExportedAt:   startedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return ExportResult{}, fmt.Errorf("upload %s: %w", key, err)
	}

	info, err := s.objects.Stat(ctx, key)
	if err != nil {
		return ExportResult{}, fmt.Errorf("stat %s: %w", key, err)
	}
	if info.Size != size {
		return ExportResult{}, fmt.Errorf("export %s: stored %d bytes, wrote %d", key, info.Size, size)
	}

	return ExportResult{
		Key:      key,
		Accounts: len(views),
		Bytes:    size,
	}, nil
}
