package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/repository"
	"github.com/asgtransit/website-api/pkg/validator"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	return logger, hook
}

type savedBlob struct {
	folder string
	name   string
	size   int
}

type memoryBlobs struct {
	saved []savedBlob
	err   error
}

func (m *memoryBlobs) Save(ctx context.Context, subdir, suggestedName string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, savedBlob{folder: subdir, name: suggestedName, size: len(data)})
	return fmt.Sprintf("/uploads/%s/%d-%s", subdir, len(m.saved), suggestedName), nil
}

// memoryBatchWriter applies batches to a map; failAt makes the n-th write fail
type memoryBatchWriter struct {
	docs   map[string]database.Document
	failAt int
	calls  int
}

func newMemoryBatchWriter() *memoryBatchWriter {
	return &memoryBatchWriter{docs: map[string]database.Document{}, failAt: -1}
}

func (w *memoryBatchWriter) SetBatch(ctx context.Context, writes []database.DocumentWrite) error {
	w.calls++
	staged := make(map[string]database.Document, len(w.docs)+len(writes))
	for k, v := range w.docs {
		staged[k] = v
	}
	for i, write := range writes {
		if i == w.failAt {
			return errors.New("simulated write failure")
		}
		staged[string(write.Collection)+"/"+write.ID] = write.Data.Clone()
	}
	w.docs = staged
	return nil
}

type testServices struct {
	store   *database.FileStore
	cache   *ListingCache
	blobs   *memoryBlobs
	routes  *RouteService
	alerts  *AlertService
	drivers *DriverService
	hook    *test.Hook
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)

	logger, hook := newTestLogger()
	cache := NewListingCache(0)
	blobs := &memoryBlobs{}
	v := validator.NewRecordValidator()
	routeRepo := repository.NewRouteRepository(store)

	return &testServices{
		store:   store,
		cache:   cache,
		blobs:   blobs,
		routes:  NewRouteService(routeRepo, v, blobs, cache, 1024, logger),
		alerts:  NewAlertService(repository.NewAlertRepository(store), v, cache, logger),
		drivers: NewDriverService(repository.NewDriverRepository(store), routeRepo, v, cache, logger),
		hook:    hook,
	}
}
