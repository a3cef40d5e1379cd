package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asgtransit/website-api/internal/database"
)

func seedFileStore(t *testing.T, store *database.FileStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Create(ctx, database.CollectionRoutes, "grecia-centro-1700000000000",
		database.Document{"nombre": "Grecia Centro", "category": "grecia", "tarifaCRC": 500.0})
	require.NoError(t, err)
	_, err = store.Create(ctx, database.CollectionRoutes, "sarchi-1700000000001",
		database.Document{"nombre": "Sarchí Norte", "category": "sarchi"})
	require.NoError(t, err)
	_, err = store.Create(ctx, database.CollectionAlerts, "1700000000002",
		database.Document{"titulo": "Desvío"})
	require.NoError(t, err)
	_, err = store.Create(ctx, database.CollectionDrivers, "d1700000000003",
		database.Document{"nombre": "Ana", "routeId": "grecia-centro-1700000000000"})
	require.NoError(t, err)
}

func TestMigrationService_NothingToMigrate(t *testing.T) {
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	writer := newMemoryBatchWriter()
	logger, _ := newTestLogger()

	result, err := NewMigrationService(store, writer, nil, logger).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NothingToMigrateMessage, result.Message)
	assert.Zero(t, writer.calls)
}

func TestMigrationService_Run(t *testing.T) {
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	seedFileStore(t, store)
	writer := newMemoryBatchWriter()
	logger, _ := newTestLogger()

	result, err := NewMigrationService(store, writer, NewListingCache(0), logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2 routes, 1 alerts, 1 drivers migrated", result.Message)
	assert.Equal(t, 2, result.Routes)
	assert.Equal(t, 1, writer.calls)

	route, ok := writer.docs["routes/grecia-centro"]
	require.True(t, ok, "routes are keyed by slug of nombre")
	assert.NotContains(t, route, "id")
	assert.Equal(t, 500.0, route["tarifaCRC"])
	assert.Contains(t, writer.docs, "routes/sarchi-norte")
	assert.Contains(t, writer.docs, "alerts/1700000000002")
	assert.Contains(t, writer.docs, "drivers/d1700000000003")
	assert.Len(t, writer.docs, 4)
}

func TestMigrationService_IdempotentByKey(t *testing.T) {
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	seedFileStore(t, store)
	writer := newMemoryBatchWriter()
	logger, _ := newTestLogger()
	svc := NewMigrationService(store, writer, nil, logger)

	_, err = svc.Run(context.Background())
	require.NoError(t, err)
	once := make(map[string]database.Document, len(writer.docs))
	for k, v := range writer.docs {
		once[k] = v
	}

	_, err = svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, once, writer.docs)
}

func TestMigrationService_AtomicOnFailure(t *testing.T) {
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	seedFileStore(t, store)
	writer := newMemoryBatchWriter()
	writer.failAt = 2
	logger, _ := newTestLogger()

	_, err = NewMigrationService(store, writer, nil, logger).Run(context.Background())

	var migrationErr *MigrationError
	require.True(t, errors.As(err, &migrationErr))
	assert.Contains(t, err.Error(), "simulated write failure")
	assert.Empty(t, writer.docs)
}

func TestMigrationService_SkipsRecordsWithoutKey(t *testing.T) {
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Create(context.Background(), database.CollectionRoutes, "", database.Document{"nombre": "¿?"})
	require.NoError(t, err)
	_, err = store.Create(context.Background(), database.CollectionAlerts, "a1", database.Document{"titulo": "ok"})
	require.NoError(t, err)

	writer := newMemoryBatchWriter()
	logger, _ := newTestLogger()

	result, err := NewMigrationService(store, writer, nil, logger).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "0 routes, 1 alerts, 0 drivers migrated", result.Message)
}

func TestMigrationService_DuplicateRouteNames(t *testing.T) {
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	_, err = store.Create(ctx, database.CollectionRoutes, "grecia-centro-b891fdc3",
		database.Document{"nombre": "Grecia Centro", "tarifaCRC": 650.0})
	require.NoError(t, err)
	_, err = store.Create(ctx, database.CollectionRoutes, "grecia-centro",
		database.Document{"nombre": "Grecia Centro", "tarifaCRC": 500.0})
	require.NoError(t, err)

	writer := newMemoryBatchWriter()
	logger, hook := newTestLogger()

	result, err := NewMigrationService(store, writer, nil, logger).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Routes)
	assert.Equal(t, "2 routes, 0 alerts, 0 drivers migrated", result.Message)
	require.Len(t, writer.docs, 2)
	assert.Equal(t, 500.0, writer.docs["routes/grecia-centro"]["tarifaCRC"])
	assert.Equal(t, 650.0, writer.docs["routes/grecia-centro-b891fdc3"]["tarifaCRC"])
	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Migration key taken, keeping the record id" {
			warned = true
			assert.Equal(t, "grecia-centro-b891fdc3", entry.Data["id"])
		}
	}
	assert.True(t, warned)
}

type fixedLister map[database.Collection][]database.Document

func (l fixedLister) List(ctx context.Context, c database.Collection) ([]database.Document, error) {
	return l[c], nil
}

func TestMigrationService_UnresolvableKeyCollision(t *testing.T) {
	source := fixedLister{database.CollectionRoutes: {
		{"id": "sarchi-norte", "nombre": "Sarchí Norte"},
		{"id": "r-grecia", "nombre": "Grecia"},
		{"id": "grecia", "nombre": "Sarchi Norte"},
	}}
	writer := newMemoryBatchWriter()
	logger, _ := newTestLogger()

	_, err := NewMigrationService(source, writer, nil, logger).Run(context.Background())
	var migrationErr *MigrationError
	require.True(t, errors.As(err, &migrationErr))
	assert.Contains(t, err.Error(), `key "sarchi-norte" is used by more than one record`)
	assert.Zero(t, writer.calls)
}
