package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/pkg/validator"
)

func TestUploadService_Save(t *testing.T) {
	logger, _ := newTestLogger()
	blobs := &memoryBlobs{}
	svc := NewUploadService(blobs, 1024, logger)

	url, err := svc.Save(context.Background(), "", &Upload{Filename: "mapa.png", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/general/1-mapa.png", url)
	require.Len(t, blobs.saved, 1)
	assert.Equal(t, FolderGeneral, blobs.saved[0].folder)
}

func TestUploadService_Rejects(t *testing.T) {
	logger, _ := newTestLogger()
	blobs := &memoryBlobs{}
	svc := NewUploadService(blobs, 1024, logger)

	_, err := svc.Save(context.Background(), "secret", nil)
	var fieldErrs validator.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "folder")
	assert.Contains(t, fieldErrs, FieldFile)

	_, err = svc.Save(context.Background(), FolderCards, &Upload{Filename: "notes.txt", Data: []byte("hello")})
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, FieldFile)
	assert.Empty(t, blobs.saved)
}

func TestUploadService_StorageFailure(t *testing.T) {
	logger, _ := newTestLogger()
	svc := NewUploadService(&memoryBlobs{err: errors.New("disk full")}, 1024, logger)

	_, err := svc.Save(context.Background(), FolderCards, &Upload{Filename: "a.png", Data: pngBytes})
	var storageErr *database.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "upload", storageErr.Op)
}
