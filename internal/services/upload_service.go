package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/metrics"
	"github.com/asgtransit/website-api/pkg/blob"
	"github.com/asgtransit/website-api/pkg/validator"
)

// FolderGeneral receives uploads that are not tied to a route image
const FolderGeneral = "general"

// FieldFile is the multipart field of a standalone upload
const FieldFile = "file"

// UploadService stores standalone attachments
type UploadService struct {
	blobs          blob.Storage
	maxUploadBytes int64
	logger         *logrus.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(blobs blob.Storage, maxUploadBytes int64, logger *logrus.Logger) *UploadService {
	return &UploadService{blobs: blobs, maxUploadBytes: maxUploadBytes, logger: logger}
}

// UploadFolders lists the folders an upload may target
func UploadFolders() []string {
	return []string{FolderGeneral, FolderCards, FolderSchedules}
}

// Save checks the file and stores it under folder, returning its public URL
func (s *UploadService) Save(ctx context.Context, folder string, upload *Upload) (string, error) {
	if folder == "" {
		folder = FolderGeneral
	}

	errs := validator.FieldErrors{}
	known := false
	for _, f := range UploadFolders() {
		if f == folder {
			known = true
		}
	}
	if !known {
		errs.Add("folder", "must be one of: general, cards, schedules")
	}

	if upload == nil {
		errs.Add(FieldFile, "is required")
	} else {
		var fieldErrs validator.FieldErrors
		if err := validator.ValidateUpload(FieldFile, upload.Data, s.maxUploadBytes); errors.As(err, &fieldErrs) {
			errs.Merge(fieldErrs)
		}
	}
	if err := errs.Err(); err != nil {
		return "", err
	}

	url, err := s.blobs.Save(ctx, folder, upload.Filename, upload.Data)
	if err != nil {
		return "", &database.StorageError{Op: "upload", Err: err}
	}
	metrics.UploadAccepted(folder, len(upload.Data))

	s.logger.WithFields(logrus.Fields{
		"folder": folder,
		"url":    url,
		"bytes":  len(upload.Data),
	}).Info("Attachment uploaded")
	return url, nil
}
