package services

import (
	"errors"

	"github.com/asgtransit/website-api/pkg/validator"
)

// collectFieldErrors merges input validation failures with upload checks so
// the caller sees every bad field at once
func collectFieldErrors(parseErr error, files map[string]Upload, maxUploadBytes int64) error {
	errs := validator.FieldErrors{}

	var fieldErrs validator.FieldErrors
	if errors.As(parseErr, &fieldErrs) {
		errs.Merge(fieldErrs)
	} else if parseErr != nil {
		return parseErr
	}

	for field, upload := range files {
		if err := validator.ValidateUpload(field, upload.Data, maxUploadBytes); errors.As(err, &fieldErrs) {
			errs.Merge(fieldErrs)
		}
	}
	return errs.Err()
}
