package validator

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// AllowedImageTypes are the upload formats the site can display
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
}

// ValidateUpload checks an uploaded image's size and sniffed content type.
// Failures are reported under field.
func ValidateUpload(field string, data []byte, maxBytes int64) error {
	errs := FieldErrors{}

	if len(data) == 0 {
		errs.Add(field, "file is empty")
		return errs
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		errs.Add(field, fmt.Sprintf("file exceeds the %d byte limit", maxBytes))
		return errs
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), AllowedImageTypes...) {
		errs.Add(field, fmt.Sprintf("unsupported file type %s", detected.String()))
	}
	return errs.Err()
}
