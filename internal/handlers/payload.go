package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/asgtransit/website-api/internal/services"
	"github.com/asgtransit/website-api/pkg/validator"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readPayload accepts a JSON object or a multipart form. For a form, the
// first value of each field becomes the input and the named file fields
// are read, skipping parts sent without content.
func readPayload(c *gin.Context, maxBytes int64, fileFields ...string) (validator.Input, map[string]services.Upload, error) {
	files := map[string]services.Upload{}

	if !isMultipart(c) {
		raw := map[string]any{}
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return validator.Input(raw), files, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	in := validator.Input{}
	for key, values := range form.Value {
		if len(values) > 0 {
			in[key] = values[0]
		}
	}

	for _, field := range fileFields {
		headers := form.File[field]
		if len(headers) == 0 || headers[0].Size == 0 {
			continue
		}
		upload, err := readUpload(headers[0], maxBytes)
		if err != nil {
			return nil, nil, err
		}
		files[field] = *upload
		// a file wins over a URL sent under the same name
		delete(in, field)
	}
	return in, files, nil
}

// readUpload reads at most one byte past maxBytes so the size check can
// still reject an oversized file
func readUpload(header *multipart.FileHeader, maxBytes int64) (*services.Upload, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	return &services.Upload{Filename: header.Filename, Data: data}, nil
}
