package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Storage persists uploaded files and returns the URL they are served from
type Storage interface {
	Save(ctx context.Context, subdir, suggestedName string, data []byte) (string, error)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeName replaces every character outside [A-Za-z0-9._-] with '_'
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// LocalStorage writes uploads below a directory served statically under
// urlPrefix
type LocalStorage struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStorage creates the upload root if needed
func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{
		root:      root,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// Root returns the directory files are written to
func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes data to <root>/<subdir>/<unixmillis>-<sanitized name>
func (s *LocalStorage) Save(ctx context.Context, subdir, suggestedName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	subdir = SanitizeName(subdir)
	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), SanitizeName(suggestedName))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path.Join(s.urlPrefix, subdir, name), nil
}
