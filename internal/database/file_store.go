package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps each collection as a JSON array in <dir>/<collection>.json.
// A mutex serializes read-modify-write cycles inside the process and every
// write replaces the file through a synced temp file and rename.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("init", "", err)
	}
	return &FileStore{dir: dir}, nil
}

// OpenFileStore opens an existing data directory. Unlike NewFileStore it
// never creates one, so a mistyped path fails instead of reading as empty.
func OpenFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

// read loads a collection; a missing or empty file is an empty collection
func (s *FileStore) read(c Collection) ([]Document, error) {
	raw, err := os.ReadFile(s.path(c))
	if errors.Is(err, fs.ErrNotExist) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, storageErr("read", c, err)
	}
	if len(raw) == 0 {
		return []Document{}, nil
	}

	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, storageErr("decode", c, err)
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

func (s *FileStore) write(c Collection, docs []Document) error {
	raw, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return storageErr("encode", c, err)
	}

	tmp, err := os.CreateTemp(s.dir, string(c)+".*.tmp")
	if err != nil {
		return storageErr("write", c, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return storageErr("write", c, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return storageErr("sync", c, err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr("write", c, err)
	}
	if err := os.Rename(tmpName, s.path(c)); err != nil {
		return storageErr("rename", c, err)
	}
	return nil
}

func indexOf(docs []Document, id string) int {
	for i, d := range docs {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

// List returns all records of a collection, newest first
func (s *FileStore) List(ctx context.Context, c Collection) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(c)
	if err != nil {
		return nil, err
	}
	SortDocuments(docs)
	return docs, nil
}

// Get returns one record
func (s *FileStore) Get(ctx context.Context, c Collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(c)
	if err != nil {
		return nil, err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return docs[i], nil
}

// Create appends a new record
func (s *FileStore) Create(ctx context.Context, c Collection, id string, data Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(c)
	if err != nil {
		return nil, err
	}
	if indexOf(docs, id) >= 0 {
		return nil, ErrAlreadyExists
	}

	doc := data.Clone()
	doc[FieldID] = id
	stamp(doc)
	docs = append(docs, doc)

	if err := s.write(c, docs); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update merges patch over the stored record
func (s *FileStore) Update(ctx context.Context, c Collection, id string, patch Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(c)
	if err != nil {
		return nil, err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return nil, ErrNotFound
	}

	doc := docs[i].Clone()
	for k, v := range patch.withoutID() {
		doc[k] = v
	}
	stamp(doc)
	docs[i] = doc

	if err := s.write(c, docs); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a record if present
func (s *FileStore) Delete(ctx context.Context, c Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(c)
	if err != nil {
		return err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return nil
	}
	docs = append(docs[:i], docs[i+1:]...)
	return s.write(c, docs)
}

// Ping checks the data directory is reachable
func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return storageErr("ping", "", err)
	}
	if !info.IsDir() {
		return storageErr("ping", "", fmt.Errorf("%s is not a directory", s.dir))
	}
	return nil
}

// Close is a no-op for the file backend
func (s *FileStore) Close() error {
	return nil
}
