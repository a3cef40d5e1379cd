package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Collection names a group of records of one kind
type Collection string

// Collections stored by the site
const (
	CollectionRoutes  Collection = "routes"
	CollectionAlerts  Collection = "alerts"
	CollectionDrivers Collection = "drivers"
)

// Collections returns every known collection in migration order
func Collections() []Collection {
	return []Collection{CollectionRoutes, CollectionAlerts, CollectionDrivers}
}

// Field names managed by the store itself
const (
	FieldID          = "id"
	FieldLastUpdated = "lastUpdated"
)

// Document is one stored record as a flat field map
type Document map[string]any

// ID returns the document id, empty when absent
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// LastUpdated parses the lastUpdated stamp; zero time when absent or malformed
func (d Document) LastUpdated() time.Time {
	raw, _ := d[FieldLastUpdated].(string)
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Clone returns a shallow copy
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// withoutID returns a copy with the id field removed
func (d Document) withoutID() Document {
	out := d.Clone()
	delete(out, FieldID)
	return out
}

var (
	// ErrNotFound is returned when a record id does not exist in a collection
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned by Create when the id is taken
	ErrAlreadyExists = errors.New("record already exists")
)

// StorageError reports a failure of the underlying file or database
type StorageError struct {
	Op         string
	Collection Collection
	Err        error
}

func (e *StorageError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, c Collection, err error) error {
	return &StorageError{Op: op, Collection: c, Err: err}
}

// RecordLister reads whole collections
type RecordLister interface {
	List(ctx context.Context, c Collection) ([]Document, error)
}

// RecordStore is the persistence contract every backend implements.
// Every write stamps lastUpdated; List is ordered by lastUpdated descending
// then id ascending.
type RecordStore interface {
	RecordLister
	Get(ctx context.Context, c Collection, id string) (Document, error)
	// Create inserts a new record and fails with ErrAlreadyExists when id is taken
	Create(ctx context.Context, c Collection, id string, data Document) (Document, error)
	// Update merges patch into an existing record, ErrNotFound when absent
	Update(ctx context.Context, c Collection, id string, patch Document) (Document, error)
	// Delete removes a record; deleting a missing id is not an error
	Delete(ctx context.Context, c Collection, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// DocumentWrite is one full-document set inside a batch
type DocumentWrite struct {
	Collection Collection
	ID         string
	Data       Document
}

// BatchWriter applies a group of full-document sets all-or-nothing
type BatchWriter interface {
	SetBatch(ctx context.Context, writes []DocumentWrite) error
}

// nowStamp is swapped in tests
var nowStamp = func() time.Time {
	return time.Now().UTC()
}

func stamp(d Document) time.Time {
	ts := nowStamp()
	d[FieldLastUpdated] = ts.Format(time.RFC3339Nano)
	return ts
}

// SortDocuments orders newest first, ties broken by id
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		ti, tj := docs[i].LastUpdated(), docs[j].LastUpdated()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return docs[i].ID() < docs[j].ID()
	})
}
