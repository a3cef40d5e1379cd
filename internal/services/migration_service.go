package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/metrics"
)

// NothingToMigrateMessage is returned when the file store holds no records
const NothingToMigrateMessage = "nothing to migrate"

// MigrationResult summarizes a migration run
type MigrationResult struct {
	Routes  int    `json:"routes"`
	Alerts  int    `json:"alerts"`
	Drivers int    `json:"drivers"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

// MigrationError reports a failed batch; nothing from the batch was persisted
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration failed: %v", e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// MigrationService copies every record from the file store into the
// document store in one atomic batch
type MigrationService struct {
	source database.RecordLister
	dest   database.BatchWriter
	cache  *ListingCache
	logger *logrus.Logger
}

// NewMigrationService creates a new migration service
func NewMigrationService(source database.RecordLister, dest database.BatchWriter, cache *ListingCache, logger *logrus.Logger) *MigrationService {
	return &MigrationService{source: source, dest: dest, cache: cache, logger: logger}
}

// Run performs the migration. Routes are keyed by the slug of their name,
// alerts and drivers by their existing id. Each document is written in full,
// so running twice over the same snapshot ends in the same state.
func (s *MigrationService) Run(ctx context.Context) (*MigrationResult, error) {
	snapshot := make(map[database.Collection][]database.Document, 3)
	total := 0
	for _, c := range database.Collections() {
		docs, err := s.source.List(ctx, c)
		if err != nil {
			metrics.MigrationRun("failure")
			return nil, err
		}
		snapshot[c] = docs
		total += len(docs)
	}

	if total == 0 {
		metrics.MigrationRun("noop")
		s.logger.Info("Migration skipped, file store is empty")
		return &MigrationResult{Message: NothingToMigrateMessage}, nil
	}

	result := &MigrationResult{}
	writes := make([]database.DocumentWrite, 0, total)
	for _, c := range database.Collections() {
		staged := make(map[string]bool, len(snapshot[c]))
		for _, doc := range keyOwnersFirst(c, snapshot[c]) {
			key := migrationKey(c, doc)
			if key == "" {
				result.Skipped++
				s.logger.WithField("collection", c).Warn("Skipping record without a usable key")
				continue
			}
			if staged[key] {
				// two routes share a slug, the later one keeps its own id
				key = doc.ID()
				if key == "" || staged[key] {
					metrics.MigrationRun("failure")
					return nil, &MigrationError{Err: fmt.Errorf("%s: key %q is used by more than one record", c, migrationKey(c, doc))}
				}
				s.logger.WithFields(logrus.Fields{
					"collection": c,
					"id":         key,
				}).Warn("Migration key taken, keeping the record id")
			}
			staged[key] = true

			data := doc.Clone()
			delete(data, database.FieldID)
			writes = append(writes, database.DocumentWrite{Collection: c, ID: key, Data: data})

			switch c {
			case database.CollectionRoutes:
				result.Routes++
			case database.CollectionAlerts:
				result.Alerts++
			case database.CollectionDrivers:
				result.Drivers++
			}
		}
	}

	if err := s.dest.SetBatch(ctx, writes); err != nil {
		metrics.MigrationRun("failure")
		s.logger.WithError(err).Error("Migration batch failed, nothing was written")
		return nil, &MigrationError{Err: err}
	}

	s.cache.Invalidate(database.Collections()...)
	metrics.MigrationRun("success")

	result.Message = fmt.Sprintf("%d routes, %d alerts, %d drivers migrated", result.Routes, result.Alerts, result.Drivers)
	s.logger.WithFields(logrus.Fields{
		"routes":  result.Routes,
		"alerts":  result.Alerts,
		"drivers": result.Drivers,
		"skipped": result.Skipped,
	}).Info("Migration completed")
	return result, nil
}

func migrationKey(c database.Collection, doc database.Document) string {
	if c == database.CollectionRoutes {
		if nombre, ok := doc["nombre"].(string); ok {
			if slug := Slugify(nombre); slug != "" {
				return slug
			}
		}
	}
	return doc.ID()
}

// keyOwnersFirst orders records whose id already equals their migration key
// ahead of the rest, so they keep that key on a collision
func keyOwnersFirst(c database.Collection, docs []database.Document) []database.Document {
	ordered := make([]database.Document, 0, len(docs))
	var rest []database.Document
	for _, doc := range docs {
		if key := migrationKey(c, doc); key != "" && key == doc.ID() {
			ordered = append(ordered, doc)
		} else {
			rest = append(rest, doc)
		}
	}
	return append(ordered, rest...)
}
