package repository

import (
	"context"
	"encoding/json"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/models"
)

// Decoder turns a stored document into a typed record
type Decoder[T any] func(doc database.Document) (T, error)

// Repository gives typed access to one collection of a RecordStore
type Repository[T any] struct {
	store      database.RecordStore
	collection database.Collection
	decode     Decoder[T]
}

// New creates a repository for a collection
func New[T any](store database.RecordStore, collection database.Collection, decode Decoder[T]) *Repository[T] {
	return &Repository[T]{store: store, collection: collection, decode: decode}
}

// Collection returns the collection this repository reads
func (r *Repository[T]) Collection() database.Collection {
	return r.collection
}

// List returns every record, newest first
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	docs, err := r.store.List(ctx, r.collection)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		record, err := r.decode(doc)
		if err != nil {
			return nil, &database.StorageError{Op: "decode", Collection: r.collection, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

// Get returns one record or database.ErrNotFound
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, err
	}
	return r.decodeOne(doc)
}

// Create stores a new record under id
func (r *Repository[T]) Create(ctx context.Context, id string, data database.Document) (*T, error) {
	doc, err := r.store.Create(ctx, r.collection, id, data)
	if err != nil {
		return nil, err
	}
	return r.decodeOne(doc)
}

// Update merges patch into an existing record
func (r *Repository[T]) Update(ctx context.Context, id string, patch database.Document) (*T, error) {
	doc, err := r.store.Update(ctx, r.collection, id, patch)
	if err != nil {
		return nil, err
	}
	return r.decodeOne(doc)
}

// Delete removes a record; missing ids are ignored
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

func (r *Repository[T]) decodeOne(doc database.Document) (*T, error) {
	record, err := r.decode(doc)
	if err != nil {
		return nil, &database.StorageError{Op: "decode", Collection: r.collection, Err: err}
	}
	return &record, nil
}

// overlay decodes doc on top of the defaults already set in dest. The
// lastUpdated stamp is read separately so a malformed stamp never fails
// the whole record.
func overlay(doc database.Document, dest any) error {
	fields := doc.Clone()
	delete(fields, database.FieldLastUpdated)

	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// DecodeRoute backfills activo and the placeholder images
func DecodeRoute(doc database.Document) (models.Route, error) {
	route := models.Route{Activo: true}
	if err := overlay(doc, &route); err != nil {
		return models.Route{}, err
	}
	if route.ImagenTarjetaURL == "" {
		route.ImagenTarjetaURL = models.PlaceholderCardImageURL
	}
	if route.ImagenHorarioURL == "" {
		route.ImagenHorarioURL = models.PlaceholderScheduleImageURL
	}
	route.LastUpdated = doc.LastUpdated()
	return route, nil
}

// DecodeAlert backfills severidad and activo
func DecodeAlert(doc database.Document) (models.Alert, error) {
	alert := models.Alert{Activo: true}
	if err := overlay(doc, &alert); err != nil {
		return models.Alert{}, err
	}
	if alert.Severidad == "" {
		alert.Severidad = models.SeverityInfo
	}
	alert.LastUpdated = doc.LastUpdated()
	return alert, nil
}

// DecodeDriver reads a driver as stored
func DecodeDriver(doc database.Document) (models.Driver, error) {
	var driver models.Driver
	if err := overlay(doc, &driver); err != nil {
		return models.Driver{}, err
	}
	driver.LastUpdated = doc.LastUpdated()
	return driver, nil
}

// NewRouteRepository returns the routes repository
func NewRouteRepository(store database.RecordStore) *Repository[models.Route] {
	return New(store, database.CollectionRoutes, DecodeRoute)
}

// NewAlertRepository returns the alerts repository
func NewAlertRepository(store database.RecordStore) *Repository[models.Alert] {
	return New(store, database.CollectionAlerts, DecodeAlert)
}

// NewDriverRepository returns the drivers repository
func NewDriverRepository(store database.RecordStore) *Repository[models.Driver] {
	return New(store, database.CollectionDrivers, DecodeDriver)
}
