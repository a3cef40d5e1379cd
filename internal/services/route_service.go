package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/metrics"
	"github.com/asgtransit/website-api/internal/models"
	"github.com/asgtransit/website-api/internal/repository"
	"github.com/asgtransit/website-api/pkg/blob"
	"github.com/asgtransit/website-api/pkg/validator"
)

// Image fields of a route form and the upload folders they go to
const (
	FieldCardImage     = "imagenTarjetaUrl"
	FieldScheduleImage = "imagenHorarioUrl"

	FolderCards     = "cards"
	FolderSchedules = "schedules"
)

// Upload is a file received with a form
type Upload struct {
	Filename string
	Data     []byte
}

// RouteFilter narrows a route listing
type RouteFilter struct {
	Category   string
	ActiveOnly bool
	Search     string
}

// RouteService handles route business logic
type RouteService struct {
	repo           *repository.Repository[models.Route]
	validator      *validator.RecordValidator
	blobs          blob.Storage
	cache          *ListingCache
	maxUploadBytes int64
	logger         *logrus.Logger
}

// NewRouteService creates a new route service
func NewRouteService(
	repo *repository.Repository[models.Route],
	recordValidator *validator.RecordValidator,
	blobs blob.Storage,
	cache *ListingCache,
	maxUploadBytes int64,
	logger *logrus.Logger,
) *RouteService {
	return &RouteService{
		repo:           repo,
		validator:      recordValidator,
		blobs:          blobs,
		cache:          cache,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// List returns routes matching filter, newest first
func (s *RouteService) List(ctx context.Context, filter RouteFilter) ([]models.Route, error) {
	routes, err := cachedList(ctx, s.cache, s.repo)
	if err != nil {
		return nil, err
	}

	category := strings.ToLower(strings.TrimSpace(filter.Category))
	search := Fold(strings.TrimSpace(filter.Search))

	filtered := make([]models.Route, 0, len(routes))
	for _, route := range routes {
		if category != "" && route.Category != category {
			continue
		}
		if filter.ActiveOnly && !route.Activo {
			continue
		}
		if search != "" && !strings.Contains(Fold(route.Nombre), search) &&
			!strings.Contains(Fold(route.Especificacion), search) {
			continue
		}
		filtered = append(filtered, route)
	}
	return filtered, nil
}

// Grouped returns the active routes split by category, as the home page shows them
func (s *RouteService) Grouped(ctx context.Context) (*models.GroupedRoutes, error) {
	routes, err := s.List(ctx, RouteFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	grouped := &models.GroupedRoutes{Grecia: []models.Route{}, Sarchi: []models.Route{}}
	for _, route := range routes {
		switch route.Category {
		case models.CategoryGrecia:
			grouped.Grecia = append(grouped.Grecia, route)
		case models.CategorySarchi:
			grouped.Sarchi = append(grouped.Sarchi, route)
		}
	}
	return grouped, nil
}

// Get returns one route
func (s *RouteService) Get(ctx context.Context, id string) (*models.Route, error) {
	return s.repo.Get(ctx, id)
}

// Upsert creates a route when id is empty and merges into route id otherwise.
// Everything is validated before any file or record is written.
func (s *RouteService) Upsert(ctx context.Context, id string, in validator.Input, files map[string]Upload) (*models.Route, error) {
	mode := validator.ModeUpdate
	if id == "" {
		mode = validator.ModeCreate
	}

	input, err := s.validator.ParseRoute(in, mode)
	if err := collectFieldErrors(err, files, s.maxUploadBytes); err != nil {
		return nil, err
	}

	if mode == validator.ModeUpdate {
		if _, err := s.repo.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := s.storeImages(ctx, &input, files); err != nil {
		return nil, err
	}

	if mode == validator.ModeCreate {
		return s.create(ctx, input)
	}

	route, err := s.repo.Update(ctx, id, database.Document(input.Document()))
	if err != nil {
		return nil, err
	}
	s.written("update")
	return route, nil
}

func (s *RouteService) storeImages(ctx context.Context, input *validator.RouteInput, files map[string]Upload) error {
	targets := []struct {
		field  string
		folder string
		dest   **string
	}{
		{FieldCardImage, FolderCards, &input.ImagenTarjetaURL},
		{FieldScheduleImage, FolderSchedules, &input.ImagenHorarioURL},
	}

	for _, target := range targets {
		upload, ok := files[target.field]
		if !ok {
			continue
		}
		url, err := s.blobs.Save(ctx, target.folder, upload.Filename, upload.Data)
		if err != nil {
			return &database.StorageError{Op: "upload", Err: err}
		}
		metrics.UploadAccepted(target.folder, len(upload.Data))
		*target.dest = &url
	}
	return nil
}

func (s *RouteService) create(ctx context.Context, input validator.RouteInput) (*models.Route, error) {
	doc := database.Document(input.Document())
	if _, ok := doc["especificacion"]; !ok {
		doc["especificacion"] = ""
	}
	if _, ok := doc["activo"]; !ok {
		doc["activo"] = true
	}
	if _, ok := doc[FieldCardImage]; !ok {
		doc[FieldCardImage] = models.PlaceholderCardImageURL
	}
	if _, ok := doc[FieldScheduleImage]; !ok {
		doc[FieldScheduleImage] = models.PlaceholderScheduleImageURL
	}

	slug := Slugify(*input.Nombre)
	id := slug
	if id == "" {
		id = uuid.NewString()
	}

	route, err := s.repo.Create(ctx, id, doc)
	if errors.Is(err, database.ErrAlreadyExists) && slug != "" {
		id = slug + "-" + uuid.NewString()[:8]
		s.logger.WithFields(logrus.Fields{
			"slug": slug,
			"id":   id,
		}).Info("Route slug taken, using suffixed id")
		route, err = s.repo.Create(ctx, id, doc)
	}
	if err != nil {
		return nil, err
	}

	s.written("create")
	return route, nil
}

// Delete removes a route. Drivers pointing at it keep the dangling id.
func (s *RouteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.written("delete")
	return nil
}

func (s *RouteService) written(operation string) {
	s.cache.Invalidate(database.CollectionRoutes)
	metrics.RecordWrite(string(database.CollectionRoutes), operation)
}
