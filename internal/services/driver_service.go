package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/metrics"
	"github.com/asgtransit/website-api/internal/models"
	"github.com/asgtransit/website-api/internal/repository"
	"github.com/asgtransit/website-api/pkg/validator"
)

// DriverService handles driver business logic
type DriverService struct {
	repo      *repository.Repository[models.Driver]
	routes    *repository.Repository[models.Route]
	validator *validator.RecordValidator
	cache     *ListingCache
	logger    *logrus.Logger
}

// NewDriverService creates a new driver service
func NewDriverService(
	repo *repository.Repository[models.Driver],
	routes *repository.Repository[models.Route],
	recordValidator *validator.RecordValidator,
	cache *ListingCache,
	logger *logrus.Logger,
) *DriverService {
	return &DriverService{
		repo:      repo,
		routes:    routes,
		validator: recordValidator,
		cache:     cache,
		logger:    logger,
	}
}

// List returns every driver with the name of the assigned route
func (s *DriverService) List(ctx context.Context) ([]models.DriverWithRoute, error) {
	drivers, err := cachedList(ctx, s.cache, s.repo)
	if err != nil {
		return nil, err
	}
	routes, err := cachedList(ctx, s.cache, s.routes)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(routes))
	for _, route := range routes {
		names[route.ID] = route.Nombre
	}

	rows := make([]models.DriverWithRoute, 0, len(drivers))
	for _, driver := range drivers {
		row := models.DriverWithRoute{Driver: driver}
		if driver.RouteID != nil {
			row.RouteName = models.UnknownRouteName
			if name, ok := names[*driver.RouteID]; ok {
				row.RouteName = name
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Get returns one driver
func (s *DriverService) Get(ctx context.Context, id string) (*models.Driver, error) {
	return s.repo.Get(ctx, id)
}

// Upsert creates a driver when id is empty and merges into driver id otherwise.
// routeId is stored as given, never checked against the routes.
func (s *DriverService) Upsert(ctx context.Context, id string, in validator.Input) (*models.Driver, error) {
	mode := validator.ModeUpdate
	if id == "" {
		mode = validator.ModeCreate
	}

	input, err := s.validator.ParseDriver(in, mode)
	if err != nil {
		return nil, err
	}

	var driver *models.Driver
	if mode == validator.ModeCreate {
		doc := database.Document(input.Document())
		for _, field := range []string{"busPlate", "status", "comment"} {
			if _, ok := doc[field]; !ok {
				doc[field] = ""
			}
		}
		if _, ok := doc["routeId"]; !ok {
			doc["routeId"] = nil
		}
		driver, err = s.repo.Create(ctx, uuid.NewString(), doc)
	} else {
		driver, err = s.repo.Update(ctx, id, database.Document(input.Document()))
	}
	if err != nil {
		return nil, err
	}

	s.written(mode.Operation())
	return driver, nil
}

// Delete removes a driver
func (s *DriverService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.written("delete")
	return nil
}

func (s *DriverService) written(operation string) {
	s.cache.Invalidate(database.CollectionDrivers)
	metrics.RecordWrite(string(database.CollectionDrivers), operation)
}
