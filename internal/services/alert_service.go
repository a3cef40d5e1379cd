package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/metrics"
	"github.com/asgtransit/website-api/internal/models"
	"github.com/asgtransit/website-api/internal/repository"
	"github.com/asgtransit/website-api/pkg/validator"
)

// AlertService handles service alert business logic
type AlertService struct {
	repo      *repository.Repository[models.Alert]
	validator *validator.RecordValidator
	cache     *ListingCache
	logger    *logrus.Logger
	now       func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(
	repo *repository.Repository[models.Alert],
	recordValidator *validator.RecordValidator,
	cache *ListingCache,
	logger *logrus.Logger,
) *AlertService {
	return &AlertService{
		repo:      repo,
		validator: recordValidator,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns every alert, newest first
func (s *AlertService) List(ctx context.Context) ([]models.Alert, error) {
	return cachedList(ctx, s.cache, s.repo)
}

// Active returns the alerts whose window contains the current time
func (s *AlertService) Active(ctx context.Context) ([]models.Alert, error) {
	alerts, err := cachedList(ctx, s.cache, s.repo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]models.Alert, 0, len(alerts))
	for i := range alerts {
		if alerts[i].IsActiveAt(now) {
			active = append(active, alerts[i])
		}
	}
	return active, nil
}

// Get returns one alert
func (s *AlertService) Get(ctx context.Context, id string) (*models.Alert, error) {
	return s.repo.Get(ctx, id)
}

// Upsert creates an alert when id is empty and merges into alert id otherwise
func (s *AlertService) Upsert(ctx context.Context, id string, in validator.Input) (*models.Alert, error) {
	mode := validator.ModeUpdate
	if id == "" {
		mode = validator.ModeCreate
	}

	input, err := s.validator.ParseAlert(in, mode)
	if err != nil {
		return nil, err
	}

	var alert *models.Alert
	if mode == validator.ModeCreate {
		doc := database.Document(input.Document())
		if _, ok := doc["mensaje"]; !ok {
			doc["mensaje"] = ""
		}
		if _, ok := doc["severidad"]; !ok {
			doc["severidad"] = models.SeverityInfo
		}
		if _, ok := doc["activo"]; !ok {
			doc["activo"] = true
		}
		alert, err = s.repo.Create(ctx, uuid.NewString(), doc)
	} else {
		alert, err = s.repo.Update(ctx, id, database.Document(input.Document()))
	}
	if err != nil {
		return nil, err
	}

	if alert.HasInvertedWindow() {
		s.logger.WithFields(logrus.Fields{
			"alert_id":    alert.ID,
			"inicia_iso":  alert.IniciaISO,
			"termina_iso": alert.TerminaISO,
		}).Warn("Alert window ends before it starts, it will never be active")
	}

	s.written(mode.Operation())
	return alert, nil
}

// Delete removes an alert
func (s *AlertService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.written("delete")
	return nil
}

func (s *AlertService) written(operation string) {
	s.cache.Invalidate(database.CollectionAlerts)
	metrics.RecordWrite(string(database.CollectionAlerts), operation)
}
