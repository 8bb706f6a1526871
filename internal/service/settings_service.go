package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/insights"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

type settingsRepository interface {
	Load(ctx context.Context) (*models.AnalyticsSettings, bool, error)
	Save(ctx context.Context, settings models.AnalyticsSettings, updatedBy string) error
}

// SettingsService reads and updates the analytics settings document.
type SettingsService struct {
	repo      settingsRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(repo settingsRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the stored settings, or the defaults when none are stored.
func (s *SettingsService) Get(ctx context.Context) (models.AnalyticsSettings, error) {
	key := makeCacheKey(cacheSettingsScope, "current")
	var cached models.AnalyticsSettings
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	stored, found, err := s.repo.Load(ctx)
	if err != nil {
		return models.AnalyticsSettings{}, appErrors.Wrap(err, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, "analytics settings unavailable")
	}
	settings := models.DefaultAnalyticsSettings()
	if found {
		settings = normalizeSettings(*stored)
	}
	_ = s.cache.Set(ctx, key, settings, 0)
	return settings, nil
}

// Update merges the patch into the current settings, validates and persists them.
// Invalid values are rejected, never clamped.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateAnalyticsSettingsRequest, actorID string) (models.AnalyticsSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.AnalyticsSettings{}, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, "invalid analytics settings")
	}
	current, err := s.Get(ctx)
	if err != nil {
		return models.AnalyticsSettings{}, err
	}

	next := applySettingsPatch(current, req)
	if err := s.Validate(next); err != nil {
		return models.AnalyticsSettings{}, err
	}
	if err := s.repo.Save(ctx, next, actorID); err != nil {
		return models.AnalyticsSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save analytics settings")
	}

	_ = s.cache.Set(ctx, makeCacheKey(cacheSettingsScope, "current"), next, 0)
	_ = s.cache.Invalidate(ctx, analyticsCachePrefix+"*")
	s.logger.Info("analytics settings updated",
		zap.String("actor", actorID),
		zap.String("data_source", string(next.DataSource)),
		zap.String("group_by", string(next.GroupBy)),
		zap.Float64("threshold", next.SignificanceThreshold),
	)
	return next, nil
}

// Validate checks a complete settings document.
func (s *SettingsService) Validate(settings models.AnalyticsSettings) error {
	if err := insights.ValidateThreshold(settings.SignificanceThreshold); err != nil {
		return err
	}
	if err := s.validator.Struct(settings); err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, "invalid analytics settings")
	}
	if settings.DataSource == models.DataSourceSelected && len(settings.SelectedInterventions) == 0 {
		return appErrors.Clone(appErrors.ErrConfig, "dataSource selected requires at least one selected intervention")
	}
	return nil
}

func applySettingsPatch(current models.AnalyticsSettings, req dto.UpdateAnalyticsSettingsRequest) models.AnalyticsSettings {
	next := current
	if req.Enabled != nil {
		next.Enabled = *req.Enabled
	}
	if req.DataSource != nil {
		next.DataSource = *req.DataSource
	}
	if req.TimeRange != nil {
		next.TimeRange = *req.TimeRange
	}
	if req.GroupBy != nil {
		next.GroupBy = *req.GroupBy
	}
	if req.ComparisonEnabled != nil {
		next.ComparisonEnabled = *req.ComparisonEnabled
	}
	if req.SignificanceThreshold != nil {
		next.SignificanceThreshold = *req.SignificanceThreshold
	}
	if req.AutomaticReports != nil {
		next.AutomaticReports = *req.AutomaticReports
	}
	if req.SelectedInterventions != nil {
		next.SelectedInterventions = dedupeTrimmed(req.SelectedInterventions)
	}
	return next
}

// normalizeSettings fills fields missing from an older stored document.
func normalizeSettings(stored models.AnalyticsSettings) models.AnalyticsSettings {
	defaults := models.DefaultAnalyticsSettings()
	if stored.DataSource == "" {
		stored.DataSource = defaults.DataSource
	}
	if stored.TimeRange == "" {
		stored.TimeRange = defaults.TimeRange
	}
	if stored.GroupBy == "" {
		stored.GroupBy = defaults.GroupBy
	}
	if stored.SignificanceThreshold == 0 {
		stored.SignificanceThreshold = defaults.SignificanceThreshold
	}
	if stored.SelectedInterventions == nil {
		stored.SelectedInterventions = []string{}
	}
	return stored
}

func dedupeTrimmed(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
