package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/intervention-insights-api/internal/insights"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	InterventionSamples(ctx context.Context, filter models.InterventionDataFilter) ([]models.InterventionSample, error)
	StudentProgress(ctx context.Context, filter models.InterventionDataFilter) ([]models.StudentProgressRecord, error)
}

type analyticsSettingsReader interface {
	Get(ctx context.Context) (models.AnalyticsSettings, error)
}

// AnalyticsOptions adjusts one analytics request.
type AnalyticsOptions struct {
	// Demo serves the demonstration dataset when the store is unavailable.
	Demo bool
	// TimeRange overrides the stored time range.
	TimeRange *models.TimeRange
	// GroupBy overrides the stored grouping.
	GroupBy *models.GroupBy
	// Comparison forces the matrix even when the stored settings disable it.
	Comparison bool
}

// Dataset is the raw analytics data for the current settings.
type Dataset struct {
	Samples  []models.InterventionSample    `json:"analyticsData"`
	Progress []models.StudentProgressRecord `json:"studentProgress"`
	Demo     bool                           `json:"-"`
	Cached   bool                           `json:"-"`
}

// AnalyticsView is the pipeline result together with the settings that shaped it.
type AnalyticsView struct {
	insights.PipelineResult
	Settings models.AnalyticsSettings `json:"settings"`
	Demo     bool                     `json:"-"`
	Cached   bool                     `json:"-"`
}

// AnalyticsService loads intervention data and runs the insights pipeline with cache integration.
type AnalyticsService struct {
	repo     AnalyticsRepository
	settings analyticsSettingsReader
	pipeline *insights.Pipeline
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	profiles []string
	now      func() time.Time
}

// NewAnalyticsService constructs an analytics service. profiles lists learning
// profiles that always appear in the comparison matrix.
func NewAnalyticsService(repo AnalyticsRepository, settings analyticsSettingsReader, pipeline *insights.Pipeline, cache *CacheService, metrics *MetricsService, logger *zap.Logger, profiles []string) *AnalyticsService {
	if pipeline == nil {
		pipeline = insights.NewPipeline(nil, nil, insights.MatrixOptions{Duplicates: insights.DuplicateAverage})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repo:     repo,
		settings: settings,
		pipeline: pipeline,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		profiles: profiles,
		now:      time.Now,
	}
}

// Data returns the samples and progress records selected by the current settings.
func (s *AnalyticsService) Data(ctx context.Context, opts AnalyticsOptions) (*Dataset, error) {
	settings, err := s.effectiveSettings(ctx, opts)
	if err != nil {
		return nil, err
	}
	now := s.now()
	data, err := s.load(ctx, settings, now, opts.Demo)
	if err != nil {
		return nil, err
	}
	var since *time.Time
	if start, bounded := insights.RangeStart(settings.TimeRange, now); bounded {
		since = &start
	}
	return &Dataset{
		Samples:  insights.ScopeSamples(data.Samples, settings, since),
		Progress: insights.ScopeProgress(data.Progress, settings, since),
		Demo:     data.Demo,
		Cached:   data.Cached,
	}, nil
}

// Overview runs the full pipeline for the current settings.
func (s *AnalyticsService) Overview(ctx context.Context, opts AnalyticsOptions) (*AnalyticsView, error) {
	settings, err := s.effectiveSettings(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.Comparison {
		settings.ComparisonEnabled = true
	}

	now := s.now()
	data, err := s.load(ctx, settings, now, opts.Demo)
	if err != nil {
		return nil, err
	}

	profiles := s.profiles
	if data.Demo {
		profiles = insights.SortedUnion(profiles, insights.DemoProfiles)
	}

	start := time.Now()
	result, err := s.pipeline.Run(insights.PipelineInput{
		Settings: settings,
		Samples:  data.Samples,
		Progress: data.Progress,
		Profiles: profiles,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObservePipeline(settings.GroupBy, len(result.Significant), time.Since(start))

	return &AnalyticsView{PipelineResult: result, Settings: settings, Demo: data.Demo, Cached: data.Cached}, nil
}

// Matrix returns the comparison matrix regardless of the comparison toggle.
func (s *AnalyticsService) Matrix(ctx context.Context, opts AnalyticsOptions) (*insights.Matrix, *AnalyticsView, error) {
	opts.Comparison = true
	view, err := s.Overview(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return view.Matrix, view, nil
}

// Top returns the most effective interventions, best first.
func (s *AnalyticsService) Top(ctx context.Context, opts AnalyticsOptions, limit int) ([]insights.InterventionSummary, *Dataset, error) {
	if limit <= 0 {
		limit = insights.DefaultTopLimit
	}
	data, err := s.Data(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	summaries := s.pipeline.Aggregator().ByIntervention(data.Samples)
	return insights.TopInterventions(summaries, limit), data, nil
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.AnalyticsSystemMetrics {
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) effectiveSettings(ctx context.Context, opts AnalyticsOptions) (models.AnalyticsSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.AnalyticsSettings{}, err
	}
	if !settings.Enabled {
		return models.AnalyticsSettings{}, appErrors.Clone(appErrors.ErrForbidden, "intervention analytics are disabled")
	}
	if opts.TimeRange != nil {
		settings.TimeRange = *opts.TimeRange
	}
	if opts.GroupBy != nil {
		settings.GroupBy = *opts.GroupBy
	}
	return settings, nil
}

// load fetches the superset of data for the settings, through the cache. The
// pipeline applies the exact window afterwards.
func (s *AnalyticsService) load(ctx context.Context, settings models.AnalyticsSettings, now time.Time, demo bool) (*Dataset, error) {
	filter := models.InterventionDataFilter{CurrentOnly: settings.DataSource == models.DataSourceCurrent}
	if settings.DataSource == models.DataSourceSelected {
		filter.Interventions = settings.SelectedInterventions
	}
	sinceKey := ""
	if start, bounded := insights.RangeStart(settings.TimeRange, now); bounded {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		filter.Since = &day
		sinceKey = day.Format("2006-01-02")
	}

	cacheKey := makeCacheKey(cacheDatasetScope, string(settings.DataSource), sinceKey, strings.Join(filter.Interventions, ","))
	var cached Dataset
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		cached.Cached = true
		return &cached, nil
	}

	data := &Dataset{}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		start := time.Now()
		samples, err := s.repo.InterventionSamples(groupCtx, filter)
		if err != nil {
			return err
		}
		s.metrics.ObserveDBQuery("intervention_samples", time.Since(start))
		data.Samples = samples
		return nil
	})
	group.Go(func() error {
		start := time.Now()
		progress, err := s.repo.StudentProgress(groupCtx, filter)
		if err != nil {
			return err
		}
		s.metrics.ObserveDBQuery("student_progress", time.Since(start))
		data.Progress = progress
		return nil
	})
	if err := group.Wait(); err != nil {
		if demo {
			s.logger.Warn("serving demonstration dataset", zap.Error(err))
			samples, progress := insights.DemoDataset(now)
			return &Dataset{Samples: samples, Progress: progress, Demo: true}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, "intervention data unavailable")
	}
	if data.Samples == nil {
		data.Samples = []models.InterventionSample{}
	}
	if data.Progress == nil {
		data.Progress = []models.StudentProgressRecord{}
	}

	_ = s.cache.Set(ctx, cacheKey, data, 0)
	return data, nil
}
