package insights

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// DefaultTopLimit caps the "top performing" list.
const DefaultTopLimit = 5

// PipelineInput is everything one analytics run needs; it is fetched before Run.
type PipelineInput struct {
	Settings models.AnalyticsSettings
	Samples  []models.InterventionSample
	Progress []models.StudentProgressRecord
	// Profiles declares learning profiles that must appear in the matrix even
	// without samples. Profiles present in the data are always included.
	Profiles []string
	Now      time.Time
}

// StudentSummary condenses one student's progress record.
type StudentSummary struct {
	StudentID       string   `json:"studentId"`
	Name            string   `json:"name"`
	Intervention    string   `json:"intervention"`
	LearningProfile string   `json:"learningProfile"`
	CurrentGrowth   float64  `json:"currentGrowth"`
	TargetGrowth    float64  `json:"targetGrowth"`
	PercentOfTarget int      `json:"percentOfTarget"`
	ProgressRate    float64  `json:"progressRate"`
	LatestValue     *float64 `json:"latestValue"`
	DataPoints      int      `json:"dataPoints"`
}

// PipelineResult is the analytics view handed to the presentation layer.
type PipelineResult struct {
	GroupBy          models.GroupBy              `json:"groupBy"`
	WindowStart      *time.Time                  `json:"windowStart,omitempty"`
	SampleCount      int                         `json:"sampleCount"`
	ByIntervention   []InterventionSummary       `json:"byIntervention,omitempty"`
	ByProfile        []ProfileSummary            `json:"byProfile,omitempty"`
	ByStudent        []StudentSummary            `json:"byStudent,omitempty"`
	Samples          []models.InterventionSample `json:"samples,omitempty"`
	TopPerforming    []InterventionSummary       `json:"topPerforming"`
	Matrix           *Matrix                     `json:"matrix,omitempty"`
	Significant      []SignificantSample         `json:"significant"`
	SignificanceTest string                      `json:"significanceTest"`
	Threshold        float64                     `json:"threshold"`
}

// Pipeline runs window filtering, aggregation, the matrix and the significance filter.
type Pipeline struct {
	aggregator *Aggregator
	test       SignificanceTest
	matrix     MatrixOptions
}

// NewPipeline wires the pipeline stages. Nil arguments select defaults.
func NewPipeline(aggregator *Aggregator, test SignificanceTest, matrix MatrixOptions) *Pipeline {
	if aggregator == nil {
		aggregator = NewAggregator(DefaultConcurrency)
	}
	if test == nil {
		test = ProportionZTest{}
	}
	return &Pipeline{aggregator: aggregator, test: test, matrix: matrix}
}

// Aggregator exposes the aggregation stage.
func (p *Pipeline) Aggregator() *Aggregator { return p.aggregator }

// Run computes the analytics view. It fails only on an invalid significance threshold.
func (p *Pipeline) Run(in PipelineInput) (PipelineResult, error) {
	settings := in.Settings
	estimator, err := NewSignificanceEstimator(settings.SignificanceThreshold, p.test)
	if err != nil {
		return PipelineResult{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	var since *time.Time
	if start, bounded := RangeStart(settings.TimeRange, now); bounded {
		since = &start
	}

	samples := ScopeSamples(in.Samples, settings, since)
	progress := ScopeProgress(in.Progress, settings, since)

	byIntervention := p.aggregator.ByIntervention(samples)
	result := PipelineResult{
		GroupBy:          settings.GroupBy,
		WindowStart:      since,
		SampleCount:      len(samples),
		TopPerforming:    TopInterventions(byIntervention, DefaultTopLimit),
		SignificanceTest: estimator.TestName(),
		Threshold:        estimator.Alpha(),
	}

	switch settings.GroupBy {
	case models.GroupByLearningProfile:
		result.ByProfile = p.aggregator.ByProfile(samples)
	case models.GroupByStudent:
		result.ByStudent = SummarizeStudents(progress)
	case models.GroupByNone:
		result.Samples = samples
	default:
		result.ByIntervention = byIntervention
	}

	if settings.ComparisonEnabled {
		interventions, profiles := UniverseFromSamples(samples)
		if settings.DataSource == models.DataSourceSelected {
			interventions = settings.SelectedInterventions
		}
		matrix := BuildMatrix(samples, interventions, SortedUnion(in.Profiles, profiles), p.matrix)
		result.Matrix = &matrix
	}

	result.Significant = estimator.Filter(samples, Cohort{Samples: samples, Progress: progress})
	return result, nil
}

// ScopeSamples applies the data source and time range of the settings. Samples
// without a recorded timestamp are never excluded by the time range.
func ScopeSamples(samples []models.InterventionSample, settings models.AnalyticsSettings, since *time.Time) []models.InterventionSample {
	selected := selectedSet(settings)
	out := make([]models.InterventionSample, 0, len(samples))
	for _, s := range samples {
		if !inDataSource(settings.DataSource, selected, s.InterventionType, s.IsCurrent) {
			continue
		}
		if since != nil && !s.RecordedAt.IsZero() && s.RecordedAt.Before(*since) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ScopeProgress applies the data source to progress records and trims their data
// points to the time range. Records whose points all fall outside the range are dropped.
func ScopeProgress(records []models.StudentProgressRecord, settings models.AnalyticsSettings, since *time.Time) []models.StudentProgressRecord {
	selected := selectedSet(settings)
	out := make([]models.StudentProgressRecord, 0, len(records))
	for _, r := range records {
		if !inDataSource(settings.DataSource, selected, r.Intervention, r.IsCurrent) {
			continue
		}
		if since != nil && len(r.DataPoints) > 0 {
			kept := make(models.ProgressPoints, 0, len(r.DataPoints))
			for _, pt := range r.DataPoints {
				if !pt.Date.Before(*since) {
					kept = append(kept, pt)
				}
			}
			if len(kept) == 0 {
				continue
			}
			r.DataPoints = kept
		}
		out = append(out, r)
	}
	return out
}

// SummarizeStudents condenses progress records, ordered by name then id.
func SummarizeStudents(records []models.StudentProgressRecord) []StudentSummary {
	out := make([]StudentSummary, 0, len(records))
	for _, r := range records {
		summary := StudentSummary{
			StudentID:       r.ID,
			Name:            r.Name,
			Intervention:    r.Intervention,
			LearningProfile: r.LearningProfile,
			CurrentGrowth:   r.CurrentGrowth,
			TargetGrowth:    r.TargetGrowth,
			PercentOfTarget: percentOfTarget(r.CurrentGrowth, r.TargetGrowth),
			ProgressRate:    r.ProgressRate,
			DataPoints:      len(r.DataPoints),
		}
		if latest, ok := latestPoint(r.DataPoints); ok {
			value := latest.Value
			summary.LatestValue = &value
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

func percentOfTarget(current, target float64) int {
	if target <= 0 || math.IsNaN(current) || current <= 0 {
		return 0
	}
	pct := math.Round(current / target * 100)
	if pct > 100 {
		return 100
	}
	return int(pct)
}

func latestPoint(points models.ProgressPoints) (models.ProgressPoint, bool) {
	if len(points) == 0 {
		return models.ProgressPoint{}, false
	}
	latest := points[0]
	for _, pt := range points[1:] {
		if pt.Date.After(latest.Date) {
			latest = pt
		}
	}
	return latest, true
}

func selectedSet(settings models.AnalyticsSettings) map[string]struct{} {
	if settings.DataSource != models.DataSourceSelected {
		return nil
	}
	set := make(map[string]struct{}, len(settings.SelectedInterventions))
	for _, name := range settings.SelectedInterventions {
		set[name] = struct{}{}
	}
	return set
}

func inDataSource(source models.DataSource, selected map[string]struct{}, intervention string, current bool) bool {
	switch source {
	case models.DataSourceCurrent:
		return current
	case models.DataSourceSelected:
		_, ok := selected[intervention]
		return ok
	default:
		return true
	}
}
