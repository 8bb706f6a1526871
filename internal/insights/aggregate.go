package insights

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// DefaultConcurrency bounds the number of groups reduced in parallel.
const DefaultConcurrency = 4

// InterventionSummary aggregates every sample of one intervention type.
type InterventionSummary struct {
	InterventionType string  `json:"interventionType"`
	Effectiveness    float64 `json:"effectiveness"`
	AverageGrowth    float64 `json:"averageGrowth"`
	TimeToTarget     int     `json:"timeToTarget"`
	SampleSize       int     `json:"sampleSize"`
	Samples          int     `json:"samples"`
}

// ProfileSummary aggregates every sample of one learning profile.
type ProfileSummary struct {
	LearningProfile string  `json:"learningProfile"`
	Effectiveness   float64 `json:"effectiveness"`
	SampleSize      int     `json:"sampleSize"`
	Samples         int     `json:"samples"`
}

// Aggregator groups intervention samples and reduces each group independently.
type Aggregator struct {
	concurrency int
}

// NewAggregator builds an aggregator reducing at most concurrency groups at once.
func NewAggregator(concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Aggregator{concurrency: concurrency}
}

// ByIntervention groups samples by intervention type. Results are sorted by type.
func (a *Aggregator) ByIntervention(samples []models.InterventionSample) []InterventionSummary {
	groups := groupSamples(samples, func(s models.InterventionSample) string { return s.InterventionType })
	keys := sortedKeys(groups)
	out := make([]InterventionSummary, len(keys))
	a.each(len(keys), func(i int) {
		out[i] = summarizeIntervention(keys[i], groups[keys[i]])
	})
	return out
}

// ByProfile groups samples by learning profile. Results are sorted by profile.
func (a *Aggregator) ByProfile(samples []models.InterventionSample) []ProfileSummary {
	groups := groupSamples(samples, func(s models.InterventionSample) string { return s.LearningProfile })
	keys := sortedKeys(groups)
	out := make([]ProfileSummary, len(keys))
	a.each(len(keys), func(i int) {
		group := groups[keys[i]]
		out[i] = ProfileSummary{
			LearningProfile: keys[i],
			Effectiveness:   meanEffectiveness(group),
			SampleSize:      totalSampleSize(group),
			Samples:         len(group),
		}
	})
	return out
}

func (a *Aggregator) each(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	if a == nil || a.concurrency <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func summarizeIntervention(key string, group []models.InterventionSample) InterventionSummary {
	growth := decimal.Zero
	weeks := decimal.Zero
	for _, s := range group {
		growth = growth.Add(decimal.NewFromFloat(nonNegative(s.AverageGrowth)))
		weeks = weeks.Add(decimal.NewFromFloat(nonNegative(s.TimeToTarget)))
	}
	n := decimal.NewFromInt(int64(len(group)))
	avgGrowth, _ := growth.Div(n).Round(1).Float64()
	return InterventionSummary{
		InterventionType: key,
		Effectiveness:    meanEffectiveness(group),
		AverageGrowth:    avgGrowth,
		TimeToTarget:     int(weeks.Div(n).Round(0).IntPart()),
		SampleSize:       totalSampleSize(group),
		Samples:          len(group),
	}
}

// meanEffectiveness is the unweighted arithmetic mean of clamped effectiveness values.
func meanEffectiveness(group []models.InterventionSample) float64 {
	values := make([]float64, len(group))
	for i, s := range group {
		values[i] = s.Effectiveness
	}
	return meanUnit(values)
}

// meanUnit averages values after clamping each one to [0,1]. The sum is exact, so the
// result does not depend on the order of values.
func meanUnit(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(ClampUnit(v)))
	}
	mean, _ := sum.Div(decimal.NewFromInt(int64(len(values)))).Float64()
	return ClampUnit(mean)
}

func totalSampleSize(group []models.InterventionSample) int {
	total := 0
	for _, s := range group {
		if s.SampleSize > 0 {
			total += s.SampleSize
		}
	}
	return total
}

// ClampUnit clamps v to [0,1]; NaN maps to 0.
func ClampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func groupSamples(samples []models.InterventionSample, key func(models.InterventionSample) string) map[string][]models.InterventionSample {
	groups := make(map[string][]models.InterventionSample)
	for _, s := range samples {
		k := key(s)
		groups[k] = append(groups[k], s)
	}
	return groups
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortByEffectiveness orders summaries for "top performing" views: descending
// effectiveness, then descending sample size, then name.
func SortByEffectiveness(summaries []InterventionSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.Effectiveness != b.Effectiveness {
			return a.Effectiveness > b.Effectiveness
		}
		if a.SampleSize != b.SampleSize {
			return a.SampleSize > b.SampleSize
		}
		return a.InterventionType < b.InterventionType
	})
}

// TopInterventions returns at most limit summaries ranked by SortByEffectiveness.
// The input slice is not modified.
func TopInterventions(summaries []InterventionSummary, limit int) []InterventionSummary {
	ranked := make([]InterventionSummary, len(summaries))
	copy(ranked, summaries)
	SortByEffectiveness(ranked)
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
