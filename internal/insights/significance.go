package insights

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

// Cohort is the population a sample is tested against.
type Cohort struct {
	Samples  []models.InterventionSample
	Progress []models.StudentProgressRecord
}

// SignificanceTest estimates a two-sided p-value for one sample. The boolean is false
// when the test cannot be computed (for example, an empty comparison group).
type SignificanceTest interface {
	Name() string
	PValue(target models.InterventionSample, cohort Cohort) (float64, bool)
}

// SignificantSample is a sample that passed the significance filter.
type SignificantSample struct {
	models.InterventionSample
	PValue     float64 `json:"pValue"`
	Confidence float64 `json:"confidence"`
}

// SignificanceEstimator retains samples whose p-value is below alpha.
type SignificanceEstimator struct {
	alpha float64
	test  SignificanceTest
}

// NewSignificanceEstimator validates alpha and builds an estimator. A nil test
// selects ProportionZTest against the pooled cohort.
func NewSignificanceEstimator(alpha float64, test SignificanceTest) (*SignificanceEstimator, error) {
	if err := ValidateThreshold(alpha); err != nil {
		return nil, err
	}
	if test == nil {
		test = ProportionZTest{}
	}
	return &SignificanceEstimator{alpha: alpha, test: test}, nil
}

// ValidateThreshold rejects alpha values outside the accepted range.
func ValidateThreshold(alpha float64) error {
	if math.IsNaN(alpha) || alpha < models.MinSignificanceThreshold || alpha > models.MaxSignificanceThreshold {
		return appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("significanceThreshold must be between %.2f and %.2f", models.MinSignificanceThreshold, models.MaxSignificanceThreshold))
	}
	return nil
}

// Alpha returns the configured threshold.
func (e *SignificanceEstimator) Alpha() float64 { return e.alpha }

// TestName returns the name of the underlying test.
func (e *SignificanceEstimator) TestName() string { return e.test.Name() }

// Filter annotates every sample with a p-value and keeps those strictly below alpha,
// ranked by ascending p-value.
func (e *SignificanceEstimator) Filter(samples []models.InterventionSample, cohort Cohort) []SignificantSample {
	out := make([]SignificantSample, 0, len(samples))
	for _, s := range samples {
		p, ok := e.test.PValue(s, cohort)
		if !ok || math.IsNaN(p) || p >= e.alpha {
			continue
		}
		p = math.Max(0, p)
		out = append(out, SignificantSample{InterventionSample: s, PValue: p, Confidence: 1 - p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PValue != b.PValue {
			return a.PValue < b.PValue
		}
		if a.Effectiveness != b.Effectiveness {
			return a.Effectiveness > b.Effectiveness
		}
		if a.InterventionType != b.InterventionType {
			return a.InterventionType < b.InterventionType
		}
		return a.LearningProfile < b.LearningProfile
	})
	return out
}

// ProportionZTest compares a sample's effectiveness, treated as a success rate over
// SampleSize students, against a baseline rate with a two-sample z-test. The baseline
// is ControlRate/ControlSize when both are set, otherwise the size-weighted rate of
// every other sample in the cohort.
type ProportionZTest struct {
	ControlRate float64
	ControlSize int
}

// Name implements SignificanceTest.
func (ProportionZTest) Name() string { return "proportion_z" }

// PValue implements SignificanceTest.
func (t ProportionZTest) PValue(target models.InterventionSample, cohort Cohort) (float64, bool) {
	n1 := float64(target.SampleSize)
	if n1 <= 0 {
		return 0, false
	}
	p1 := ClampUnit(target.Effectiveness)

	p0, n0 := ClampUnit(t.ControlRate), float64(t.ControlSize)
	if t.ControlSize <= 0 {
		p0, n0 = pooledRate(target, cohort.Samples)
	}
	if n0 <= 0 {
		return 0, false
	}

	pooled := (p1*n1 + p0*n0) / (n1 + n0)
	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n0))
	if se == 0 {
		if p1 == p0 {
			return 1, true
		}
		return 0, true
	}
	z := (p1 - p0) / se
	return 2 * distuv.UnitNormal.CDF(-math.Abs(z)), true
}

// pooledRate returns the size-weighted effectiveness and total size of every cohort
// sample other than target.
func pooledRate(target models.InterventionSample, samples []models.InterventionSample) (float64, float64) {
	skipped := false
	var successes, total float64
	for _, s := range samples {
		if !skipped && sameSample(s, target) {
			skipped = true
			continue
		}
		if s.SampleSize <= 0 {
			continue
		}
		n := float64(s.SampleSize)
		successes += ClampUnit(s.Effectiveness) * n
		total += n
	}
	if total == 0 {
		return 0, 0
	}
	return successes / total, total
}

func sameSample(a, b models.InterventionSample) bool {
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.InterventionType == b.InterventionType &&
		a.LearningProfile == b.LearningProfile &&
		a.SampleSize == b.SampleSize &&
		a.Effectiveness == b.Effectiveness &&
		a.AverageGrowth == b.AverageGrowth &&
		a.TimeToTarget == b.TimeToTarget
}

// GrowthWelchTest compares per-student growth of the sample's (intervention, profile)
// cohort with a control population using Welch's t-test. Control students are those
// whose intervention is listed in ControlInterventions; when the list is empty every
// other student serves as control.
type GrowthWelchTest struct {
	ControlInterventions []string
}

// Name implements SignificanceTest.
func (GrowthWelchTest) Name() string { return "growth_welch" }

// PValue implements SignificanceTest.
func (t GrowthWelchTest) PValue(target models.InterventionSample, cohort Cohort) (float64, bool) {
	control := make(map[string]struct{}, len(t.ControlInterventions))
	for _, name := range t.ControlInterventions {
		control[name] = struct{}{}
	}

	var treated, baseline []float64
	for _, r := range cohort.Progress {
		inGroup := r.Intervention == target.InterventionType && r.LearningProfile == target.LearningProfile
		switch {
		case inGroup:
			treated = append(treated, r.CurrentGrowth)
		case len(control) == 0:
			if r.Intervention != target.InterventionType {
				baseline = append(baseline, r.CurrentGrowth)
			}
		default:
			if _, ok := control[r.Intervention]; ok {
				baseline = append(baseline, r.CurrentGrowth)
			}
		}
	}
	return welchPValue(treated, baseline)
}

func welchPValue(x, y []float64) (float64, bool) {
	if len(x) < 2 || len(y) < 2 {
		return 0, false
	}
	mx, vx := meanVariance(x)
	my, vy := meanVariance(y)
	nx, ny := float64(len(x)), float64(len(y))
	sx, sy := vx/nx, vy/ny
	se := math.Sqrt(sx + sy)
	if se == 0 {
		if mx == my {
			return 1, true
		}
		return 0, true
	}
	tStat := (mx - my) / se
	df := (sx + sy) * (sx + sy) / (sx*sx/(nx-1) + sy*sy/(ny-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(tStat)), true
}

// meanVariance returns the mean and unbiased sample variance.
func meanVariance(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, ss / float64(len(values)-1)
}
