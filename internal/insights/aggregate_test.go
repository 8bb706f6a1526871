package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

func TestAggregatorByInterventionScenario(t *testing.T) {
	samples := []models.InterventionSample{
		{InterventionType: "Reading Support", LearningProfile: "Dyslexia", Effectiveness: 0.8, AverageGrowth: 20, SampleSize: 5, TimeToTarget: 6},
		{InterventionType: "Reading Support", LearningProfile: "ADHD", Effectiveness: 0.6, AverageGrowth: 10, SampleSize: 3, TimeToTarget: 9},
	}

	result := NewAggregator(2).ByIntervention(samples)
	require.Len(t, result, 1)
	assert.Equal(t, InterventionSummary{
		InterventionType: "Reading Support",
		Effectiveness:    0.7,
		AverageGrowth:    15.0,
		TimeToTarget:     8,
		SampleSize:       8,
		Samples:          2,
	}, result[0])
}

func TestAggregatorSingleSampleMean(t *testing.T) {
	samples := []models.InterventionSample{
		{InterventionType: "Math", LearningProfile: "ADHD", Effectiveness: 0.37, AverageGrowth: 12.34, SampleSize: 4, TimeToTarget: 5},
	}

	result := NewAggregator(1).ByIntervention(samples)
	require.Len(t, result, 1)
	assert.Equal(t, 0.37, result[0].Effectiveness)
	assert.Equal(t, 12.3, result[0].AverageGrowth)
	assert.Equal(t, 4, result[0].SampleSize)

	profiles := NewAggregator(1).ByProfile(samples)
	require.Len(t, profiles, 1)
	assert.Equal(t, 0.37, profiles[0].Effectiveness)
}

func TestAggregatorOrderIndependent(t *testing.T) {
	a := models.InterventionSample{InterventionType: "X", LearningProfile: "P1", Effectiveness: 0.1, AverageGrowth: 1.15, SampleSize: 3, TimeToTarget: 2.5}
	b := models.InterventionSample{InterventionType: "X", LearningProfile: "P2", Effectiveness: 0.2, AverageGrowth: 2.05, SampleSize: 4, TimeToTarget: 3}
	c := models.InterventionSample{InterventionType: "X", LearningProfile: "P1", Effectiveness: 0.3, AverageGrowth: 7.3, SampleSize: 1, TimeToTarget: 4}

	agg := NewAggregator(4)
	want := agg.ByIntervention([]models.InterventionSample{a, b, c})
	wantProfiles := agg.ByProfile([]models.InterventionSample{a, b, c})
	for _, perm := range [][]models.InterventionSample{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	} {
		assert.Equal(t, want, agg.ByIntervention(perm))
		assert.Equal(t, wantProfiles, agg.ByProfile(perm))
	}
	assert.Equal(t, 0.2, want[0].Effectiveness)
}

func TestAggregatorClampsAndGuards(t *testing.T) {
	samples := []models.InterventionSample{
		{InterventionType: "X", Effectiveness: 1.4, AverageGrowth: -5, SampleSize: -3, TimeToTarget: -1},
		{InterventionType: "X", Effectiveness: -0.2, AverageGrowth: 4, SampleSize: 2, TimeToTarget: 2},
	}

	result := NewAggregator(1).ByIntervention(samples)
	require.Len(t, result, 1)
	assert.Equal(t, 0.5, result[0].Effectiveness)
	assert.Equal(t, 2.0, result[0].AverageGrowth)
	assert.Equal(t, 2, result[0].SampleSize)
	assert.Equal(t, 1, result[0].TimeToTarget)
}

func TestAggregatorEmptyInput(t *testing.T) {
	agg := NewAggregator(0)

	byIntervention := agg.ByIntervention(nil)
	assert.NotNil(t, byIntervention)
	assert.Empty(t, byIntervention)

	byProfile := agg.ByProfile([]models.InterventionSample{})
	assert.NotNil(t, byProfile)
	assert.Empty(t, byProfile)
}

func TestAggregatorParallelMatchesSerial(t *testing.T) {
	var samples []models.InterventionSample
	for i := 0; i < 40; i++ {
		samples = append(samples, models.InterventionSample{
			InterventionType: fmt.Sprintf("I%02d", i%13),
			LearningProfile:  fmt.Sprintf("P%d", i%4),
			Effectiveness:    float64(i%10) / 10,
			AverageGrowth:    float64(i),
			SampleSize:       i,
			TimeToTarget:     float64(i % 7),
		})
	}

	assert.Equal(t, NewAggregator(1).ByIntervention(samples), NewAggregator(8).ByIntervention(samples))
	assert.Equal(t, NewAggregator(1).ByProfile(samples), NewAggregator(8).ByProfile(samples))
}

func TestTopInterventions(t *testing.T) {
	summaries := []InterventionSummary{
		{InterventionType: "A", Effectiveness: 0.5, SampleSize: 10},
		{InterventionType: "B", Effectiveness: 0.9, SampleSize: 3},
		{InterventionType: "C", Effectiveness: 0.5, SampleSize: 20},
		{InterventionType: "D", Effectiveness: 0.1, SampleSize: 50},
	}

	top := TopInterventions(summaries, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{top[0].InterventionType, top[1].InterventionType, top[2].InterventionType})
	assert.Equal(t, "A", summaries[0].InterventionType, "input must stay untouched")
}
