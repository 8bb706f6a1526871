package insights

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

func matrixSamples() []models.InterventionSample {
	return []models.InterventionSample{
		{InterventionType: "A", LearningProfile: "X", Effectiveness: 0.8},
		{InterventionType: "A", LearningProfile: "Y", Effectiveness: 0.5},
		{InterventionType: "B", LearningProfile: "X", Effectiveness: 0.6},
	}
}

func TestBuildMatrixMissingCell(t *testing.T) {
	m := BuildMatrix(matrixSamples(), []string{"A", "B"}, []string{"X", "Y"}, MatrixOptions{})

	require.Len(t, m.Cells, 2)
	for _, row := range m.Cells {
		require.Len(t, row, 2)
	}

	v, ok := m.Lookup("A", "X")
	assert.True(t, ok)
	assert.Equal(t, 0.8, v)

	v, ok = m.Lookup("B", "X")
	assert.True(t, ok)
	assert.Equal(t, 0.6, v)

	_, ok = m.Lookup("B", "Y")
	assert.False(t, ok)
	assert.Equal(t, 0.75, m.Coverage())
}

func TestBuildMatrixJSONUsesNull(t *testing.T) {
	m := BuildMatrix(matrixSamples(), []string{"A", "B"}, []string{"X", "Y"}, MatrixOptions{})

	payload, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"interventions":["A","B"],"profiles":["X","Y"],"cells":[[0.8,0.5],[0.6,null]]}`, string(payload))

	var decoded Matrix
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, m, decoded)
}

func TestBuildMatrixZeroIsData(t *testing.T) {
	samples := []models.InterventionSample{{InterventionType: "A", LearningProfile: "X", Effectiveness: 0}}
	m := BuildMatrix(samples, []string{"A"}, []string{"X", "Y"}, MatrixOptions{})

	assert.Equal(t, CellOf(0), m.Cell("A", "X"))
	assert.Equal(t, NoData, m.Cell("A", "Y"))
	assert.NotEqual(t, m.Cell("A", "X"), m.Cell("A", "Y"))
}

func TestBuildMatrixDuplicatePolicies(t *testing.T) {
	samples := []models.InterventionSample{
		{InterventionType: "A", LearningProfile: "X", Effectiveness: 0.2},
		{InterventionType: "A", LearningProfile: "X", Effectiveness: 0.6},
	}

	last := BuildMatrix(samples, []string{"A"}, []string{"X"}, MatrixOptions{Duplicates: DuplicateLastWrite})
	v, _ := last.Lookup("A", "X")
	assert.Equal(t, 0.6, v)

	avg := BuildMatrix(samples, []string{"A"}, []string{"X"}, MatrixOptions{Duplicates: DuplicateAverage})
	v, _ = avg.Lookup("A", "X")
	assert.Equal(t, 0.4, v)
}

func TestBuildMatrixIgnoresOutsideUniverse(t *testing.T) {
	samples := append(matrixSamples(), models.InterventionSample{InterventionType: "C", LearningProfile: "X", Effectiveness: 0.9})
	m := BuildMatrix(samples, []string{"A", "B", "A"}, []string{"X"}, MatrixOptions{})

	assert.Equal(t, []string{"A", "B"}, m.Interventions)
	_, ok := m.Lookup("C", "X")
	assert.False(t, ok)
}

func TestBuildMatrixEmptyUniverse(t *testing.T) {
	m := BuildMatrix(matrixSamples(), nil, nil, MatrixOptions{})
	assert.Empty(t, m.Cells)
	assert.Equal(t, 0.0, m.Coverage())
}

func TestUniverseFromSamples(t *testing.T) {
	interventions, profiles := UniverseFromSamples([]models.InterventionSample{
		{InterventionType: "B", LearningProfile: "Y"},
		{InterventionType: "A", LearningProfile: "X"},
		{InterventionType: "B", LearningProfile: "X"},
	})
	assert.Equal(t, []string{"A", "B"}, interventions)
	assert.Equal(t, []string{"X", "Y"}, profiles)

	assert.Equal(t, []string{"a", "b", "c"}, SortedUnion([]string{"c", "a"}, []string{"b", "a"}))
}
