package insights

import (
	"encoding/json"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// Cell is one comparison-matrix value. A cell without contributing samples is not
// Valid and marshals to JSON null, so "no data" never reads as zero effectiveness.
type Cell struct {
	Value float64
	Valid bool
}

// NoData is the empty cell.
var NoData = Cell{}

// CellOf wraps an effectiveness value.
func CellOf(v float64) Cell {
	return Cell{Value: ClampUnit(v), Valid: true}
}

// MarshalJSON encodes the cell as a number or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON decodes a number or null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = NoData
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = CellOf(v)
	return nil
}

// DuplicatePolicy decides how repeated (intervention, profile) samples fill a cell.
type DuplicatePolicy int

const (
	// DuplicateLastWrite keeps the effectiveness of the last sample seen.
	DuplicateLastWrite DuplicatePolicy = iota
	// DuplicateAverage keeps the mean effectiveness of all samples for the cell.
	DuplicateAverage
)

// MatrixOptions tunes BuildMatrix.
type MatrixOptions struct {
	Duplicates DuplicatePolicy
}

// Matrix is a complete intervention x learning-profile grid.
type Matrix struct {
	Interventions []string `json:"interventions"`
	Profiles      []string `json:"profiles"`
	Cells         [][]Cell `json:"cells"`
}

// BuildMatrix projects samples onto the declared universes. Samples whose keys are
// outside either universe are ignored. Duplicate universe entries are collapsed.
func BuildMatrix(samples []models.InterventionSample, interventions, profiles []string, opts MatrixOptions) Matrix {
	interventions = distinct(interventions)
	profiles = distinct(profiles)
	rowIdx := indexOf(interventions)
	colIdx := indexOf(profiles)

	cells := make([][]Cell, len(interventions))
	for i := range cells {
		cells[i] = make([]Cell, len(profiles))
	}

	contributions := make(map[[2]int][]float64)
	for _, s := range samples {
		r, ok := rowIdx[s.InterventionType]
		if !ok {
			continue
		}
		c, ok := colIdx[s.LearningProfile]
		if !ok {
			continue
		}
		if opts.Duplicates == DuplicateAverage {
			key := [2]int{r, c}
			contributions[key] = append(contributions[key], s.Effectiveness)
			continue
		}
		cells[r][c] = CellOf(s.Effectiveness)
	}
	for key, values := range contributions {
		cells[key[0]][key[1]] = CellOf(meanUnit(values))
	}

	return Matrix{Interventions: interventions, Profiles: profiles, Cells: cells}
}

// Lookup returns the cell value and whether data exists for it. Keys outside the
// universe report no data.
func (m Matrix) Lookup(intervention, profile string) (float64, bool) {
	cell := m.Cell(intervention, profile)
	return cell.Value, cell.Valid
}

// Cell returns the cell for the pair, or NoData when the pair is not declared.
func (m Matrix) Cell(intervention, profile string) Cell {
	for i, name := range m.Interventions {
		if name != intervention {
			continue
		}
		for j, p := range m.Profiles {
			if p == profile {
				return m.Cells[i][j]
			}
		}
	}
	return NoData
}

// Coverage returns the share of cells holding data.
func (m Matrix) Coverage() float64 {
	total := len(m.Interventions) * len(m.Profiles)
	if total == 0 {
		return 0
	}
	filled := 0
	for _, row := range m.Cells {
		for _, cell := range row {
			if cell.Valid {
				filled++
			}
		}
	}
	return float64(filled) / float64(total)
}

// UniverseFromSamples returns the sorted, distinct intervention types and learning
// profiles present in samples.
func UniverseFromSamples(samples []models.InterventionSample) (interventions, profiles []string) {
	iset := make(map[string]struct{})
	pset := make(map[string]struct{})
	for _, s := range samples {
		iset[s.InterventionType] = struct{}{}
		pset[s.LearningProfile] = struct{}{}
	}
	return sortedKeys(iset), sortedKeys(pset)
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}

// SortedUnion merges string sets into one sorted, distinct slice.
func SortedUnion(sets ...[]string) []string {
	merged := make(map[string]struct{})
	for _, set := range sets {
		for _, v := range set {
			merged[v] = struct{}{}
		}
	}
	return sortedKeys(merged)
}
