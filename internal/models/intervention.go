package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// InterventionSample is one measured outcome of an intervention for a learning profile.
type InterventionSample struct {
	ID               string    `db:"id" json:"id,omitempty"`
	InterventionType string    `db:"intervention_type" json:"interventionType"`
	LearningProfile  string    `db:"learning_profile" json:"learningProfile"`
	AverageGrowth    float64   `db:"average_growth" json:"averageGrowth"`
	SampleSize       int       `db:"sample_size" json:"sampleSize"`
	TimeToTarget     float64   `db:"time_to_target" json:"timeToTarget"`
	Effectiveness    float64   `db:"effectiveness" json:"effectiveness"`
	IsCurrent        bool      `db:"is_current" json:"isCurrent"`
	RecordedAt       time.Time `db:"recorded_at" json:"recordedAt"`
}

// ProgressPoint is a dated measurement on a student's progress series.
type ProgressPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ProgressPoints is persisted as a JSON array.
type ProgressPoints []ProgressPoint

// Value marshals points to JSON for persistence.
func (p ProgressPoints) Value() (driver.Value, error) {
	if p == nil {
		p = ProgressPoints{}
	}
	data, err := json.Marshal([]ProgressPoint(p))
	if err != nil {
		return nil, fmt.Errorf("marshal progress points: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the points slice.
func (p *ProgressPoints) Scan(value interface{}) error {
	if value == nil {
		*p = ProgressPoints{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ProgressPoints", value)
	}
	if len(data) == 0 {
		*p = ProgressPoints{}
		return nil
	}
	var points []ProgressPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return fmt.Errorf("unmarshal progress points: %w", err)
	}
	*p = points
	return nil
}

// StudentProgressRecord tracks one student's growth under an intervention.
type StudentProgressRecord struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Intervention    string         `db:"intervention" json:"intervention"`
	LearningProfile string         `db:"learning_profile" json:"learningProfile"`
	StartDate       time.Time      `db:"start_date" json:"startDate"`
	CurrentGrowth   float64        `db:"current_growth" json:"currentGrowth"`
	TargetGrowth    float64        `db:"target_growth" json:"targetGrowth"`
	ProgressRate    float64        `db:"progress_rate" json:"progressRate"`
	DataPoints      ProgressPoints `db:"data_points" json:"dataPoints"`
	IsCurrent       bool           `db:"is_current" json:"isCurrent"`
}

// InterventionDataFilter scopes sample and progress record queries.
type InterventionDataFilter struct {
	Interventions []string
	CurrentOnly   bool
	Since         *time.Time
}
