package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// AnalyticsRepository exposes read-only queries feeding the intervention analytics pipeline.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// InterventionSamples returns measured intervention outcomes matching the filter.
func (r *AnalyticsRepository) InterventionSamples(ctx context.Context, filter models.InterventionDataFilter) ([]models.InterventionSample, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT id, intervention_type, learning_profile, average_growth, sample_size, time_to_target,
        effectiveness, is_current, recorded_at
        FROM intervention_samples WHERE 1=1`)
	args := applyInterventionFilter(&builder, filter, "intervention_type", "recorded_at")
	builder.WriteString(" ORDER BY intervention_type ASC, learning_profile ASC, recorded_at ASC")

	var samples []models.InterventionSample
	if err := r.db.SelectContext(ctx, &samples, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query intervention samples: %w", err)
	}
	return samples, nil
}

// StudentProgress returns per-student progress records matching the filter. Records
// are not bounded by time: a student who started before the window still has data
// points inside it, and the pipeline trims those.
func (r *AnalyticsRepository) StudentProgress(ctx context.Context, filter models.InterventionDataFilter) ([]models.StudentProgressRecord, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT id, name, intervention, learning_profile, start_date, current_growth, target_growth,
        progress_rate, data_points, is_current
        FROM student_progress WHERE 1=1`)
	args := applyInterventionFilter(&builder, filter, "intervention", "")
	builder.WriteString(" ORDER BY name ASC, id ASC")

	var records []models.StudentProgressRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query student progress: %w", err)
	}
	return records, nil
}

func applyInterventionFilter(builder *strings.Builder, filter models.InterventionDataFilter, interventionColumn, timeColumn string) []interface{} {
	var args []interface{}
	if len(filter.Interventions) > 0 {
		args = append(args, pq.Array(filter.Interventions))
		builder.WriteString(fmt.Sprintf(" AND %s = ANY($%d)", interventionColumn, len(args)))
	}
	if filter.CurrentOnly {
		builder.WriteString(" AND is_current = TRUE")
	}
	if filter.Since != nil && timeColumn != "" {
		args = append(args, *filter.Since)
		builder.WriteString(fmt.Sprintf(" AND %s >= $%d", timeColumn, len(args)))
	}
	return args
}
