package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

func TestAnalyticsRepositoryInterventionSamples(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	since := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "intervention_type", "learning_profile", "average_growth", "sample_size", "time_to_target", "effectiveness", "is_current", "recorded_at"}).
		AddRow("s-1", "Reading Support", "Dyslexia", 20.0, 5, 6.0, 0.8, true, since.AddDate(0, 1, 0))
	mock.ExpectQuery(regexp.QuoteMeta("AND intervention_type = ANY($1) AND is_current = TRUE AND recorded_at >= $2 ORDER BY")).
		WithArgs(pq.Array([]string{"Reading Support"}), since).
		WillReturnRows(rows)

	samples, err := repo.InterventionSamples(context.Background(), models.InterventionDataFilter{
		Interventions: []string{"Reading Support"},
		CurrentOnly:   true,
		Since:         &since,
	})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 0.8, samples[0].Effectiveness)
	assert.True(t, samples[0].IsCurrent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryStudentProgressIgnoresTimeBound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	since := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "intervention", "learning_profile", "start_date", "current_growth", "target_growth", "progress_rate", "data_points", "is_current"}).
		AddRow("st-1", "Ayu", "Reading Support", "Dyslexia", since, 12.5, 20.0, 1.5, `[{"date":"2024-03-01T00:00:00Z","value":4.5}]`, true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_progress WHERE 1=1 AND is_current = TRUE ORDER BY name ASC, id ASC")).
		WillReturnRows(rows)

	records, err := repo.StudentProgress(context.Background(), models.InterventionDataFilter{Since: &since, CurrentOnly: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].DataPoints, 1)
	assert.Equal(t, 4.5, records[0].DataPoints[0].Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryWrapsErrors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	boom := errors.New("connection refused")
	mock.ExpectQuery("FROM intervention_samples").WillReturnError(boom)

	_, err := repo.InterventionSamples(context.Background(), models.InterventionDataFilter{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "query intervention samples")
}
