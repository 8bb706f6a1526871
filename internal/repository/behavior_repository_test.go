package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func strPtr(value string) *string {
	return &value
}

func TestBehaviorRepositoryCreateDefinition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectExec("INSERT INTO behavior_definitions").
		WithArgs(sqlmock.AnyArg(), "acct-1", "Hand raising", "positive", "frequency", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	def := &models.BehaviorDefinition{
		AccountID:      "acct-1",
		Name:           "Hand raising",
		Category:       models.BehaviorCategoryPositive,
		TrackingMethod: models.TrackingFrequency,
		PointValue:     2,
	}
	require.NoError(t, repo.CreateDefinition(context.Background(), def))
	assert.NotEmpty(t, def.ID)
	assert.False(t, def.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryListDefinitionsFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	rows := sqlmock.NewRows([]string{"id", "account_id", "name", "category", "tracking_method", "point_value", "created_at"}).
		AddRow("b-1", "acct-1", "Hand raising", "positive", "frequency", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND account_id = $1 AND category = ANY($2)")).
		WithArgs("acct-1", pq.Array([]string{"positive"})).
		WillReturnRows(rows)

	defs, err := repo.ListDefinitions(context.Background(), models.BehaviorDefinitionFilter{
		AccountID:  "acct-1",
		Categories: []models.BehaviorCategory{models.BehaviorCategoryPositive},
	})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, models.TrackingFrequency, defs[0].TrackingMethod)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryAppendEvent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectExec("INSERT INTO behavior_events").
		WithArgs(sqlmock.AnyArg(), "b-1", "s-1", sqlmock.AnyArg(), 3, "math class", "", "teacher-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.BehaviorEvent{BehaviorID: "b-1", StudentID: strPtr("s-1"), Count: 3, Context: "math class", CreatedBy: "teacher-1"}
	require.NoError(t, repo.AppendEvent(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryListEvents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	since := time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "behavior_id", "student_id", "timestamp", "count", "context", "notes", "created_by", "created_at"}).
		AddRow("e-1", "b-1", "s-1", since.Add(time.Hour), 2, "", "", "teacher-1", since.Add(time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND behavior_id = ANY($1) AND student_id = $2 AND timestamp >= $3 ORDER BY timestamp DESC, created_at DESC LIMIT 50 OFFSET 0")).
		WithArgs(pq.Array([]string{"b-1"}), "s-1", since).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM behavior_events WHERE 1=1 AND behavior_id = ANY($1)")).
		WithArgs(pq.Array([]string{"b-1"}), "s-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.ListEvents(context.Background(), models.BehaviorEventFilter{
		BehaviorIDs: []string{"b-1"},
		StudentID:   "s-1",
		Since:       &since,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].StudentID)
	assert.Equal(t, "s-1", *events[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryEventsSince(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	since := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "behavior_id", "student_id", "timestamp", "count", "context", "notes", "created_by", "created_at"}).
		AddRow("e-1", "b-1", nil, since, 1, "", "", "teacher-1", since).
		AddRow("e-2", "b-1", "s-2", since.Add(time.Hour), 4, "", "", "teacher-1", since)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE behavior_id = $1 AND timestamp >= $2")).
		WithArgs("b-1", since).
		WillReturnRows(rows)

	events, err := repo.EventsSince(context.Background(), "b-1", since)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Nil(t, events[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}
