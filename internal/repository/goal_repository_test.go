package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

var goalRowColumns = []string{"id", "target_behavior_id", "target_value", "timeframe", "student_id", "reward_id", "status", "created_by", "created_at", "updated_at", "completed_at"}

func TestGoalRepositoryCreateDefaultsActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectExec("INSERT INTO goals").
		WithArgs(sqlmock.AnyArg(), "b-1", 5, "weekly", "s-1", nil, "active", "teacher-1", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	goal := &models.Goal{TargetBehaviorID: "b-1", TargetValue: 5, Timeframe: models.TimeframeWeekly, StudentID: strPtr("s-1"), CreatedBy: "teacher-1"}
	require.NoError(t, repo.Create(context.Background(), goal))
	assert.Equal(t, models.GoalStatusActive, goal.Status)
	assert.NotEmpty(t, goal.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(goalRowColumns).
		AddRow("g-1", "b-1", 5, "daily", nil, nil, "paused", "teacher-1", now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE 1=1 AND status = ANY($1) ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs(pq.Array([]string{"paused"})).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM goals WHERE 1=1 AND status = ANY($1)")).
		WithArgs(pq.Array([]string{"paused"})).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	goals, total, err := repo.List(context.Background(), models.GoalFilter{Statuses: []models.GoalStatus{models.GoalStatusPaused}, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, goals, 1)
	assert.Equal(t, models.GoalStatusPaused, goals[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalRepositoryUpdateStatusGuardsSource(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	completed := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE goals SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4 AND status = $5")).
		WithArgs("completed", completed, sqlmock.AnyArg(), "g-1", "active").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE goals SET status")).
		WithArgs("active", nil, sqlmock.AnyArg(), "g-2", "paused").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.UpdateStatus(context.Background(), "g-1", models.GoalStatusActive, models.GoalStatusCompleted, &completed)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.UpdateStatus(context.Background(), "g-2", models.GoalStatusPaused, models.GoalStatusActive, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}
