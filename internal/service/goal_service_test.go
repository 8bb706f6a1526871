package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

type stubGoalRepo struct {
	goals       map[string]models.Goal
	created     []models.Goal
	transitions []models.GoalStatus
	staleUpdate bool
	listFilter  models.GoalFilter
}

func newStubGoalRepo(goals ...models.Goal) *stubGoalRepo {
	repo := &stubGoalRepo{goals: make(map[string]models.Goal)}
	for _, g := range goals {
		repo.goals[g.ID] = g
	}
	return repo
}

func (s *stubGoalRepo) List(_ context.Context, filter models.GoalFilter) ([]models.Goal, int, error) {
	s.listFilter = filter
	out := make([]models.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	return out, len(out), nil
}

func (s *stubGoalRepo) FindByID(_ context.Context, id string) (*models.Goal, error) {
	g, ok := s.goals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

func (s *stubGoalRepo) Create(_ context.Context, goal *models.Goal) error {
	goal.ID = "goal-new"
	s.goals[goal.ID] = *goal
	s.created = append(s.created, *goal)
	return nil
}

func (s *stubGoalRepo) UpdateStatus(_ context.Context, id string, from, to models.GoalStatus, completedAt *time.Time) (bool, error) {
	g, ok := s.goals[id]
	if !ok || g.Status != from || s.staleUpdate {
		return false, nil
	}
	g.Status = to
	g.CompletedAt = completedAt
	s.goals[id] = g
	s.transitions = append(s.transitions, to)
	return true, nil
}

var goalNow = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

func goalFixture() (*stubGoalRepo, *stubBehaviorRepo) {
	goals := newStubGoalRepo(
		models.Goal{ID: "goal-1", TargetBehaviorID: "beh-1", TargetValue: 5, Timeframe: models.TimeframeWeekly, Status: models.GoalStatusActive},
		models.Goal{ID: "goal-2", TargetBehaviorID: "beh-1", TargetValue: 2, Timeframe: models.TimeframeDaily, Status: models.GoalStatusCompleted},
		models.Goal{ID: "goal-3", TargetBehaviorID: "beh-1", TargetValue: 5, Timeframe: models.TimeframeWeekly, Status: models.GoalStatusPaused},
	)
	behaviors := newStubBehaviorRepo(models.BehaviorDefinition{ID: "beh-1"})
	behaviors.events = []models.BehaviorEvent{
		{BehaviorID: "beh-1", Timestamp: time.Date(2024, time.May, 13, 9, 0, 0, 0, time.UTC), Count: 1},
		{BehaviorID: "beh-1", Timestamp: time.Date(2024, time.May, 14, 9, 0, 0, 0, time.UTC), Count: 1},
		{BehaviorID: "beh-1", Timestamp: time.Date(2024, time.May, 12, 9, 0, 0, 0, time.UTC), Count: 4},
	}
	return goals, behaviors
}

func newTestGoalService(goals *stubGoalRepo, behaviors *stubBehaviorRepo, metrics *MetricsService) *GoalService {
	svc := NewGoalService(goals, behaviors, metrics, nil, zap.NewNop())
	svc.now = func() time.Time { return goalNow }
	return svc
}

func TestGoalServiceCreate(t *testing.T) {
	goals, behaviors := goalFixture()
	svc := newTestGoalService(goals, behaviors, nil)

	goal, err := svc.Create(context.Background(), dto.CreateGoalRequest{TargetBehaviorID: "beh-1", TargetValue: 3, Timeframe: models.TimeframeDaily}, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusActive, goal.Status)
	assert.Equal(t, "teacher-1", goal.CreatedBy)

	_, err = svc.Create(context.Background(), dto.CreateGoalRequest{TargetBehaviorID: "missing", TargetValue: 3, Timeframe: models.TimeframeDaily}, "teacher-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Create(context.Background(), dto.CreateGoalRequest{TargetBehaviorID: "beh-1", TargetValue: 0, Timeframe: models.TimeframeDaily}, "teacher-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Create(context.Background(), dto.CreateGoalRequest{TargetBehaviorID: "beh-1", TargetValue: 1, Timeframe: "yearly"}, "teacher-1")
	require.Error(t, err)
	assert.Len(t, goals.created, 1)
}

func TestGoalServiceProgressUsesWeeklyWindow(t *testing.T) {
	goals, behaviors := goalFixture()
	svc := newTestGoalService(goals, behaviors, nil)

	report, err := svc.Progress(context.Background(), "goal-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.MatchedCount)
	assert.Equal(t, 40, report.Progress)
	assert.False(t, report.Reached)
	assert.Equal(t, time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC), report.WindowStart)
}

func TestGoalServiceEvaluateCompletesGoal(t *testing.T) {
	goals, behaviors := goalFixture()
	behaviors.events = append(behaviors.events, models.BehaviorEvent{BehaviorID: "beh-1", Timestamp: time.Date(2024, time.May, 15, 8, 0, 0, 0, time.UTC), Count: 3})
	metrics := NewMetricsService()
	svc := newTestGoalService(goals, behaviors, metrics)

	resp, err := svc.Evaluate(context.Background(), "goal-1")
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, models.GoalStatusCompleted, resp.Goal.Status)
	require.NotNil(t, resp.Goal.CompletedAt)
	assert.Equal(t, goalNow, *resp.Goal.CompletedAt)
	assert.Equal(t, []models.GoalStatus{models.GoalStatusCompleted}, goals.transitions)

	again, err := svc.Evaluate(context.Background(), "goal-1")
	require.NoError(t, err)
	assert.False(t, again.Completed)
	assert.Len(t, goals.transitions, 1)
}

func TestGoalServiceEvaluateBelowTarget(t *testing.T) {
	goals, behaviors := goalFixture()
	svc := newTestGoalService(goals, behaviors, nil)

	resp, err := svc.Evaluate(context.Background(), "goal-1")
	require.NoError(t, err)
	assert.False(t, resp.Completed)
	assert.Equal(t, 40, resp.Progress)
	assert.Empty(t, goals.transitions)
}

func TestGoalServiceEvaluateConcurrentChange(t *testing.T) {
	goals, behaviors := goalFixture()
	goals.staleUpdate = true
	behaviors.events = append(behaviors.events, models.BehaviorEvent{BehaviorID: "beh-1", Timestamp: goalNow, Count: 10})
	svc := newTestGoalService(goals, behaviors, nil)

	_, err := svc.Evaluate(context.Background(), "goal-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))
}

func TestGoalServiceEventsUnavailable(t *testing.T) {
	goals, behaviors := goalFixture()
	behaviors.eventsErr = assert.AnError
	svc := newTestGoalService(goals, behaviors, nil)

	_, err := svc.Progress(context.Background(), "goal-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrDataUnavailable.Code))
}

func TestGoalServicePauseResume(t *testing.T) {
	goals, behaviors := goalFixture()
	svc := newTestGoalService(goals, behaviors, nil)

	paused, err := svc.Pause(context.Background(), "goal-1")
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusPaused, paused.Status)

	_, err = svc.Pause(context.Background(), "goal-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))

	resumed, err := svc.Resume(context.Background(), "goal-3")
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusActive, resumed.Status)

	_, err = svc.Resume(context.Background(), "goal-2")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))

	_, err = svc.Pause(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestGoalServiceList(t *testing.T) {
	goals, behaviors := goalFixture()
	svc := newTestGoalService(goals, behaviors, nil)

	list, pagination, err := svc.List(context.Background(), GoalListRequest{Statuses: []string{"active", "paused"}})
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, []models.GoalStatus{models.GoalStatusActive, models.GoalStatusPaused}, goals.listFilter.Statuses)

	_, _, err = svc.List(context.Background(), GoalListRequest{Statuses: []string{"archived"}})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}
