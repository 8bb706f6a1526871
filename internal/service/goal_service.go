package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/insights"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

type goalRepository interface {
	List(ctx context.Context, filter models.GoalFilter) ([]models.Goal, int, error)
	FindByID(ctx context.Context, id string) (*models.Goal, error)
	Create(ctx context.Context, goal *models.Goal) error
	UpdateStatus(ctx context.Context, id string, from, to models.GoalStatus, completedAt *time.Time) (bool, error)
}

type goalEventReader interface {
	FindDefinition(ctx context.Context, id string) (*models.BehaviorDefinition, error)
	EventsSince(ctx context.Context, behaviorID string, since time.Time) ([]models.BehaviorEvent, error)
}

// GoalService manages behaviour goals and their lifecycle. Progress is always
// recomputed from the event log; it is never stored.
type GoalService struct {
	goals     goalRepository
	events    goalEventReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewGoalService constructs the service.
func NewGoalService(goals goalRepository, events goalEventReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GoalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalService{goals: goals, events: events, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// GoalListRequest describes filters for listing goals.
type GoalListRequest struct {
	StudentID string
	Statuses  []string
	Page      int
	PageSize  int
}

// Create stores a new active goal for an existing behaviour.
func (s *GoalService) Create(ctx context.Context, req dto.CreateGoalRequest, actorID string) (*models.Goal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.events.FindDefinition(ctx, req.TargetBehaviorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "target behavior does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify target behavior")
	}
	goal := &models.Goal{
		TargetBehaviorID: req.TargetBehaviorID,
		TargetValue:      req.TargetValue,
		Timeframe:        req.Timeframe,
		StudentID:        req.StudentID,
		RewardID:         req.RewardID,
		Status:           models.GoalStatusActive,
		CreatedBy:        actorID,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create goal")
	}
	return goal, nil
}

// List returns goals with pagination.
func (s *GoalService) List(ctx context.Context, req GoalListRequest) ([]models.Goal, *models.Pagination, error) {
	filter := models.GoalFilter{StudentID: req.StudentID, Page: req.Page, PageSize: req.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	for _, raw := range req.Statuses {
		status := models.GoalStatus(raw)
		switch status {
		case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusPaused:
			filter.Statuses = append(filter.Statuses, status)
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown goal status: "+raw)
		}
	}
	goals, total, err := s.goals.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list goals")
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	return goals, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get loads a goal.
func (s *GoalService) Get(ctx context.Context, id string) (*models.Goal, error) {
	goal, err := s.goals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	return goal, nil
}

// Progress computes the goal's progress over its current window.
func (s *GoalService) Progress(ctx context.Context, id string) (*insights.GoalProgressReport, error) {
	goal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	report, err := s.evaluate(ctx, *goal)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Evaluate computes progress and completes an active goal that reached its target.
func (s *GoalService) Evaluate(ctx context.Context, id string) (*dto.GoalEvaluationResponse, error) {
	goal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	report, err := s.evaluate(ctx, *goal)
	if err != nil {
		return nil, err
	}
	resp := &dto.GoalEvaluationResponse{Goal: *goal, Progress: report.Progress}
	if goal.Status != models.GoalStatusActive || !report.Reached {
		return resp, nil
	}

	completedAt := s.now().UTC()
	updated, err := s.transition(ctx, goal, models.GoalStatusActive, models.GoalStatusCompleted, &completedAt)
	if err != nil {
		return nil, err
	}
	resp.Goal = *updated
	resp.Completed = true
	s.logger.Info("goal completed", zap.String("goal_id", goal.ID), zap.Int64("matched", report.MatchedCount))
	return resp, nil
}

// Pause suspends an active goal.
func (s *GoalService) Pause(ctx context.Context, id string) (*models.Goal, error) {
	goal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, goal, models.GoalStatusActive, models.GoalStatusPaused, nil)
}

// Resume reactivates a paused goal.
func (s *GoalService) Resume(ctx context.Context, id string) (*models.Goal, error) {
	goal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, goal, models.GoalStatusPaused, models.GoalStatusActive, nil)
}

func (s *GoalService) transition(ctx context.Context, goal *models.Goal, from, to models.GoalStatus, completedAt *time.Time) (*models.Goal, error) {
	if goal.Status != from {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("goal is %s and cannot become %s", goal.Status, to))
	}
	changed, err := s.goals.UpdateStatus(ctx, goal.ID, from, to, completedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update goal")
	}
	if !changed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "goal status changed concurrently")
	}
	s.metrics.RecordGoalTransition(to)
	updated := *goal
	updated.Status = to
	updated.CompletedAt = completedAt
	updated.UpdatedAt = s.now().UTC()
	return &updated, nil
}

func (s *GoalService) evaluate(ctx context.Context, goal models.Goal) (insights.GoalProgressReport, error) {
	now := s.now()
	start := insights.WindowStart(goal.Timeframe, now)
	events, err := s.events.EventsSince(ctx, goal.TargetBehaviorID, start)
	if err != nil {
		return insights.GoalProgressReport{}, appErrors.Wrap(err, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, "behavior events unavailable")
	}
	return insights.EvaluateGoal(goal, events, now), nil
}
