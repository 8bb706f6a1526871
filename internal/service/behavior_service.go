package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

type behaviorRepository interface {
	ListDefinitions(ctx context.Context, filter models.BehaviorDefinitionFilter) ([]models.BehaviorDefinition, error)
	FindDefinition(ctx context.Context, id string) (*models.BehaviorDefinition, error)
	CreateDefinition(ctx context.Context, def *models.BehaviorDefinition) error
	AppendEvent(ctx context.Context, event *models.BehaviorEvent) error
	ListEvents(ctx context.Context, filter models.BehaviorEventFilter) ([]models.BehaviorEvent, int, error)
}

// BehaviorService manages behaviour definitions and records observations.
type BehaviorService struct {
	repo      behaviorRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBehaviorService constructs the service.
func NewBehaviorService(repo behaviorRepository, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehaviorService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// BehaviorEventQuery describes filters for listing events.
type BehaviorEventQuery struct {
	BehaviorID string
	StudentID  string
	Since      *time.Time
	Until      *time.Time
	Page       int
	PageSize   int
}

// ListDefinitions returns the behaviour catalogue of an account.
func (s *BehaviorService) ListDefinitions(ctx context.Context, accountID string, categories []string) ([]models.BehaviorDefinition, error) {
	filter := models.BehaviorDefinitionFilter{AccountID: accountID}
	for _, c := range categories {
		category := models.BehaviorCategory(c)
		if !category.IsValid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown behavior category: "+c)
		}
		filter.Categories = append(filter.Categories, category)
	}
	defs, err := s.repo.ListDefinitions(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list behaviors")
	}
	if defs == nil {
		defs = []models.BehaviorDefinition{}
	}
	return defs, nil
}

// GetDefinition returns a single behaviour definition.
func (s *BehaviorService) GetDefinition(ctx context.Context, id string) (*models.BehaviorDefinition, error) {
	def, err := s.repo.FindDefinition(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "behavior not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load behavior")
	}
	return def, nil
}

// CreateDefinition adds a behaviour to the catalogue. Definitions are immutable afterwards.
func (s *BehaviorService) CreateDefinition(ctx context.Context, req dto.CreateBehaviorRequest) (*models.BehaviorDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	def := &models.BehaviorDefinition{
		AccountID:      req.AccountID,
		Name:           req.Name,
		Category:       req.Category,
		TrackingMethod: req.TrackingMethod,
		PointValue:     req.PointValue,
	}
	if err := s.repo.CreateDefinition(ctx, def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create behavior")
	}
	s.logger.Info("behavior defined", zap.String("behavior_id", def.ID), zap.String("category", string(def.Category)))
	return def, nil
}

// RecordEvent appends an observation of an existing behaviour.
func (s *BehaviorService) RecordEvent(ctx context.Context, req dto.RecordBehaviorEventRequest, actorID string) (*models.BehaviorEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.GetDefinition(ctx, req.BehaviorID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	timestamp := now
	if req.Timestamp != nil {
		if req.Timestamp.After(now) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "timestamp cannot be in the future")
		}
		timestamp = req.Timestamp.UTC()
	}
	event := &models.BehaviorEvent{
		BehaviorID: req.BehaviorID,
		StudentID:  req.StudentID,
		Timestamp:  timestamp,
		Count:      req.Count,
		Context:    req.Context,
		Notes:      req.Notes,
		CreatedBy:  actorID,
		CreatedAt:  now,
	}
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record behavior event")
	}
	return event, nil
}

// ListEvents returns events with pagination.
func (s *BehaviorService) ListEvents(ctx context.Context, query BehaviorEventQuery) ([]models.BehaviorEvent, *models.Pagination, error) {
	filter := models.BehaviorEventFilter{
		StudentID: query.StudentID,
		Since:     query.Since,
		Until:     query.Until,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}
	if query.BehaviorID != "" {
		filter.BehaviorIDs = []string{query.BehaviorID}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "until must not be before since")
	}
	events, total, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list behavior events")
	}
	if events == nil {
		events = []models.BehaviorEvent{}
	}
	return events, models.NewPagination(filter.Page, filter.PageSize, total), nil
}
