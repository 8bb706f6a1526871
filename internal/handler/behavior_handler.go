package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	"github.com/noah-isme/intervention-insights-api/internal/service"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
	"github.com/noah-isme/intervention-insights-api/pkg/response"
)

type behaviorService interface {
	ListDefinitions(ctx context.Context, accountID string, categories []string) ([]models.BehaviorDefinition, error)
	GetDefinition(ctx context.Context, id string) (*models.BehaviorDefinition, error)
	CreateDefinition(ctx context.Context, req dto.CreateBehaviorRequest) (*models.BehaviorDefinition, error)
	RecordEvent(ctx context.Context, req dto.RecordBehaviorEventRequest, actorID string) (*models.BehaviorEvent, error)
	ListEvents(ctx context.Context, query service.BehaviorEventQuery) ([]models.BehaviorEvent, *models.Pagination, error)
}

// BehaviorHandler exposes behaviour definitions and observations.
type BehaviorHandler struct {
	behaviors behaviorService
}

// NewBehaviorHandler constructs BehaviorHandler.
func NewBehaviorHandler(behaviors behaviorService) *BehaviorHandler {
	return &BehaviorHandler{behaviors: behaviors}
}

// List godoc
// @Summary List behaviour definitions
// @Tags Behaviors
// @Produce json
// @Param account_id query string true "Account"
// @Param category query string false "positive, challenge or neutral"
// @Success 200 {object} response.Envelope
// @Router /behaviors [get]
func (h *BehaviorHandler) List(c *gin.Context) {
	accountID := c.Query("account_id")
	if accountID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "account_id required"))
		return
	}
	definitions, err := h.behaviors.ListDefinitions(c.Request.Context(), accountID, queryList(c, "category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definitions, nil)
}

// Get godoc
// @Summary Get behaviour definition
// @Tags Behaviors
// @Produce json
// @Param id path string true "Behavior ID"
// @Success 200 {object} response.Envelope
// @Router /behaviors/{id} [get]
func (h *BehaviorHandler) Get(c *gin.Context) {
	definition, err := h.behaviors.GetDefinition(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definition, nil)
}

// Create godoc
// @Summary Define a trackable behaviour
// @Tags Behaviors
// @Accept json
// @Produce json
// @Param payload body dto.CreateBehaviorRequest true "Behavior payload"
// @Success 201 {object} response.Envelope
// @Router /behaviors [post]
func (h *BehaviorHandler) Create(c *gin.Context) {
	var req dto.CreateBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid behavior payload"))
		return
	}
	definition, err := h.behaviors.CreateDefinition(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, definition)
}

// RecordEvent godoc
// @Summary Record a behaviour observation
// @Tags Behaviors
// @Accept json
// @Produce json
// @Param payload body dto.RecordBehaviorEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /behaviors/events [post]
func (h *BehaviorHandler) RecordEvent(c *gin.Context) {
	var req dto.RecordBehaviorEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.behaviors.RecordEvent(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// ListEvents godoc
// @Summary List behaviour observations
// @Tags Behaviors
// @Produce json
// @Param behavior_id query string false "Behavior"
// @Param student_id query string false "Student"
// @Param since query string false "RFC3339 or YYYY-MM-DD"
// @Param until query string false "RFC3339 or YYYY-MM-DD"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /behaviors/events [get]
func (h *BehaviorHandler) ListEvents(c *gin.Context) {
	query := service.BehaviorEventQuery{
		BehaviorID: c.Query("behavior_id"),
		StudentID:  c.Query("student_id"),
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "limit", 50),
	}
	var err error
	if query.Since, err = parseTimeParam(c, "since"); err != nil {
		response.Error(c, err)
		return
	}
	if query.Until, err = parseTimeParam(c, "until"); err != nil {
		response.Error(c, err)
		return
	}
	events, pagination, err := h.behaviors.ListEvents(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}
