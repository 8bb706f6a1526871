package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/insights"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	"github.com/noah-isme/intervention-insights-api/internal/service"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
	"github.com/noah-isme/intervention-insights-api/pkg/response"
)

type goalService interface {
	Create(ctx context.Context, req dto.CreateGoalRequest, actorID string) (*models.Goal, error)
	List(ctx context.Context, req service.GoalListRequest) ([]models.Goal, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Goal, error)
	Progress(ctx context.Context, id string) (*insights.GoalProgressReport, error)
	Evaluate(ctx context.Context, id string) (*dto.GoalEvaluationResponse, error)
	Pause(ctx context.Context, id string) (*models.Goal, error)
	Resume(ctx context.Context, id string) (*models.Goal, error)
}

// GoalHandler exposes behaviour goals.
type GoalHandler struct {
	goals goalService
}

// NewGoalHandler constructs GoalHandler.
func NewGoalHandler(goals goalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// Create godoc
// @Summary Create a behaviour goal
// @Tags Goals
// @Accept json
// @Produce json
// @Param payload body dto.CreateGoalRequest true "Goal payload"
// @Success 201 {object} response.Envelope
// @Router /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	var req dto.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid goal payload"))
		return
	}
	goal, err := h.goals.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, goal)
}

// List godoc
// @Summary List goals
// @Tags Goals
// @Produce json
// @Param student_id query string false "Student"
// @Param status query string false "active, completed or paused"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	goals, pagination, err := h.goals.List(c.Request.Context(), service.GoalListRequest{
		StudentID: c.Query("student_id"),
		Statuses:  queryList(c, "status"),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "limit", 50),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goals, pagination)
}

// Get godoc
// @Summary Get goal
// @Tags Goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} response.Envelope
// @Router /goals/{id} [get]
func (h *GoalHandler) Get(c *gin.Context) {
	goal, err := h.goals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goal, nil)
}

// Progress godoc
// @Summary Goal progress in its current window
// @Tags Goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} response.Envelope
// @Router /goals/{id}/progress [get]
func (h *GoalHandler) Progress(c *gin.Context) {
	report, err := h.goals.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Evaluate godoc
// @Summary Evaluate goal and complete it when the target is reached
// @Tags Goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /goals/{id}/evaluate [post]
func (h *GoalHandler) Evaluate(c *gin.Context) {
	result, err := h.goals.Evaluate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Pause godoc
// @Summary Pause an active goal
// @Tags Goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} response.Envelope
// @Router /goals/{id}/pause [post]
func (h *GoalHandler) Pause(c *gin.Context) {
	goal, err := h.goals.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goal, nil)
}

// Resume godoc
// @Summary Resume a paused goal
// @Tags Goals
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} response.Envelope
// @Router /goals/{id}/resume [post]
func (h *GoalHandler) Resume(c *gin.Context) {
	goal, err := h.goals.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goal, nil)
}
