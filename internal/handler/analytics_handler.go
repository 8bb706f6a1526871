package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-insights-api/internal/insights"
	"github.com/noah-isme/intervention-insights-api/internal/middleware"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	"github.com/noah-isme/intervention-insights-api/internal/service"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
	"github.com/noah-isme/intervention-insights-api/pkg/response"
)

type analyticsService interface {
	Data(ctx context.Context, opts service.AnalyticsOptions) (*service.Dataset, error)
	Overview(ctx context.Context, opts service.AnalyticsOptions) (*service.AnalyticsView, error)
	Matrix(ctx context.Context, opts service.AnalyticsOptions) (*insights.Matrix, *service.AnalyticsView, error)
	Top(ctx context.Context, opts service.AnalyticsOptions, limit int) ([]insights.InterventionSummary, *service.Dataset, error)
	SystemMetrics() models.AnalyticsSystemMetrics
}

// SignificantResponse lists the samples that passed the significance filter.
type SignificantResponse struct {
	Test      string                       `json:"test"`
	Threshold float64                      `json:"threshold"`
	Samples   []insights.SignificantSample `json:"samples"`
}

// AnalyticsHandler exposes intervention analytics endpoints.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Data godoc
// @Summary Intervention samples and student progress for the stored settings
// @Tags Analytics
// @Produce json
// @Param fallback query string false "demo to allow the demonstration dataset"
// @Param timeRange query string false "Override time range"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /analytics/interventions [get]
func (h *AnalyticsHandler) Data(c *gin.Context) {
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	data, err := h.analytics.Data(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, data, data.Cached, data.Demo)
}

// Overview godoc
// @Summary Full analytics pipeline result
// @Tags Analytics
// @Produce json
// @Param fallback query string false "demo to allow the demonstration dataset"
// @Param timeRange query string false "Override time range"
// @Param groupBy query string false "Override grouping"
// @Success 200 {object} response.Envelope
// @Router /analytics/interventions/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	view, err := h.analytics.Overview(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, view, view.Cached, view.Demo)
}

// Matrix godoc
// @Summary Intervention by learning profile effectiveness matrix
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/interventions/matrix [get]
func (h *AnalyticsHandler) Matrix(c *gin.Context) {
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	matrix, view, err := h.analytics.Matrix(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, matrix, view.Cached, view.Demo)
}

// Significant godoc
// @Summary Samples whose effectiveness differs significantly from their cohort
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/interventions/significant [get]
func (h *AnalyticsHandler) Significant(c *gin.Context) {
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	view, err := h.analytics.Overview(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload := SignificantResponse{Test: view.SignificanceTest, Threshold: view.Threshold, Samples: view.Significant}
	if payload.Samples == nil {
		payload.Samples = []insights.SignificantSample{}
	}
	h.respond(c, start, payload, view.Cached, view.Demo)
}

// Top godoc
// @Summary Most effective interventions
// @Tags Analytics
// @Produce json
// @Param limit query int false "Number of interventions" default(5)
// @Success 200 {object} response.Envelope
// @Router /analytics/interventions/top [get]
func (h *AnalyticsHandler) Top(c *gin.Context) {
	opts, err := parseAnalyticsOptions(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit := parseQueryInt(c, "limit", insights.DefaultTopLimit)
	if limit <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be positive"))
		return
	}
	start := time.Now()
	top, data, err := h.analytics.Top(c.Request.Context(), opts, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, start, top, data.Cached, data.Demo)
}

// System godoc
// @Summary Instrumentation snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	start := time.Now()
	h.respond(c, start, h.analytics.SystemMetrics(), false, false)
}

func (h *AnalyticsHandler) respond(c *gin.Context, start time.Time, payload interface{}, cached, demo bool) {
	middleware.SetCacheHit(c, cached)
	middleware.SetDemo(c, demo)
	response.JSON(c, http.StatusOK, payload, nil, withProcessingTime(c, start))
}

func parseAnalyticsOptions(c *gin.Context) (service.AnalyticsOptions, error) {
	opts := service.AnalyticsOptions{Demo: c.Query("fallback") == "demo"}
	if raw := c.Query("timeRange"); raw != "" {
		tr := models.TimeRange(raw)
		if !tr.IsValid() {
			return opts, appErrors.Clone(appErrors.ErrValidation, "invalid timeRange parameter")
		}
		opts.TimeRange = &tr
	}
	if raw := c.Query("groupBy"); raw != "" {
		gb := models.GroupBy(raw)
		if !gb.IsValid() {
			return opts, appErrors.Clone(appErrors.ErrValidation, "invalid groupBy parameter")
		}
		opts.GroupBy = &gb
	}
	return opts, nil
}
