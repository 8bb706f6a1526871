package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
	"github.com/noah-isme/intervention-insights-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) (models.AnalyticsSettings, error)
	Update(ctx context.Context, req dto.UpdateAnalyticsSettingsRequest, actorID string) (models.AnalyticsSettings, error)
}

// SettingsHandler exposes the analytics settings document.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Get analytics settings
// @Tags Analytics Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update analytics settings
// @Tags Analytics Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateAnalyticsSettingsRequest true "Settings patch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateAnalyticsSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, "invalid settings payload"))
		return
	}
	settings, err := h.service.Update(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
