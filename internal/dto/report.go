package dto

import (
	"time"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// ReportRequest captures POST /analytics/reports payload.
type ReportRequest struct {
	Type      models.ReportType   `json:"type" validate:"required,oneof=effectiveness comparison significance"`
	Format    models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	TimeRange *models.TimeRange   `json:"timeRange,omitempty" validate:"omitempty,oneof=week month term year all"`
	// Demo renders from the demonstration dataset if the store is unavailable.
	Demo bool `json:"demo,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata. Error carries the last failure,
// including one that is being retried.
type ReportStatusResponse struct {
	ID         string              `json:"id"`
	Type       models.ReportType   `json:"type"`
	Format     models.ReportFormat `json:"format"`
	Status     models.ReportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	ResultURL  *string             `json:"resultUrl,omitempty"`
	Error      *string             `json:"error,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	FinishedAt *time.Time          `json:"finishedAt,omitempty"`
}
