package dto

import "github.com/noah-isme/intervention-insights-api/internal/models"

// UpdateAnalyticsSettingsRequest replaces the analytics settings document. Omitted
// fields keep their stored value.
type UpdateAnalyticsSettingsRequest struct {
	Enabled               *bool              `json:"enabled"`
	DataSource            *models.DataSource `json:"dataSource" validate:"omitempty,oneof=all current selected"`
	TimeRange             *models.TimeRange  `json:"timeRange" validate:"omitempty,oneof=week month term year all"`
	GroupBy               *models.GroupBy    `json:"groupBy" validate:"omitempty,oneof=intervention student learningProfile none"`
	ComparisonEnabled     *bool              `json:"comparisonEnabled"`
	SignificanceThreshold *float64           `json:"significanceThreshold"`
	AutomaticReports      *bool              `json:"automaticReports"`
	SelectedInterventions []string           `json:"selectedInterventions" validate:"omitempty,dive,required"`
}
