package models

import "time"

// AnalyticsSettingsKey is the configurations row holding the analytics settings document.
const AnalyticsSettingsKey = "intervention_analytics_settings"

// ConfigurationType defines supported types for configuration values.
type ConfigurationType string

// ConfigurationTypeJSON marks values holding a JSON document.
const ConfigurationTypeJSON ConfigurationType = "JSON"

// Configuration is one row of the key-value configurations table.
type Configuration struct {
	Key         string            `db:"key" json:"key"`
	Value       string            `db:"value" json:"value"`
	Type        ConfigurationType `db:"type" json:"type"`
	Description *string           `db:"description" json:"description,omitempty"`
	UpdatedBy   *string           `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}
