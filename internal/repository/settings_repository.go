package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

const settingsDescription = "Intervention analytics view settings"

// SettingsRepository stores the analytics settings document in the configurations table.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load returns the stored settings. The boolean is false when no document exists.
func (r *SettingsRepository) Load(ctx context.Context) (*models.AnalyticsSettings, bool, error) {
	const query = `SELECT key, value, type, description, updated_by, updated_at FROM configurations WHERE key = $1`
	var cfg models.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, models.AnalyticsSettingsKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load analytics settings: %w", err)
	}
	var settings models.AnalyticsSettings
	if err := json.Unmarshal([]byte(cfg.Value), &settings); err != nil {
		return nil, false, fmt.Errorf("decode analytics settings: %w", err)
	}
	return &settings, true, nil
}

// Save inserts or replaces the settings document.
func (r *SettingsRepository) Save(ctx context.Context, settings models.AnalyticsSettings, updatedBy string) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode analytics settings: %w", err)
	}
	description := settingsDescription
	cfg := models.Configuration{
		Key:         models.AnalyticsSettingsKey,
		Value:       string(payload),
		Type:        models.ConfigurationTypeJSON,
		Description: &description,
		UpdatedAt:   time.Now().UTC(),
	}
	if updatedBy != "" {
		cfg.UpdatedBy = &updatedBy
	}
	const query = `INSERT INTO configurations (key, value, type, description, updated_by, updated_at)
VALUES (:key, :value, :type, :description, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, type = EXCLUDED.type, description = EXCLUDED.description,
              updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("save analytics settings: %w", err)
	}
	return nil
}
