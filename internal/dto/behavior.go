package dto

import (
	"time"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// CreateBehaviorRequest defines a new trackable behaviour.
type CreateBehaviorRequest struct {
	AccountID      string                  `json:"account_id" validate:"required"`
	Name           string                  `json:"name" validate:"required,max=120"`
	Category       models.BehaviorCategory `json:"category" validate:"required,oneof=positive challenge neutral"`
	TrackingMethod models.TrackingMethod   `json:"tracking_method" validate:"required,oneof=frequency duration binary"`
	PointValue     int                     `json:"point_value" validate:"gte=0"`
}

// RecordBehaviorEventRequest records one observation.
type RecordBehaviorEventRequest struct {
	BehaviorID string     `json:"behavior_id" validate:"required"`
	StudentID  *string    `json:"student_id"`
	Timestamp  *time.Time `json:"timestamp"`
	Count      int        `json:"count" validate:"required,gte=1"`
	Context    string     `json:"context" validate:"max=255"`
	Notes      string     `json:"notes"`
}
