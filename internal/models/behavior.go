package models

import "time"

// BehaviorCategory classifies a tracked behaviour.
type BehaviorCategory string

const (
	BehaviorCategoryPositive  BehaviorCategory = "positive"
	BehaviorCategoryChallenge BehaviorCategory = "challenge"
	BehaviorCategoryNeutral   BehaviorCategory = "neutral"
)

// TrackingMethod describes how observations of a behaviour are counted.
type TrackingMethod string

const (
	TrackingFrequency TrackingMethod = "frequency"
	TrackingDuration  TrackingMethod = "duration"
	TrackingBinary    TrackingMethod = "binary"
)

// BehaviorDefinition is an immutable, account-owned description of a trackable behaviour.
type BehaviorDefinition struct {
	ID             string           `db:"id" json:"id"`
	AccountID      string           `db:"account_id" json:"account_id"`
	Name           string           `db:"name" json:"name"`
	Category       BehaviorCategory `db:"category" json:"category"`
	TrackingMethod TrackingMethod   `db:"tracking_method" json:"tracking_method"`
	PointValue     int              `db:"point_value" json:"point_value"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// BehaviorEvent records one observation. Events are append-only.
type BehaviorEvent struct {
	ID         string    `db:"id" json:"id"`
	BehaviorID string    `db:"behavior_id" json:"behavior_id"`
	StudentID  *string   `db:"student_id" json:"student_id,omitempty"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
	Count      int       `db:"count" json:"count"`
	Context    string    `db:"context" json:"context"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// BehaviorDefinitionFilter scopes definition listings.
type BehaviorDefinitionFilter struct {
	AccountID  string
	Categories []BehaviorCategory
}

// BehaviorEventFilter scopes event listings.
type BehaviorEventFilter struct {
	BehaviorIDs []string
	StudentID   string
	Since       *time.Time
	Until       *time.Time
	Page        int
	PageSize    int
}

// IsValid reports whether the category is one of the supported values.
func (c BehaviorCategory) IsValid() bool {
	switch c {
	case BehaviorCategoryPositive, BehaviorCategoryChallenge, BehaviorCategoryNeutral:
		return true
	default:
		return false
	}
}

// IsValid reports whether the tracking method is one of the supported values.
func (m TrackingMethod) IsValid() bool {
	switch m {
	case TrackingFrequency, TrackingDuration, TrackingBinary:
		return true
	default:
		return false
	}
}
