package models

import "time"

// Timeframe is the symbolic window a goal is measured over.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
	TimeframeTerm    Timeframe = "term"
)

// IsValid reports whether the timeframe is supported.
func (t Timeframe) IsValid() bool {
	switch t {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly, TimeframeTerm:
		return true
	default:
		return false
	}
}

// GoalStatus captures the goal lifecycle.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

// Goal is a target count of a behaviour to reach within a timeframe.
type Goal struct {
	ID               string     `db:"id" json:"id"`
	TargetBehaviorID string     `db:"target_behavior_id" json:"target_behavior_id"`
	TargetValue      int        `db:"target_value" json:"target_value"`
	Timeframe        Timeframe  `db:"timeframe" json:"timeframe"`
	StudentID        *string    `db:"student_id" json:"student_id,omitempty"`
	RewardID         *string    `db:"reward_id" json:"reward_id,omitempty"`
	Status           GoalStatus `db:"status" json:"status"`
	CreatedBy        string     `db:"created_by" json:"created_by"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// GoalFilter scopes goal listings.
type GoalFilter struct {
	StudentID string
	Statuses  []GoalStatus
	Page      int
	PageSize  int
}
