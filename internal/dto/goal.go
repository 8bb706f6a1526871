package dto

import "github.com/noah-isme/intervention-insights-api/internal/models"

// CreateGoalRequest sets a behaviour target for a timeframe.
type CreateGoalRequest struct {
	TargetBehaviorID string           `json:"target_behavior_id" validate:"required"`
	TargetValue      int              `json:"target_value" validate:"required,gt=0"`
	Timeframe        models.Timeframe `json:"timeframe" validate:"required,oneof=daily weekly monthly term"`
	StudentID        *string          `json:"student_id"`
	RewardID         *string          `json:"reward_id"`
}

// GoalEvaluationResponse reports progress and whether the evaluation completed the goal.
type GoalEvaluationResponse struct {
	Goal      models.Goal `json:"goal"`
	Progress  int         `json:"progress"`
	Completed bool        `json:"completed"`
}
