package insights

import (
	"time"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// GoalProgressReport describes a goal's standing inside its current window.
type GoalProgressReport struct {
	GoalID       string           `json:"goal_id"`
	Timeframe    models.Timeframe `json:"timeframe"`
	WindowStart  time.Time        `json:"window_start"`
	MatchedCount int64            `json:"matched_count"`
	TargetValue  int              `json:"target_value"`
	Progress     int              `json:"progress"`
	Reached      bool             `json:"reached"`
}

// GoalProgress returns the percentage (0..100) of the goal's target reached by the
// matching events inside the goal's window. A non-positive target yields 0.
func GoalProgress(goal models.Goal, events []models.BehaviorEvent, now time.Time) int {
	return EvaluateGoal(goal, events, now).Progress
}

// EvaluateGoal computes the full progress report for a goal.
func EvaluateGoal(goal models.Goal, events []models.BehaviorEvent, now time.Time) GoalProgressReport {
	start := WindowStart(goal.Timeframe, now)
	matched := MatchingCount(goal, events, start)
	progress := percentOf(matched, goal.TargetValue)
	return GoalProgressReport{
		GoalID:       goal.ID,
		Timeframe:    goal.Timeframe,
		WindowStart:  start,
		MatchedCount: matched,
		TargetValue:  goal.TargetValue,
		Progress:     progress,
		Reached:      progress >= 100,
	}
}

// MatchingCount sums the counts of events that belong to the goal and fall at or
// after windowStart. Events with a non-positive count are ignored.
func MatchingCount(goal models.Goal, events []models.BehaviorEvent, windowStart time.Time) int64 {
	var sum int64
	for _, ev := range events {
		if ev.BehaviorID != goal.TargetBehaviorID {
			continue
		}
		if goal.StudentID != nil && *goal.StudentID != "" {
			if ev.StudentID == nil || *ev.StudentID != *goal.StudentID {
				continue
			}
		}
		if ev.Timestamp.Before(windowStart) || ev.Count <= 0 {
			continue
		}
		sum += int64(ev.Count)
	}
	return sum
}

// percentOf rounds sum/target*100 half away from zero and clamps it to [0,100].
func percentOf(sum int64, target int) int {
	if target <= 0 || sum <= 0 {
		return 0
	}
	t := int64(target)
	if sum >= t {
		return 100
	}
	// sum < target here, so the product cannot overflow for realistic targets.
	return int((sum*200 + t) / (2 * t))
}
