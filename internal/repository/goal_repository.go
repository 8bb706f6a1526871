package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

const goalColumns = "id, target_behavior_id, target_value, timeframe, student_id, reward_id, status, created_by, created_at, updated_at, completed_at"

// GoalRepository persists behaviour goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository constructs the repository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// List returns goals per provided filter.
func (r *GoalRepository) List(ctx context.Context, filter models.GoalFilter) ([]models.Goal, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if len(filter.Statuses) > 0 {
		values := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			values[i] = string(s)
		}
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(values))
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	query := fmt.Sprintf("SELECT %s FROM goals WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d", goalColumns, whereClause, size, (page-1)*size)
	var goals []models.Goal
	if err := r.db.SelectContext(ctx, &goals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list goals: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM goals WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count goals: %w", err)
	}
	return goals, total, nil
}

// FindByID loads a goal; sql.ErrNoRows is returned unwrapped when it does not exist.
func (r *GoalRepository) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.GetContext(ctx, &goal, "SELECT "+goalColumns+" FROM goals WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find goal: %w", err)
	}
	return &goal, nil
}

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now
	if goal.Status == "" {
		goal.Status = models.GoalStatusActive
	}
	const query = `INSERT INTO goals (id, target_behavior_id, target_value, timeframe, student_id, reward_id, status, created_by, created_at, updated_at, completed_at)
VALUES (:id, :target_behavior_id, :target_value, :timeframe, :student_id, :reward_id, :status, :created_by, :created_at, :updated_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// UpdateStatus moves a goal from one status to another. The update only applies when
// the stored status still equals from; the boolean reports whether a row changed.
func (r *GoalRepository) UpdateStatus(ctx context.Context, id string, from, to models.GoalStatus, completedAt *time.Time) (bool, error) {
	const query = `UPDATE goals SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, to, completedAt, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update goal status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("goal status rows affected: %w", err)
	}
	return affected > 0, nil
}
