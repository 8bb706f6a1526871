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

// BehaviorRepository persists behaviour definitions and their append-only events.
type BehaviorRepository struct {
	db *sqlx.DB
}

// NewBehaviorRepository constructs a new repository.
func NewBehaviorRepository(db *sqlx.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// ListDefinitions returns behaviour definitions per provided filter.
func (r *BehaviorRepository) ListDefinitions(ctx context.Context, filter models.BehaviorDefinitionFilter) ([]models.BehaviorDefinition, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.AccountID != "" {
		where = append(where, fmt.Sprintf("account_id = $%d", len(args)+1))
		args = append(args, filter.AccountID)
	}
	if len(filter.Categories) > 0 {
		values := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			values[i] = string(c)
		}
		where = append(where, fmt.Sprintf("category = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(values))
	}
	query := fmt.Sprintf(`SELECT id, account_id, name, category, tracking_method, point_value, created_at
FROM behavior_definitions WHERE %s ORDER BY name ASC, id ASC`, strings.Join(where, " AND "))
	var defs []models.BehaviorDefinition
	if err := r.db.SelectContext(ctx, &defs, query, args...); err != nil {
		return nil, fmt.Errorf("list behavior definitions: %w", err)
	}
	return defs, nil
}

// FindDefinition loads a single definition.
func (r *BehaviorRepository) FindDefinition(ctx context.Context, id string) (*models.BehaviorDefinition, error) {
	const query = `SELECT id, account_id, name, category, tracking_method, point_value, created_at
FROM behavior_definitions WHERE id = $1`
	var def models.BehaviorDefinition
	if err := r.db.GetContext(ctx, &def, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find behavior definition: %w", err)
	}
	return &def, nil
}

// CreateDefinition inserts a new behaviour definition.
func (r *BehaviorRepository) CreateDefinition(ctx context.Context, def *models.BehaviorDefinition) error {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO behavior_definitions (id, account_id, name, category, tracking_method, point_value, created_at)
VALUES (:id, :account_id, :name, :category, :tracking_method, :point_value, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, def); err != nil {
		return fmt.Errorf("create behavior definition: %w", err)
	}
	return nil
}

// AppendEvent records a behaviour observation. Events are never updated or deleted.
func (r *BehaviorRepository) AppendEvent(ctx context.Context, event *models.BehaviorEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	query := `INSERT INTO behavior_events (id, behavior_id, student_id, timestamp, count, context, notes, created_by, created_at)
VALUES (:id, :behavior_id, :student_id, :timestamp, :count, :context, :notes, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("append behavior event: %w", err)
	}
	return nil
}

// ListEvents returns behaviour events per provided filter, newest first.
func (r *BehaviorRepository) ListEvents(ctx context.Context, filter models.BehaviorEventFilter) ([]models.BehaviorEvent, int, error) {
	base := "FROM behavior_events"
	whereClause, args := eventWhere(filter)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size
	query := fmt.Sprintf(`SELECT id, behavior_id, student_id, timestamp, count, context, notes, created_by, created_at
%s WHERE %s ORDER BY timestamp DESC, created_at DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var events []models.BehaviorEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list behavior events: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count behavior events: %w", err)
	}
	return events, total, nil
}

// EventsSince returns every event for the behaviour recorded at or after since. It
// feeds goal progress, so it is not paginated.
func (r *BehaviorRepository) EventsSince(ctx context.Context, behaviorID string, since time.Time) ([]models.BehaviorEvent, error) {
	const query = `SELECT id, behavior_id, student_id, timestamp, count, context, notes, created_by, created_at
FROM behavior_events WHERE behavior_id = $1 AND timestamp >= $2 ORDER BY timestamp ASC`
	var events []models.BehaviorEvent
	if err := r.db.SelectContext(ctx, &events, query, behaviorID, since); err != nil {
		return nil, fmt.Errorf("behavior events since: %w", err)
	}
	return events, nil
}

func eventWhere(filter models.BehaviorEventFilter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}
	if len(filter.BehaviorIDs) > 0 {
		where = append(where, fmt.Sprintf("behavior_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.BehaviorIDs))
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Since != nil {
		where = append(where, fmt.Sprintf("timestamp >= $%d", len(args)+1))
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		where = append(where, fmt.Sprintf("timestamp <= $%d", len(args)+1))
		args = append(args, *filter.Until)
	}
	return strings.Join(where, " AND "), args
}
