package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAutopostRepository implements AutopostRepository over a pgx pool.
type PostgresAutopostRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAutopostRepository creates a new autopost-task repository.
func NewPostgresAutopostRepository(pool *pgxpool.Pool) *PostgresAutopostRepository {
	return &PostgresAutopostRepository{pool: pool}
}

func (r *PostgresAutopostRepository) CreateAutopostTask(ctx context.Context, t *AutopostTask) (int64, error) {
	query := `
		INSERT INTO autopost_tasks (announcement_id, user_id, duration, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		t.AnnouncementID, t.UserID, t.Duration, t.Status, t.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create autopost task: %w", err)
	}
	return id, nil
}

func (r *PostgresAutopostRepository) ActivatePendingTask(ctx context.Context, userID, announcementID int64) (int64, error) {
	query := `
		UPDATE autopost_tasks
		SET announcement_id = $1, status = $2
		WHERE id = (
			SELECT id FROM autopost_tasks
			WHERE user_id = $3 AND status = $4
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query, announcementID, StatusActive, userID, StatusPending).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to activate pending autopost task for user %d: %w", userID, err)
	}
	return id, nil
}

func (r *PostgresAutopostRepository) ListActiveTasks(ctx context.Context, now time.Time) ([]AutopostTaskContent, error) {
	query := `
		SELECT at.id, at.announcement_id, at.user_id, at.duration, at.status, at.last_posted,
		       at.expires_at, at.notified_ending, at.notified_last, at.created_at,
		       a.category, COALESCE(a.text, ''), a.photo, a.entities
		FROM autopost_tasks at
		JOIN announcements a ON at.announcement_id = a.id
		WHERE at.status = $1 AND at.expires_at > $2`

	rows, err := r.pool.Query(ctx, query, StatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active autopost tasks: %w", err)
	}
	defer rows.Close()

	var result []AutopostTaskContent
	for rows.Next() {
		var tc AutopostTaskContent
		var entities []byte
		if err := rows.Scan(
			&tc.ID, &tc.AnnouncementID, &tc.UserID, &tc.Duration, &tc.Status, &tc.LastPosted,
			&tc.ExpiresAt, &tc.NotifiedEnding, &tc.NotifiedLast, &tc.CreatedAt,
			&tc.Category, &tc.Text, &tc.Photo, &entities,
		); err != nil {
			return nil, err
		}
		tc.Entities = unmarshalEntities(entities)
		result = append(result, tc)
	}
	return result, rows.Err()
}

func (r *PostgresAutopostRepository) MarkPosted(ctx context.Context, taskID int64, postedAt time.Time) error {
	if _, err := r.pool.Exec(ctx, `UPDATE autopost_tasks SET last_posted = $1 WHERE id = $2`, postedAt, taskID); err != nil {
		return fmt.Errorf("failed to mark autopost task %d posted: %w", taskID, err)
	}
	return nil
}

func (r *PostgresAutopostRepository) ListEndingUnnotified(ctx context.Context, from, to time.Time) ([]AutopostTask, error) {
	return r.listInWindow(ctx, "notified_ending", from, to)
}

func (r *PostgresAutopostRepository) ListLastUnnotified(ctx context.Context, from, to time.Time) ([]AutopostTask, error) {
	return r.listInWindow(ctx, "notified_last", from, to)
}

// listInWindow selects active tasks expiring within [from, to) that still
// carry an unset notification flag. flagColumn is one of the two fixed
// column names, never user input.
func (r *PostgresAutopostRepository) listInWindow(ctx context.Context, flagColumn string, from, to time.Time) ([]AutopostTask, error) {
	query := fmt.Sprintf(`
		SELECT id, announcement_id, user_id, duration, status, last_posted,
		       expires_at, notified_ending, notified_last, created_at
		FROM autopost_tasks
		WHERE status = $1 AND expires_at >= $2 AND expires_at < $3 AND NOT %s`, flagColumn)

	rows, err := r.pool.Query(ctx, query, StatusActive, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list autopost tasks in window: %w", err)
	}
	defer rows.Close()
	return scanAutopostTasks(rows)
}

func (r *PostgresAutopostRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]AutopostTask, error) {
	query := `
		SELECT id, announcement_id, user_id, duration, status, last_posted,
		       expires_at, notified_ending, notified_last, created_at
		FROM autopost_tasks
		WHERE status = $1 AND expires_at <= $2`

	rows, err := r.pool.Query(ctx, query, StatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired autopost tasks: %w", err)
	}
	defer rows.Close()
	return scanAutopostTasks(rows)
}

func scanAutopostTasks(rows pgx.Rows) ([]AutopostTask, error) {
	var result []AutopostTask
	for rows.Next() {
		var t AutopostTask
		if err := rows.Scan(
			&t.ID, &t.AnnouncementID, &t.UserID, &t.Duration, &t.Status, &t.LastPosted,
			&t.ExpiresAt, &t.NotifiedEnding, &t.NotifiedLast, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *PostgresAutopostRepository) SetNotifiedEnding(ctx context.Context, taskID int64) error {
	if _, err := r.pool.Exec(ctx, `UPDATE autopost_tasks SET notified_ending = TRUE WHERE id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to set notified_ending for task %d: %w", taskID, err)
	}
	return nil
}

func (r *PostgresAutopostRepository) SetNotifiedLast(ctx context.Context, taskID int64) error {
	if _, err := r.pool.Exec(ctx, `UPDATE autopost_tasks SET notified_last = TRUE WHERE id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to set notified_last for task %d: %w", taskID, err)
	}
	return nil
}

func (r *PostgresAutopostRepository) ExpireTasks(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE autopost_tasks SET status = $1 WHERE expires_at <= $2 AND status = $3`
	tag, err := r.pool.Exec(ctx, query, StatusExpired, now, StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to expire autopost tasks: %w", err)
	}
	return tag.RowsAffected(), nil
}
