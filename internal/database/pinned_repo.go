package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPinnedRepository implements PinnedRepository over a pgx pool.
type PostgresPinnedRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPinnedRepository creates a new pinned-post repository.
func NewPostgresPinnedRepository(pool *pgxpool.Pool) *PostgresPinnedRepository {
	return &PostgresPinnedRepository{pool: pool}
}

func (r *PostgresPinnedRepository) CreatePinnedPost(ctx context.Context, p *PinnedPost) (int64, error) {
	query := `
		INSERT INTO pinned_posts (announcement_id, user_id, message_id, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		p.AnnouncementID, p.UserID, p.MessageID, p.Status, p.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create pinned post: %w", err)
	}
	return id, nil
}

func (r *PostgresPinnedRepository) CountActivePins(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pinned_posts WHERE expires_at > $1`, now,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active pins: %w", err)
	}
	return count, nil
}

func (r *PostgresPinnedRepository) NextPinExpiry(ctx context.Context, now time.Time) (*time.Time, error) {
	var expires time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT expires_at FROM pinned_posts
		WHERE expires_at > $1
		ORDER BY expires_at ASC
		LIMIT 1`, now,
	).Scan(&expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next pin expiry: %w", err)
	}
	return &expires, nil
}

func (r *PostgresPinnedRepository) ListActivePins(ctx context.Context, now time.Time) ([]PinnedPostWithUser, error) {
	query := `
		SELECT pp.id, pp.announcement_id, pp.user_id, pp.message_id, pp.status, pp.expires_at, pp.created_at,
		       u.id, u.username, u.first_name, u.last_name, u.joined_at
		FROM pinned_posts pp
		JOIN users u ON pp.user_id = u.id
		WHERE pp.expires_at > $1
		ORDER BY pp.created_at DESC`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active pins: %w", err)
	}
	defer rows.Close()

	var result []PinnedPostWithUser
	for rows.Next() {
		var pw PinnedPostWithUser
		if err := rows.Scan(
			&pw.ID, &pw.AnnouncementID, &pw.UserID, &pw.MessageID, &pw.Status, &pw.ExpiresAt, &pw.CreatedAt,
			&pw.User.ID, &pw.User.Username, &pw.User.FirstName, &pw.User.LastName, &pw.User.JoinedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, pw)
	}
	return result, rows.Err()
}

func (r *PostgresPinnedRepository) ExpirePins(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE pinned_posts SET status = $1 WHERE expires_at <= $2 AND status != $1`
	tag, err := r.pool.Exec(ctx, query, StatusExpired, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pinned posts: %w", err)
	}
	return tag.RowsAffected(), nil
}
