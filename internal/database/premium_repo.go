package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPremiumRepository implements PremiumRepository over a pgx pool.
type PostgresPremiumRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPremiumRepository creates a new premium-service repository.
func NewPostgresPremiumRepository(pool *pgxpool.Pool) *PostgresPremiumRepository {
	return &PostgresPremiumRepository{pool: pool}
}

func (r *PostgresPremiumRepository) CreatePremiumService(ctx context.Context, s *PremiumService) (int64, error) {
	query := `
		INSERT INTO premium_services (user_id, service_type, announcement_id, duration, payment_screenshot, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		s.UserID, s.ServiceType, s.AnnouncementID, s.Duration, s.PaymentScreenshot, s.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create premium service: %w", err)
	}
	return id, nil
}

func (r *PostgresPremiumRepository) GetPremiumServiceByID(ctx context.Context, id int64) (*PremiumService, error) {
	query := `
		SELECT id, user_id, service_type, announcement_id, duration, status,
		       payment_screenshot, created_at, approved_at, expires_at
		FROM premium_services
		WHERE id = $1`

	var s PremiumService
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.ServiceType, &s.AnnouncementID, &s.Duration, &s.Status,
		&s.PaymentScreenshot, &s.CreatedAt, &s.ApprovedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get premium service %d: %w", id, err)
	}
	return &s, nil
}

func (r *PostgresPremiumRepository) ApprovePremiumService(ctx context.Context, id int64, approvedAt, expiresAt time.Time) error {
	query := `
		UPDATE premium_services
		SET status = $1, approved_at = $2, expires_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := r.pool.Exec(ctx, query, StatusApproved, approvedAt, expiresAt, id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to approve premium service %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPremiumRepository) RejectPremiumService(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE premium_services SET status = $1 WHERE id = $2 AND status = $3`,
		StatusRejected, id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to reject premium service %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPremiumRepository) AttachAnnouncement(ctx context.Context, serviceID, announcementID int64) error {
	query := `UPDATE premium_services SET announcement_id = $1 WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, announcementID, serviceID); err != nil {
		return fmt.Errorf("failed to attach announcement %d to premium service %d: %w", announcementID, serviceID, err)
	}
	return nil
}

func (r *PostgresPremiumRepository) ListPendingPremiumServices(ctx context.Context, limit int) ([]PremiumServiceWithUser, error) {
	query := `
		SELECT ps.id, ps.user_id, ps.service_type, ps.announcement_id, ps.duration, ps.status,
		       ps.payment_screenshot, ps.created_at, ps.approved_at, ps.expires_at,
		       u.id, u.username, u.first_name, u.last_name, u.joined_at
		FROM premium_services ps
		JOIN users u ON ps.user_id = u.id
		WHERE ps.status = $1
		ORDER BY ps.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending premium services: %w", err)
	}
	defer rows.Close()

	var result []PremiumServiceWithUser
	for rows.Next() {
		var sw PremiumServiceWithUser
		if err := rows.Scan(
			&sw.ID, &sw.UserID, &sw.ServiceType, &sw.AnnouncementID, &sw.Duration, &sw.Status,
			&sw.PaymentScreenshot, &sw.CreatedAt, &sw.ApprovedAt, &sw.ExpiresAt,
			&sw.User.ID, &sw.User.Username, &sw.User.FirstName, &sw.User.LastName, &sw.User.JoinedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sw)
	}
	return result, rows.Err()
}

// GetPendingPremiumWithAnnouncement loads one service plus its linked
// announcement (nil when no announcement is bound yet). Used for the admin
// notification card.
func (r *PostgresPremiumRepository) GetPendingPremiumWithAnnouncement(ctx context.Context, id int64) (*PremiumServiceWithUser, *Announcement, error) {
	query := `
		SELECT ps.id, ps.user_id, ps.service_type, ps.announcement_id, ps.duration, ps.status,
		       ps.payment_screenshot, ps.created_at, ps.approved_at, ps.expires_at,
		       u.id, u.username, u.first_name, u.last_name, u.joined_at,
		       a.id, a.category, a.text
		FROM premium_services ps
		JOIN users u ON ps.user_id = u.id
		LEFT JOIN announcements a ON ps.announcement_id = a.id
		WHERE ps.id = $1`

	var sw PremiumServiceWithUser
	var annID *int64
	var annCategory, annText *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sw.ID, &sw.UserID, &sw.ServiceType, &sw.AnnouncementID, &sw.Duration, &sw.Status,
		&sw.PaymentScreenshot, &sw.CreatedAt, &sw.ApprovedAt, &sw.ExpiresAt,
		&sw.User.ID, &sw.User.Username, &sw.User.FirstName, &sw.User.LastName, &sw.User.JoinedAt,
		&annID, &annCategory, &annText,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get premium service %d with announcement: %w", id, err)
	}

	var ann *Announcement
	if annID != nil {
		ann = &Announcement{ID: *annID}
		if annCategory != nil {
			ann.Category = *annCategory
		}
		if annText != nil {
			ann.Text = *annText
		}
	}
	return &sw, ann, nil
}
