package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an entity referenced by a callback no longer
// exists (stale moderation card, double click).
var ErrNotFound = errors.New("not found")

// PostgresAnnouncementRepository implements AnnouncementRepository over a
// pgx pool.
type PostgresAnnouncementRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAnnouncementRepository creates a new announcement repository.
func NewPostgresAnnouncementRepository(pool *pgxpool.Pool) *PostgresAnnouncementRepository {
	return &PostgresAnnouncementRepository{pool: pool}
}

// marshalEntities encodes rich-text spans for storage. An empty slice is
// stored as an empty JSON array so the column stays queryable.
func marshalEntities(spans []EntitySpan) []byte {
	if spans == nil {
		spans = []EntitySpan{}
	}
	data, err := json.Marshal(spans)
	if err != nil {
		// Spans are plain structs, this cannot realistically fail; degrade
		// to no formatting rather than blocking the submission.
		log.Printf("Error marshaling entity spans: %v", err)
		return []byte("[]")
	}
	return data
}

// unmarshalEntities decodes stored spans. Parse failures are logged and
// treated as an empty span list: formatting degrades, the post still goes out.
func unmarshalEntities(data []byte) []EntitySpan {
	if len(data) == 0 {
		return nil
	}
	var spans []EntitySpan
	if err := json.Unmarshal(data, &spans); err != nil {
		log.Printf("Error parsing stored entity spans: %v", err)
		return nil
	}
	return spans
}

func (r *PostgresAnnouncementRepository) CreateAnnouncement(ctx context.Context, a *Announcement) (int64, error) {
	query := `
		INSERT INTO announcements (user_id, category, text, photo, entities, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		a.UserID, a.Category, a.Text, a.Photo, marshalEntities(a.Entities), a.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create announcement: %w", err)
	}
	return id, nil
}

func (r *PostgresAnnouncementRepository) GetAnnouncementByID(ctx context.Context, id int64) (*Announcement, error) {
	query := `
		SELECT id, user_id, category, text, photo, entities, status, created_at, published_at
		FROM announcements
		WHERE id = $1`

	var a Announcement
	var entities []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.Category, &a.Text, &a.Photo, &entities, &a.Status, &a.CreatedAt, &a.PublishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement %d: %w", id, err)
	}
	a.Entities = unmarshalEntities(entities)
	return &a, nil
}

func (r *PostgresAnnouncementRepository) GetAnnouncementWithUser(ctx context.Context, id int64) (*AnnouncementWithUser, error) {
	query := `
		SELECT a.id, a.user_id, a.category, a.text, a.photo, a.entities, a.status, a.created_at, a.published_at,
		       u.id, u.username, u.first_name, u.last_name, u.joined_at
		FROM announcements a
		JOIN users u ON a.user_id = u.id
		WHERE a.id = $1`

	var aw AnnouncementWithUser
	var entities []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&aw.ID, &aw.UserID, &aw.Category, &aw.Text, &aw.Photo, &entities, &aw.Status, &aw.CreatedAt, &aw.PublishedAt,
		&aw.User.ID, &aw.User.Username, &aw.User.FirstName, &aw.User.LastName, &aw.User.JoinedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement %d with user: %w", id, err)
	}
	aw.Entities = unmarshalEntities(entities)
	return &aw, nil
}

func (r *PostgresAnnouncementRepository) ApproveAnnouncement(ctx context.Context, id int64, publishedAt time.Time) error {
	query := `
		UPDATE announcements
		SET status = $1, published_at = $2
		WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, StatusApproved, publishedAt, id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to approve announcement %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAnnouncementRepository) RejectAnnouncement(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE announcements SET status = $1 WHERE id = $2 AND status = $3`,
		StatusRejected, id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to reject announcement %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresAnnouncementRepository) ListPendingAnnouncements(ctx context.Context, limit int) ([]AnnouncementWithUser, error) {
	query := `
		SELECT a.id, a.user_id, a.category, a.text, a.photo, a.entities, a.status, a.created_at, a.published_at,
		       u.id, u.username, u.first_name, u.last_name, u.joined_at
		FROM announcements a
		JOIN users u ON a.user_id = u.id
		WHERE a.status = $1
		ORDER BY a.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending announcements: %w", err)
	}
	defer rows.Close()

	var result []AnnouncementWithUser
	for rows.Next() {
		var aw AnnouncementWithUser
		var entities []byte
		if err := rows.Scan(
			&aw.ID, &aw.UserID, &aw.Category, &aw.Text, &aw.Photo, &entities, &aw.Status, &aw.CreatedAt, &aw.PublishedAt,
			&aw.User.ID, &aw.User.Username, &aw.User.FirstName, &aw.User.LastName, &aw.User.JoinedAt,
		); err != nil {
			return nil, err
		}
		aw.Entities = unmarshalEntities(entities)
		result = append(result, aw)
	}
	return result, rows.Err()
}

func (r *PostgresAnnouncementRepository) ListApprovedByUser(ctx context.Context, userID int64, limit int) ([]Announcement, error) {
	query := `
		SELECT id, user_id, category, text, photo, entities, status, created_at, published_at
		FROM announcements
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, StatusApproved, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved announcements for user %d: %w", userID, err)
	}
	defer rows.Close()

	var result []Announcement
	for rows.Next() {
		var a Announcement
		var entities []byte
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Category, &a.Text, &a.Photo, &entities, &a.Status, &a.CreatedAt, &a.PublishedAt,
		); err != nil {
			return nil, err
		}
		a.Entities = unmarshalEntities(entities)
		result = append(result, a)
	}
	return result, rows.Err()
}
