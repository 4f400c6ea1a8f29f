package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresShopRepository implements ShopRepository over a pgx pool.
type PostgresShopRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresShopRepository creates a new shop-order repository.
func NewPostgresShopRepository(pool *pgxpool.Pool) *PostgresShopRepository {
	return &PostgresShopRepository{pool: pool}
}

func (r *PostgresShopRepository) CreateShopOrder(ctx context.Context, o *ShopOrder) (int64, error) {
	query := `
		INSERT INTO shop_orders (user_id, product_type, amount, price, game_id, payment_screenshot, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		o.UserID, o.ProductType, o.Amount, o.Price, o.GameID, o.PaymentScreenshot, o.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create shop order: %w", err)
	}
	return id, nil
}

func (r *PostgresShopRepository) GetShopOrderByID(ctx context.Context, id int64) (*ShopOrder, error) {
	query := `
		SELECT id, user_id, product_type, amount, price, game_id, payment_screenshot,
		       status, created_at, completed_at
		FROM shop_orders
		WHERE id = $1`

	var o ShopOrder
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.ProductType, &o.Amount, &o.Price, &o.GameID, &o.PaymentScreenshot,
		&o.Status, &o.CreatedAt, &o.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop order %d: %w", id, err)
	}
	return &o, nil
}

func (r *PostgresShopRepository) GetShopOrderWithUser(ctx context.Context, id int64) (*ShopOrderWithUser, error) {
	query := `
		SELECT so.id, so.user_id, so.product_type, so.amount, so.price, so.game_id, so.payment_screenshot,
		       so.status, so.created_at, so.completed_at,
		       u.id, u.username, u.first_name, u.last_name, u.joined_at
		FROM shop_orders so
		JOIN users u ON so.user_id = u.id
		WHERE so.id = $1`

	var ow ShopOrderWithUser
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ow.ID, &ow.UserID, &ow.ProductType, &ow.Amount, &ow.Price, &ow.GameID, &ow.PaymentScreenshot,
		&ow.Status, &ow.CreatedAt, &ow.CompletedAt,
		&ow.User.ID, &ow.User.Username, &ow.User.FirstName, &ow.User.LastName, &ow.User.JoinedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop order %d with user: %w", id, err)
	}
	return &ow, nil
}

func (r *PostgresShopRepository) CompleteShopOrder(ctx context.Context, id int64, completedAt time.Time) error {
	query := `
		UPDATE shop_orders
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, StatusCompleted, completedAt, id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to complete shop order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresShopRepository) RejectShopOrder(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shop_orders SET status = $1 WHERE id = $2 AND status = $3`,
		StatusRejected, id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to reject shop order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresShopRepository) ListPendingShopOrders(ctx context.Context, limit int) ([]ShopOrderWithUser, error) {
	query := `
		SELECT so.id, so.user_id, so.product_type, so.amount, so.price, so.game_id, so.payment_screenshot,
		       so.status, so.created_at, so.completed_at,
		       u.id, u.username, u.first_name, u.last_name, u.joined_at
		FROM shop_orders so
		JOIN users u ON so.user_id = u.id
		WHERE so.status = $1
		ORDER BY so.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending shop orders: %w", err)
	}
	defer rows.Close()

	var result []ShopOrderWithUser
	for rows.Next() {
		var ow ShopOrderWithUser
		if err := rows.Scan(
			&ow.ID, &ow.UserID, &ow.ProductType, &ow.Amount, &ow.Price, &ow.GameID, &ow.PaymentScreenshot,
			&ow.Status, &ow.CreatedAt, &ow.CompletedAt,
			&ow.User.ID, &ow.User.Username, &ow.User.FirstName, &ow.User.LastName, &ow.User.JoinedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ow)
	}
	return result, rows.Err()
}
