package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresChannelRepository implements ChannelRepository over a pgx pool.
type PostgresChannelRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresChannelRepository creates a new required-channel repository.
func NewPostgresChannelRepository(pool *pgxpool.Pool) *PostgresChannelRepository {
	return &PostgresChannelRepository{pool: pool}
}

func (r *PostgresChannelRepository) AddRequiredChannel(ctx context.Context, channelID, channelName string) error {
	query := `
		INSERT INTO required_channels (channel_id, channel_name)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, channelID, channelName); err != nil {
		return fmt.Errorf("failed to add required channel %s: %w", channelID, err)
	}
	return nil
}

func (r *PostgresChannelRepository) RemoveRequiredChannel(ctx context.Context, channelID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM required_channels WHERE channel_id = $1`, channelID); err != nil {
		return fmt.Errorf("failed to remove required channel %s: %w", channelID, err)
	}
	return nil
}

func (r *PostgresChannelRepository) ListRequiredChannels(ctx context.Context) ([]RequiredChannel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, channel_id, COALESCE(channel_name, channel_id), added_at
		FROM required_channels
		ORDER BY added_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list required channels: %w", err)
	}
	defer rows.Close()

	var result []RequiredChannel
	for rows.Next() {
		var ch RequiredChannel
		if err := rows.Scan(&ch.ID, &ch.ChannelID, &ch.ChannelName, &ch.AddedAt); err != nil {
			return nil, err
		}
		result = append(result, ch)
	}
	return result, rows.Err()
}
