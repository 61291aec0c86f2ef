package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository persists per-owner quota records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a quota repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the owner's quota record, creating an empty one on first access.
func (r *Repository) Get(ctx context.Context, ownerID uuid.UUID) (Quota, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `
INSERT INTO quotas (owner_id, used_bytes, album_count)
VALUES ($1, 0, 0)
ON CONFLICT (owner_id) DO NOTHING;`, ownerID); err != nil {
		return Quota{}, fmt.Errorf("ensure quota row: %w", err)
	}

	query := `
SELECT owner_id, used_bytes, album_count, created_at, updated_at
FROM quotas
WHERE owner_id = $1;`

	var q Quota
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&q.OwnerID,
		&q.UsedBytes,
		&q.AlbumCount,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return Quota{}, fmt.Errorf("get quota: %w", err)
	}
	return q, nil
}

// AddUsage applies an atomic additive increment to the owner's byte count.
func (r *Repository) AddUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO quotas (owner_id, used_bytes, album_count, updated_at)
VALUES ($1, GREATEST($2, 0), 0, NOW())
ON CONFLICT (owner_id)
DO UPDATE SET
    used_bytes = quotas.used_bytes + $2,
    updated_at = NOW();`

	if _, err := r.pool.Exec(ctx, query, ownerID, bytes); err != nil {
		return fmt.Errorf("add usage: %w", err)
	}
	return nil
}

// SubtractUsage decrements the owner's byte count, flooring at zero in a
// single atomic statement.
func (r *Repository) SubtractUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO quotas (owner_id, used_bytes, album_count, updated_at)
VALUES ($1, 0, 0, NOW())
ON CONFLICT (owner_id)
DO UPDATE SET
    used_bytes = GREATEST(quotas.used_bytes - $2, 0),
    updated_at = NOW();`

	if _, err := r.pool.Exec(ctx, query, ownerID, bytes); err != nil {
		return fmt.Errorf("subtract usage: %w", err)
	}
	return nil
}

// AddAlbums adjusts the owner's album counter, flooring at zero.
func (r *Repository) AddAlbums(ctx context.Context, ownerID uuid.UUID, delta int64) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO quotas (owner_id, used_bytes, album_count, updated_at)
VALUES ($1, 0, GREATEST($2, 0), NOW())
ON CONFLICT (owner_id)
DO UPDATE SET
    album_count = GREATEST(quotas.album_count + $2, 0),
    updated_at  = NOW();`

	if _, err := r.pool.Exec(ctx, query, ownerID, delta); err != nil {
		return fmt.Errorf("update album count: %w", err)
	}
	return nil
}
