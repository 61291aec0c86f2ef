package album

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository allows access to album persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs an album repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new album for the owner.
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (Album, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	albumID := uuid.New()

	query := `
INSERT INTO albums (id, owner_id, name, description)
VALUES ($1, $2, $3, $4)
RETURNING id, owner_id, name, description, created_at, updated_at;`

	row := r.pool.QueryRow(ctx, query, albumID, ownerID, name, description)

	var a Album
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return Album{}, ErrAlbumNameExists
		}
		return Album{}, fmt.Errorf("create album: %w", err)
	}
	return a, nil
}

// List returns all albums owned by the user with their active image counts.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]Album, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT a.id,
       a.owner_id,
       a.name,
       a.description,
       a.created_at,
       a.updated_at,
       COUNT(i.id) FILTER (WHERE i.status = 'active') AS image_count
FROM albums a
LEFT JOIN images i ON i.album_id = a.id AND i.owner_id = a.owner_id
WHERE a.owner_id = $1
GROUP BY a.id
ORDER BY a.created_at DESC;`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		var a Album
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt, &a.ImageCount); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

// Get fetches a single album ensuring ownership.
func (r *Repository) Get(ctx context.Context, ownerID, albumID uuid.UUID) (Album, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT a.id,
       a.owner_id,
       a.name,
       a.description,
       a.created_at,
       a.updated_at,
       COUNT(i.id) FILTER (WHERE i.status = 'active') AS image_count
FROM albums a
LEFT JOIN images i ON i.album_id = a.id AND i.owner_id = a.owner_id
WHERE a.id = $1 AND a.owner_id = $2
GROUP BY a.id;`

	var a Album
	err := r.pool.QueryRow(ctx, query, albumID, ownerID).Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.ImageCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Album{}, ErrAlbumNotFound
		}
		return Album{}, fmt.Errorf("get album: %w", err)
	}
	return a, nil
}

// Update overwrites the album's mutable attributes.
func (r *Repository) Update(ctx context.Context, ownerID, albumID uuid.UUID, name string, description *string) (Album, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
UPDATE albums
SET name = $3, description = $4, updated_at = NOW()
WHERE id = $1 AND owner_id = $2
RETURNING id, owner_id, name, description, created_at, updated_at;`

	var a Album
	err := r.pool.QueryRow(ctx, query, albumID, ownerID, name, description).Scan(
		&a.ID,
		&a.OwnerID,
		&a.Name,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Album{}, ErrAlbumNotFound
		}
		if isUniqueViolation(err) {
			return Album{}, ErrAlbumNameExists
		}
		return Album{}, fmt.Errorf("update album: %w", err)
	}
	return a, nil
}

// Delete removes an album owned by the user.
func (r *Repository) Delete(ctx context.Context, ownerID, albumID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM albums WHERE id = $1 AND owner_id = $2;`, albumID, ownerID)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
