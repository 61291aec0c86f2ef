package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adilbek/goalbums/internal/album"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const imageColumns = `id, owner_id, album_id, name, description, object_key, size_bytes, content_type, status, created_at, updated_at`

// Repository provides access to image record storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new image repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new image record.
func (r *Repository) Create(ctx context.Context, img Image) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO images (id, owner_id, album_id, name, description, object_key, size_bytes, content_type, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + imageColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		img.ID,
		img.OwnerID,
		img.AlbumID,
		img.Name,
		img.Description,
		img.ObjectKey,
		img.SizeBytes,
		img.ContentType,
		img.Status,
	)

	stored, err := scanImage(row)
	if err != nil {
		return Image{}, fmt.Errorf("create image record: %w", err)
	}
	return stored, nil
}

// Get fetches a single image, treating any owner or album mismatch as absence.
func (r *Repository) Get(ctx context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT ` + imageColumns + `
FROM images
WHERE id = $1 AND owner_id = $2 AND album_id = $3;`

	img, err := scanImage(r.pool.QueryRow(ctx, query, imageID, ownerID, albumID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Image{}, ErrImageNotFound
		}
		return Image{}, fmt.Errorf("get image record: %w", err)
	}
	return img, nil
}

// List returns images in an album, optionally including pending ones.
func (r *Repository) List(ctx context.Context, ownerID, albumID uuid.UUID, includePending bool) ([]Image, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT ` + imageColumns + `
FROM images
WHERE owner_id = $1 AND album_id = $2 AND ($3 OR status = 'active')
ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query, ownerID, albumID, includePending)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image record: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}
	return images, nil
}

// UpdateMeta overwrites the mutable attributes of an image.
func (r *Repository) UpdateMeta(ctx context.Context, ownerID, albumID, imageID uuid.UUID, name string, description *string) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE images
SET name = $4, description = $5, updated_at = NOW()
WHERE id = $1 AND owner_id = $2 AND album_id = $3
RETURNING ` + imageColumns + `;`

	img, err := scanImage(r.pool.QueryRow(ctx, query, imageID, ownerID, albumID, name, description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Image{}, ErrImageNotFound
		}
		return Image{}, fmt.Errorf("update image record: %w", err)
	}
	return img, nil
}

// Activate flips a pending record to active, recording the verified object
// size. The status predicate makes concurrent confirmations settle to exactly
// one winner.
func (r *Repository) Activate(ctx context.Context, ownerID, albumID, imageID uuid.UUID, sizeBytes int64) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
UPDATE images
SET status = 'active', size_bytes = $4, updated_at = NOW()
WHERE id = $1 AND owner_id = $2 AND album_id = $3 AND status = 'pending'
RETURNING ` + imageColumns + `;`

	img, err := scanImage(r.pool.QueryRow(ctx, query, imageID, ownerID, albumID, sizeBytes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Image{}, ErrImageNotFound
		}
		return Image{}, fmt.Errorf("activate image record: %w", err)
	}
	return img, nil
}

// Delete removes a record and returns it so callers can settle accounting.
func (r *Repository) Delete(ctx context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
DELETE FROM images
WHERE id = $1 AND owner_id = $2 AND album_id = $3
RETURNING ` + imageColumns + `;`

	img, err := scanImage(r.pool.QueryRow(ctx, query, imageID, ownerID, albumID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Image{}, ErrImageNotFound
		}
		return Image{}, fmt.Errorf("delete image record: %w", err)
	}
	return img, nil
}

// ListObjectsForAlbum returns object references for album-level cleanup,
// pending records included.
func (r *Repository) ListObjectsForAlbum(ctx context.Context, ownerID, albumID uuid.UUID) ([]album.ImageObject, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT object_key, size_bytes, status = 'active'
FROM images
WHERE owner_id = $1 AND album_id = $2;`

	rows, err := r.pool.Query(ctx, query, ownerID, albumID)
	if err != nil {
		return nil, fmt.Errorf("list objects for album: %w", err)
	}
	defer rows.Close()

	var objects []album.ImageObject
	for rows.Next() {
		var obj album.ImageObject
		if err := rows.Scan(&obj.ObjectKey, &obj.SizeBytes, &obj.Active); err != nil {
			return nil, fmt.Errorf("scan object reference: %w", err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate object references: %w", err)
	}
	return objects, nil
}

// DeleteAllForAlbum removes every image record in an album.
func (r *Repository) DeleteAllForAlbum(ctx context.Context, ownerID, albumID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM images WHERE owner_id = $1 AND album_id = $2;`, ownerID, albumID); err != nil {
		return fmt.Errorf("delete album images: %w", err)
	}
	return nil
}

func scanImage(row pgx.Row) (Image, error) {
	var img Image
	err := row.Scan(
		&img.ID,
		&img.OwnerID,
		&img.AlbumID,
		&img.Name,
		&img.Description,
		&img.ObjectKey,
		&img.SizeBytes,
		&img.ContentType,
		&img.Status,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	return img, err
}
