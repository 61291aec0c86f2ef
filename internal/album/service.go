package album

import (
	"context"
	"fmt"

	"github.com/adilbek/goalbums/internal/validation"
	"github.com/google/uuid"
)

// ImageIndex defines the contract used to inspect and clear images belonging
// to an album during cascade deletion.
type ImageIndex interface {
	ListObjectsForAlbum(ctx context.Context, ownerID, albumID uuid.UUID) ([]ImageObject, error)
	DeleteAllForAlbum(ctx context.Context, ownerID, albumID uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (Album, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]Album, error)
	Get(ctx context.Context, ownerID, albumID uuid.UUID) (Album, error)
	Update(ctx context.Context, ownerID, albumID uuid.UUID, name string, description *string) (Album, error)
	Delete(ctx context.Context, ownerID, albumID uuid.UUID) error
}

type objectStore interface {
	Remove(ctx context.Context, key string) error
}

type quotaLedger interface {
	SubtractUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error
	AddAlbums(ctx context.Context, ownerID uuid.UUID, delta int64) error
}

// Service orchestrates album operations.
type Service struct {
	repo    repository
	images  ImageIndex
	objects objectStore
	ledger  quotaLedger
}

// NewService constructs an album service.
func NewService(repo repository, images ImageIndex, objects objectStore, ledger quotaLedger) *Service {
	return &Service{
		repo:    repo,
		images:  images,
		objects: objects,
		ledger:  ledger,
	}
}

// CreateAlbum creates a new album for the owner.
func (s *Service) CreateAlbum(ctx context.Context, ownerID uuid.UUID, name string, description *string) (Album, error) {
	validName, err := validation.Name(name)
	if err != nil {
		return Album{}, err
	}

	created, err := s.repo.Create(ctx, ownerID, validName, validation.Description(description))
	if err != nil {
		return Album{}, err
	}

	// The album counter is advisory accounting, not a gate.
	_ = s.ledger.AddAlbums(ctx, ownerID, 1)

	return created, nil
}

// ListAlbums returns the user's albums.
func (s *Service) ListAlbums(ctx context.Context, ownerID uuid.UUID) ([]Album, error) {
	return s.repo.List(ctx, ownerID)
}

// GetAlbum returns an album ensuring ownership.
func (s *Service) GetAlbum(ctx context.Context, ownerID, albumID uuid.UUID) (Album, error) {
	return s.repo.Get(ctx, ownerID, albumID)
}

// UpdateAlbum changes name and/or description. Absent fields keep their values.
func (s *Service) UpdateAlbum(ctx context.Context, ownerID, albumID uuid.UUID, name *string, description *string) (Album, error) {
	existing, err := s.repo.Get(ctx, ownerID, albumID)
	if err != nil {
		return Album{}, err
	}

	newName := existing.Name
	if name != nil {
		newName, err = validation.Name(*name)
		if err != nil {
			return Album{}, err
		}
	}

	newDescription := existing.Description
	if description != nil {
		newDescription = validation.Description(description)
	}

	return s.repo.Update(ctx, ownerID, albumID, newName, newDescription)
}

// DeleteAlbum removes an album with everything in it: objects first
// (best-effort), then image records, then quota settlement, and the album
// record strictly last so a partial failure leaves a retriable album.
func (s *Service) DeleteAlbum(ctx context.Context, ownerID, albumID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, ownerID, albumID); err != nil {
		return err
	}

	objects, err := s.images.ListObjectsForAlbum(ctx, ownerID, albumID)
	if err != nil {
		return fmt.Errorf("list album objects: %w", err)
	}

	var activeBytes int64
	for _, obj := range objects {
		_ = s.objects.Remove(ctx, obj.ObjectKey)
		if obj.Active {
			activeBytes += obj.SizeBytes
		}
	}

	if err := s.images.DeleteAllForAlbum(ctx, ownerID, albumID); err != nil {
		return err
	}

	// Pending images were never counted, so only active bytes are released.
	if activeBytes > 0 {
		if err := s.ledger.SubtractUsage(ctx, ownerID, activeBytes); err != nil {
			return fmt.Errorf("release usage: %w", err)
		}
	}
	_ = s.ledger.AddAlbums(ctx, ownerID, -1)

	return s.repo.Delete(ctx, ownerID, albumID)
}
