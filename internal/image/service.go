package image

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adilbek/goalbums/internal/album"
	"github.com/adilbek/goalbums/internal/validation"
	"github.com/google/uuid"
)

// Content types a client may declare for an upload.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

type imageStore interface {
	Create(ctx context.Context, img Image) (Image, error)
	Get(ctx context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error)
	List(ctx context.Context, ownerID, albumID uuid.UUID, includePending bool) ([]Image, error)
	UpdateMeta(ctx context.Context, ownerID, albumID, imageID uuid.UUID, name string, description *string) (Image, error)
	Activate(ctx context.Context, ownerID, albumID, imageID uuid.UUID, sizeBytes int64) (Image, error)
	Delete(ctx context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error)
}

type albumDirectory interface {
	Get(ctx context.Context, ownerID, albumID uuid.UUID) (album.Album, error)
}

type quotaLedger interface {
	CanAdd(ctx context.Context, ownerID uuid.UUID, size int64) (bool, error)
	AddUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error
	SubtractUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error
}

type objectStore interface {
	Head(ctx context.Context, key string) (int64, error)
	Remove(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service drives images through the pending/active lifecycle, keeping the
// record store, the object store, and the quota ledger consistent with each
// other.
type Service struct {
	repo         imageStore
	albums       albumDirectory
	ledger       quotaLedger
	objects      objectStore
	maxImageSize int64
	presignTTL   time.Duration
}

// NewService constructs an image service.
func NewService(repo imageStore, albums albumDirectory, ledger quotaLedger, objects objectStore, maxImageSize int64, presignTTL time.Duration) *Service {
	return &Service{
		repo:         repo,
		albums:       albums,
		ledger:       ledger,
		objects:      objects,
		maxImageSize: maxImageSize,
		presignTTL:   presignTTL,
	}
}

// UploadInput carries the client's declaration for a new upload.
type UploadInput struct {
	Name        string
	Description *string
	SizeBytes   int64
	ContentType string
}

// GenerateUploadURL validates the declaration, admits it against quota,
// writes a pending record, and issues a presigned PUT URL. If URL issuance
// fails the pending record is rolled back; no quota is consumed at this stage.
func (s *Service) GenerateUploadURL(ctx context.Context, ownerID, albumID uuid.UUID, input UploadInput) (UploadIntent, error) {
	name, err := validation.Name(input.Name)
	if err != nil {
		return UploadIntent{}, err
	}
	description := validation.Description(input.Description)

	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if _, ok := allowedContentTypes[contentType]; !ok {
		return UploadIntent{}, ErrInvalidContentType
	}

	if input.SizeBytes <= 0 {
		return UploadIntent{}, ErrInvalidSize
	}
	if input.SizeBytes > s.maxImageSize {
		return UploadIntent{}, ErrImageTooLarge
	}

	if _, err := s.albums.Get(ctx, ownerID, albumID); err != nil {
		return UploadIntent{}, translateAlbumError(err)
	}

	ok, err := s.ledger.CanAdd(ctx, ownerID, input.SizeBytes)
	if err != nil {
		return UploadIntent{}, fmt.Errorf("quota admission: %w", err)
	}
	if !ok {
		return UploadIntent{}, ErrQuotaExceeded
	}

	imageID := uuid.New()
	objectKey := fmt.Sprintf("%s/%s/%s", ownerID, albumID, imageID)

	stored, err := s.repo.Create(ctx, Image{
		ID:          imageID,
		OwnerID:     ownerID,
		AlbumID:     albumID,
		Name:        name,
		Description: description,
		ObjectKey:   objectKey,
		SizeBytes:   input.SizeBytes,
		ContentType: contentType,
		Status:      StatusPending,
	})
	if err != nil {
		return UploadIntent{}, err
	}

	uploadURL, err := s.objects.PresignPut(ctx, objectKey, contentType, s.presignTTL)
	if err != nil {
		// No cross-store transaction exists; compensate by deleting the
		// pending record we just wrote.
		_, _ = s.repo.Delete(ctx, ownerID, albumID, stored.ID)
		return UploadIntent{}, fmt.Errorf("presign upload: %w", err)
	}

	return UploadIntent{
		UploadURL: uploadURL,
		ImageID:   stored.ID,
		ExpiresIn: int64(s.presignTTL.Seconds()),
	}, nil
}

// ConfirmUpload verifies the object landed and flips the record to active.
// Quota is charged with the observed object size, and only after both the
// object's existence and the status flip are certain.
func (s *Service) ConfirmUpload(ctx context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error) {
	img, err := s.repo.Get(ctx, ownerID, albumID, imageID)
	if err != nil {
		return Image{}, err
	}
	if img.Status != StatusPending {
		return Image{}, ErrImageNotFound
	}

	actualSize, err := s.objects.Head(ctx, img.ObjectKey)
	if err != nil {
		if errors.Is(err, ErrObjectMissing) {
			return Image{}, ErrUploadIncomplete
		}
		return Image{}, fmt.Errorf("verify object: %w", err)
	}
	if actualSize == 0 {
		return Image{}, ErrUploadIncomplete
	}

	confirmed, err := s.repo.Activate(ctx, ownerID, albumID, imageID, actualSize)
	if err != nil {
		return Image{}, err
	}

	if err := s.ledger.AddUsage(ctx, ownerID, actualSize); err != nil {
		return Image{}, fmt.Errorf("record usage: %w", err)
	}

	return confirmed, nil
}

// GenerateDownloadURL issues a presigned GET URL for an active image.
// Pending images are indistinguishable from absent ones.
func (s *Service) GenerateDownloadURL(ctx context.Context, ownerID, albumID, imageID uuid.UUID) (DownloadIntent, error) {
	img, err := s.repo.Get(ctx, ownerID, albumID, imageID)
	if err != nil {
		return DownloadIntent{}, err
	}
	if img.Status != StatusActive {
		return DownloadIntent{}, ErrImageNotFound
	}

	downloadURL, err := s.objects.PresignGet(ctx, img.ObjectKey, s.presignTTL)
	if err != nil {
		return DownloadIntent{}, fmt.Errorf("presign download: %w", err)
	}

	return DownloadIntent{
		DownloadURL: downloadURL,
		ExpiresIn:   int64(s.presignTTL.Seconds()),
		ContentType: img.ContentType,
		SizeBytes:   img.SizeBytes,
	}, nil
}

// Get returns a single image owned by the user.
func (s *Service) Get(ctx context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error) {
	return s.repo.Get(ctx, ownerID, albumID, imageID)
}

// List returns images in an album. Pending records are excluded unless asked
// for; cleanup paths include them so orphaned objects get removed too.
func (s *Service) List(ctx context.Context, ownerID, albumID uuid.UUID, includePending bool) ([]Image, error) {
	if _, err := s.albums.Get(ctx, ownerID, albumID); err != nil {
		return nil, translateAlbumError(err)
	}
	return s.repo.List(ctx, ownerID, albumID, includePending)
}

// Update changes name and/or description. Absent fields keep their values.
func (s *Service) Update(ctx context.Context, ownerID, albumID, imageID uuid.UUID, name *string, description *string) (Image, error) {
	existing, err := s.repo.Get(ctx, ownerID, albumID, imageID)
	if err != nil {
		return Image{}, err
	}

	newName := existing.Name
	if name != nil {
		newName, err = validation.Name(*name)
		if err != nil {
			return Image{}, err
		}
	}

	newDescription := existing.Description
	if description != nil {
		newDescription = validation.Description(description)
	}

	return s.repo.UpdateMeta(ctx, ownerID, albumID, imageID, newName, newDescription)
}

// Delete removes the record, then the object best-effort. Only active images
// release quota; pending ones were never counted.
func (s *Service) Delete(ctx context.Context, ownerID, albumID, imageID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, ownerID, albumID, imageID)
	if err != nil {
		return err
	}

	// A failed or already-cleaned object must not block record deletion.
	_ = s.objects.Remove(ctx, deleted.ObjectKey)

	if deleted.Status == StatusActive && deleted.SizeBytes > 0 {
		if err := s.ledger.SubtractUsage(ctx, ownerID, deleted.SizeBytes); err != nil {
			return fmt.Errorf("release usage: %w", err)
		}
	}
	return nil
}

func translateAlbumError(err error) error {
	if errors.Is(err, album.ErrAlbumNotFound) {
		return ErrAlbumMismatch
	}
	return err
}
