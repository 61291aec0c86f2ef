package image

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adilbek/goalbums/internal/album"
	"github.com/adilbek/goalbums/internal/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMaxImageSize = 10 * 1024 * 1024
	testPresignTTL   = 15 * time.Minute
)

type fakeRepo struct {
	images     map[uuid.UUID]Image
	createErr  error
	deleteKeys []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{images: make(map[uuid.UUID]Image)}
}

func (f *fakeRepo) Create(_ context.Context, img Image) (Image, error) {
	if f.createErr != nil {
		return Image{}, f.createErr
	}
	f.images[img.ID] = img
	return img, nil
}

func (f *fakeRepo) Get(_ context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error) {
	img, ok := f.images[imageID]
	if !ok || img.OwnerID != ownerID || img.AlbumID != albumID {
		return Image{}, ErrImageNotFound
	}
	return img, nil
}

func (f *fakeRepo) List(_ context.Context, ownerID, albumID uuid.UUID, includePending bool) ([]Image, error) {
	var out []Image
	for _, img := range f.images {
		if img.OwnerID != ownerID || img.AlbumID != albumID {
			continue
		}
		if !includePending && img.Status != StatusActive {
			continue
		}
		out = append(out, img)
	}
	return out, nil
}

func (f *fakeRepo) UpdateMeta(_ context.Context, ownerID, albumID, imageID uuid.UUID, name string, description *string) (Image, error) {
	img, ok := f.images[imageID]
	if !ok || img.OwnerID != ownerID || img.AlbumID != albumID {
		return Image{}, ErrImageNotFound
	}
	img.Name = name
	img.Description = description
	f.images[imageID] = img
	return img, nil
}

func (f *fakeRepo) Activate(_ context.Context, ownerID, albumID, imageID uuid.UUID, sizeBytes int64) (Image, error) {
	img, ok := f.images[imageID]
	if !ok || img.OwnerID != ownerID || img.AlbumID != albumID || img.Status != StatusPending {
		return Image{}, ErrImageNotFound
	}
	img.Status = StatusActive
	img.SizeBytes = sizeBytes
	f.images[imageID] = img
	return img, nil
}

func (f *fakeRepo) Delete(_ context.Context, ownerID, albumID, imageID uuid.UUID) (Image, error) {
	img, ok := f.images[imageID]
	if !ok || img.OwnerID != ownerID || img.AlbumID != albumID {
		return Image{}, ErrImageNotFound
	}
	delete(f.images, imageID)
	f.deleteKeys = append(f.deleteKeys, imageID)
	return img, nil
}

type fakeAlbums struct {
	albums map[uuid.UUID]album.Album
}

func (f *fakeAlbums) Get(_ context.Context, ownerID, albumID uuid.UUID) (album.Album, error) {
	a, ok := f.albums[albumID]
	if !ok || a.OwnerID != ownerID {
		return album.Album{}, album.ErrAlbumNotFound
	}
	return a, nil
}

type fakeLedger struct {
	allow      bool
	canAddErr  error
	added      []int64
	subtracted []int64
}

func (f *fakeLedger) CanAdd(_ context.Context, _ uuid.UUID, _ int64) (bool, error) {
	return f.allow, f.canAddErr
}

func (f *fakeLedger) AddUsage(_ context.Context, _ uuid.UUID, bytes int64) error {
	f.added = append(f.added, bytes)
	return nil
}

func (f *fakeLedger) SubtractUsage(_ context.Context, _ uuid.UUID, bytes int64) error {
	f.subtracted = append(f.subtracted, bytes)
	return nil
}

type fakeObjects struct {
	sizes      map[string]int64
	presignErr error
	putCalls   []string
	getCalls   []string
	removed    []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{sizes: make(map[string]int64)}
}

func (f *fakeObjects) Head(_ context.Context, key string) (int64, error) {
	size, ok := f.sizes[key]
	if !ok {
		return 0, ErrObjectMissing
	}
	return size, nil
}

func (f *fakeObjects) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.sizes, key)
	return nil
}

func (f *fakeObjects) PresignPut(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.putCalls = append(f.putCalls, key)
	return "https://storage.test/put/" + key + "?ct=" + contentType, nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.getCalls = append(f.getCalls, key)
	return "https://storage.test/get/" + key, nil
}

type fixture struct {
	service *Service
	repo    *fakeRepo
	albums  *fakeAlbums
	ledger  *fakeLedger
	objects *fakeObjects
	ownerID uuid.UUID
	albumID uuid.UUID
}

func newFixture() *fixture {
	ownerID := uuid.New()
	albumID := uuid.New()

	repo := newFakeRepo()
	albums := &fakeAlbums{albums: map[uuid.UUID]album.Album{
		albumID: {ID: albumID, OwnerID: ownerID, Name: "vacation"},
	}}
	ledger := &fakeLedger{allow: true}
	objects := newFakeObjects()

	return &fixture{
		service: NewService(repo, albums, ledger, objects, testMaxImageSize, testPresignTTL),
		repo:    repo,
		albums:  albums,
		ledger:  ledger,
		objects: objects,
		ownerID: ownerID,
		albumID: albumID,
	}
}

func validUpload() UploadInput {
	return UploadInput{
		Name:        "beach.jpg",
		SizeBytes:   2048,
		ContentType: "image/jpeg",
	}
}

func TestGenerateUploadURLCreatesPendingRecord(t *testing.T) {
	fx := newFixture()

	intent, err := fx.service.GenerateUploadURL(context.Background(), fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	assert.NotEmpty(t, intent.UploadURL)
	assert.Equal(t, int64(testPresignTTL.Seconds()), intent.ExpiresIn)

	stored, ok := fx.repo.images[intent.ImageID]
	require.True(t, ok, "pending record must exist")
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, int64(2048), stored.SizeBytes)
	assert.Equal(t, "image/jpeg", stored.ContentType)

	// Nothing is charged until the upload is confirmed.
	assert.Empty(t, fx.ledger.added)
}

func TestGenerateUploadURLNormalizesContentType(t *testing.T) {
	fx := newFixture()

	input := validUpload()
	input.ContentType = " IMAGE/PNG "

	intent, err := fx.service.GenerateUploadURL(context.Background(), fx.ownerID, fx.albumID, input)
	require.NoError(t, err)
	assert.Equal(t, "image/png", fx.repo.images[intent.ImageID].ContentType)
}

func TestGenerateUploadURLRejectsContentType(t *testing.T) {
	fx := newFixture()

	input := validUpload()
	input.ContentType = "application/pdf"

	_, err := fx.service.GenerateUploadURL(context.Background(), fx.ownerID, fx.albumID, input)
	assert.ErrorIs(t, err, ErrInvalidContentType)
	assert.Empty(t, fx.repo.images)
}

func TestGenerateUploadURLRejectsBadSizes(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	input := validUpload()
	input.SizeBytes = 0
	_, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, input)
	assert.ErrorIs(t, err, ErrInvalidSize)

	input.SizeBytes = testMaxImageSize + 1
	_, err = fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, input)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestGenerateUploadURLRejectsInvalidName(t *testing.T) {
	fx := newFixture()

	input := validUpload()
	input.Name = "beach/../../etc"

	_, err := fx.service.GenerateUploadURL(context.Background(), fx.ownerID, fx.albumID, input)
	assert.ErrorIs(t, err, validation.ErrInvalidName)
}

func TestGenerateUploadURLQuotaRejection(t *testing.T) {
	fx := newFixture()
	fx.ledger.allow = false

	_, err := fx.service.GenerateUploadURL(context.Background(), fx.ownerID, fx.albumID, validUpload())
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Rejection happens before any record is written.
	assert.Empty(t, fx.repo.images)
	assert.Empty(t, fx.objects.putCalls)
}

func TestGenerateUploadURLForeignAlbum(t *testing.T) {
	fx := newFixture()

	_, err := fx.service.GenerateUploadURL(context.Background(), uuid.New(), fx.albumID, validUpload())
	assert.ErrorIs(t, err, ErrAlbumMismatch)
}

func TestGenerateUploadURLPresignFailureRollsBack(t *testing.T) {
	fx := newFixture()
	fx.objects.presignErr = errors.New("storage unreachable")

	_, err := fx.service.GenerateUploadURL(context.Background(), fx.ownerID, fx.albumID, validUpload())
	require.Error(t, err)

	// The pending record written before presigning must be compensated away.
	assert.Empty(t, fx.repo.images)
	assert.Len(t, fx.repo.deleteKeys, 1)
}

func TestConfirmUploadUsesObservedSize(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	// The client declared 2048 bytes but actually uploaded 5000.
	fx.objects.sizes[fx.repo.images[intent.ImageID].ObjectKey] = 5000

	confirmed, err := fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, confirmed.Status)
	assert.Equal(t, int64(5000), confirmed.SizeBytes)
	assert.Equal(t, []int64{5000}, fx.ledger.added)
}

func TestConfirmUploadMissingObjectStaysPending(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	_, err = fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	assert.ErrorIs(t, err, ErrUploadIncomplete)

	assert.Equal(t, StatusPending, fx.repo.images[intent.ImageID].Status)
	assert.Empty(t, fx.ledger.added)
}

func TestConfirmUploadZeroSizeObjectStaysPending(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	fx.objects.sizes[fx.repo.images[intent.ImageID].ObjectKey] = 0

	_, err = fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	assert.ErrorIs(t, err, ErrUploadIncomplete)
	assert.Equal(t, StatusPending, fx.repo.images[intent.ImageID].Status)
}

func TestConfirmUploadTwiceChargesOnce(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)
	fx.objects.sizes[fx.repo.images[intent.ImageID].ObjectKey] = 4096

	_, err = fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	require.NoError(t, err)

	_, err = fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	assert.ErrorIs(t, err, ErrImageNotFound)

	assert.Equal(t, []int64{4096}, fx.ledger.added)
}

func TestGenerateDownloadURLActiveOnly(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	// Pending images look absent to readers.
	_, err = fx.service.GenerateDownloadURL(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	assert.ErrorIs(t, err, ErrImageNotFound)

	fx.objects.sizes[fx.repo.images[intent.ImageID].ObjectKey] = 2048
	_, err = fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	require.NoError(t, err)

	download, err := fx.service.GenerateDownloadURL(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	require.NoError(t, err)
	assert.NotEmpty(t, download.DownloadURL)
	assert.Equal(t, "image/jpeg", download.ContentType)
	assert.Equal(t, int64(2048), download.SizeBytes)
}

func TestListExcludesPendingByDefault(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	input := validUpload()
	input.Name = "sunset.png"
	input.ContentType = "image/png"
	active, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, input)
	require.NoError(t, err)

	fx.objects.sizes[fx.repo.images[active.ImageID].ObjectKey] = 1024
	_, err = fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, active.ImageID)
	require.NoError(t, err)

	visible, err := fx.service.List(ctx, fx.ownerID, fx.albumID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, active.ImageID, visible[0].ID)

	all, err := fx.service.List(ctx, fx.ownerID, fx.albumID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeletePendingReleasesNoQuota(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	key := fx.repo.images[intent.ImageID].ObjectKey
	require.NoError(t, fx.service.Delete(ctx, fx.ownerID, fx.albumID, intent.ImageID))

	assert.Contains(t, fx.objects.removed, key)
	assert.Empty(t, fx.ledger.subtracted)
}

func TestDeleteActiveReleasesQuota(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, validUpload())
	require.NoError(t, err)

	fx.objects.sizes[fx.repo.images[intent.ImageID].ObjectKey] = 3000
	_, err = fx.service.ConfirmUpload(ctx, fx.ownerID, fx.albumID, intent.ImageID)
	require.NoError(t, err)

	require.NoError(t, fx.service.Delete(ctx, fx.ownerID, fx.albumID, intent.ImageID))
	assert.Equal(t, []int64{3000}, fx.ledger.subtracted)
}

func TestUpdateKeepsAbsentFields(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	input := validUpload()
	desc := "first day"
	input.Description = &desc

	intent, err := fx.service.GenerateUploadURL(ctx, fx.ownerID, fx.albumID, input)
	require.NoError(t, err)

	newName := "beach-day-one.jpg"
	updated, err := fx.service.Update(ctx, fx.ownerID, fx.albumID, intent.ImageID, &newName, nil)
	require.NoError(t, err)

	assert.Equal(t, "beach-day-one.jpg", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "first day", *updated.Description)
}
