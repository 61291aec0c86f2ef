package quota

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGetCreatesRecordLazily(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, 1000)

	ownerID := uuid.New()
	q, err := service.Get(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if q.UsedBytes != 0 || q.AlbumCount != 0 {
		t.Fatalf("expected zeroed quota, got %+v", q)
	}
	if _, ok := store.records[ownerID]; !ok {
		t.Fatalf("expected record to be created on first access")
	}
}

func TestCanAddBoundary(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, 1000)

	ownerID := uuid.New()

	ok, err := service.CanAdd(context.Background(), ownerID, 1000)
	if err != nil {
		t.Fatalf("CanAdd returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected CanAdd(cap) to be true for fresh record")
	}

	ok, err = service.CanAdd(context.Background(), ownerID, 1001)
	if err != nil {
		t.Fatalf("CanAdd returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected CanAdd(cap+1) to be false")
	}
}

func TestCanAddAccountsForExistingUsage(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, 1000)

	ownerID := uuid.New()
	if err := service.AddUsage(context.Background(), ownerID, 800); err != nil {
		t.Fatalf("AddUsage returned error: %v", err)
	}

	ok, _ := service.CanAdd(context.Background(), ownerID, 200)
	if !ok {
		t.Fatalf("expected 800+200 <= 1000 to be admitted")
	}

	ok, _ = service.CanAdd(context.Background(), ownerID, 300)
	if ok {
		t.Fatalf("expected 800+300 > 1000 to be rejected")
	}
}

func TestSubtractUsageFloorsAtZero(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, 1000)

	ownerID := uuid.New()
	if err := service.AddUsage(context.Background(), ownerID, 100); err != nil {
		t.Fatalf("AddUsage returned error: %v", err)
	}
	if err := service.SubtractUsage(context.Background(), ownerID, 500); err != nil {
		t.Fatalf("SubtractUsage returned error: %v", err)
	}

	q, _ := service.Get(context.Background(), ownerID)
	if q.UsedBytes != 0 {
		t.Fatalf("expected usage floored at 0, got %d", q.UsedBytes)
	}
}

func TestAddAlbumsNeverGoesNegative(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, 1000)

	ownerID := uuid.New()
	if err := service.AddAlbums(context.Background(), ownerID, -3); err != nil {
		t.Fatalf("AddAlbums returned error: %v", err)
	}

	q, _ := service.Get(context.Background(), ownerID)
	if q.AlbumCount != 0 {
		t.Fatalf("expected album count floored at 0, got %d", q.AlbumCount)
	}
}

// --- fakes ---

type fakeStore struct {
	records map[uuid.UUID]*Quota
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]*Quota)}
}

func (f *fakeStore) ensure(ownerID uuid.UUID) *Quota {
	q, ok := f.records[ownerID]
	if !ok {
		now := time.Now()
		q = &Quota{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
		f.records[ownerID] = q
	}
	return q
}

func (f *fakeStore) Get(ctx context.Context, ownerID uuid.UUID) (Quota, error) {
	return *f.ensure(ownerID), nil
}

func (f *fakeStore) AddUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error {
	q := f.ensure(ownerID)
	q.UsedBytes += bytes
	return nil
}

func (f *fakeStore) SubtractUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error {
	q := f.ensure(ownerID)
	q.UsedBytes -= bytes
	if q.UsedBytes < 0 {
		q.UsedBytes = 0
	}
	return nil
}

func (f *fakeStore) AddAlbums(ctx context.Context, ownerID uuid.UUID, delta int64) error {
	q := f.ensure(ownerID)
	q.AlbumCount += delta
	if q.AlbumCount < 0 {
		q.AlbumCount = 0
	}
	return nil
}
