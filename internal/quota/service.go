package quota

import (
	"context"

	"github.com/google/uuid"
)

type ledgerStore interface {
	Get(ctx context.Context, ownerID uuid.UUID) (Quota, error)
	AddUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error
	SubtractUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error
	AddAlbums(ctx context.Context, ownerID uuid.UUID, delta int64) error
}

// Service is the quota ledger: it answers admission checks and keeps the
// per-owner running totals in step with confirmed storage.
type Service struct {
	store    ledgerStore
	maxBytes int64
}

// NewService constructs a quota service with the configured storage cap.
func NewService(store ledgerStore, maxBytes int64) *Service {
	return &Service{store: store, maxBytes: maxBytes}
}

// Get returns the owner's quota record, creating it lazily on first access.
func (s *Service) Get(ctx context.Context, ownerID uuid.UUID) (Quota, error) {
	return s.store.Get(ctx, ownerID)
}

// MaxBytes reports the configured storage cap.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// CanAdd reports whether the owner may store size more bytes. The check is
// advisory: it is not atomic with any later write, so concurrent admissions
// can overshoot the cap.
func (s *Service) CanAdd(ctx context.Context, ownerID uuid.UUID, size int64) (bool, error) {
	q, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return q.UsedBytes+size <= s.maxBytes, nil
}

// AddUsage records bytes for storage whose write has already been confirmed.
func (s *Service) AddUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error {
	return s.store.AddUsage(ctx, ownerID, bytes)
}

// SubtractUsage releases bytes, never going below zero.
func (s *Service) SubtractUsage(ctx context.Context, ownerID uuid.UUID, bytes int64) error {
	return s.store.SubtractUsage(ctx, ownerID, bytes)
}

// AddAlbums adjusts the owner's album counter.
func (s *Service) AddAlbums(ctx context.Context, ownerID uuid.UUID, delta int64) error {
	return s.store.AddAlbums(ctx, ownerID, delta)
}
