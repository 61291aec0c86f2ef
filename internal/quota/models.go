package quota

import (
	"time"

	"github.com/google/uuid"
)

// Quota tracks aggregate storage accounting for a single owner.
type Quota struct {
	OwnerID    uuid.UUID `json:"owner_id"`
	UsedBytes  int64     `json:"used_bytes"`
	AlbumCount int64     `json:"album_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
