package album

import (
	"time"

	"github.com/google/uuid"
)

// Album represents a logical container for a user's images.
type Album struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ImageCount  int64     `json:"image_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageObject is the minimal image reference needed for cascade cleanup.
type ImageObject struct {
	ObjectKey string
	SizeBytes int64
	Active    bool
}
