package image

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks where an image is in its upload lifecycle.
type Status string

const (
	// StatusPending marks a record whose object may not exist yet. Pending
	// images never count toward quota.
	StatusPending Status = "pending"
	// StatusActive marks a confirmed upload with a verified object behind it.
	StatusActive Status = "active"
)

// Image is the stored record for a single photo.
type Image struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	AlbumID     uuid.UUID `json:"album_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ObjectKey   string    `json:"object_key"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadIntent is returned when a presigned upload URL is issued.
type UploadIntent struct {
	UploadURL string    `json:"upload_url"`
	ImageID   uuid.UUID `json:"image_id"`
	ExpiresIn int64     `json:"expires_in"`
}

// DownloadIntent is returned when a presigned download URL is issued.
type DownloadIntent struct {
	DownloadURL string `json:"download_url"`
	ExpiresIn   int64  `json:"expires_in"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}
