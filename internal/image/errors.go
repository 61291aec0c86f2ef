package image

import "errors"

var (
	// ErrImageNotFound covers absent records, wrong owners, wrong albums, and
	// wrong statuses alike so callers cannot probe for existence.
	ErrImageNotFound = errors.New("image not found")
	// ErrAlbumMismatch indicates the target album does not exist for the owner.
	ErrAlbumMismatch = errors.New("album not found")
	// ErrInvalidContentType signals a content type outside the allow-list.
	ErrInvalidContentType = errors.New("unsupported content type")
	// ErrInvalidSize signals a non-positive declared size.
	ErrInvalidSize = errors.New("size must be greater than zero")
	// ErrImageTooLarge signals that the declared size exceeds the per-image limit.
	ErrImageTooLarge = errors.New("image too large")
	// ErrQuotaExceeded signals that admission would push the owner past the cap.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrUploadIncomplete is returned by confirmation when the object is
	// missing or empty; the record stays pending and the confirm may be retried.
	ErrUploadIncomplete = errors.New("upload not complete")
	// ErrObjectMissing is the object-store adapter's not-found sentinel.
	ErrObjectMissing = errors.New("object missing")
)
