package image

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinIOStore adapts minio.Client to the objectStore interface. All keys are
// relative to a single backing bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an adapter over the given bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// Head returns the stored object's size, or ErrObjectMissing.
func (s *MinIOStore) Head(ctx context.Context, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return 0, ErrObjectMissing
		}
		return 0, err
	}
	return info.Size, nil
}

// Remove deletes an object; a missing object is not an error.
func (s *MinIOStore) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// PresignPut issues a time-limited URL for a direct client PUT with the
// content type pinned into the signature.
func (s *MinIOStore) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)

	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, ttl, url.Values{}, headers)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// PresignGet issues a time-limited URL for a direct client GET.
func (s *MinIOStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
