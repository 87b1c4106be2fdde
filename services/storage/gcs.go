package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"m3allem/models"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSPhotoStore writes job photos to a Firebase / Cloud Storage bucket readable by
// everyone.
type GCSPhotoStore struct {
	client *storage.Client
	bucket string
	Folder string
}

func NewGCSPhotoStore(ctx context.Context, credentialsFile, bucket string) (*GCSPhotoStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSPhotoStore{client: client, bucket: bucket, Folder: "jobs"}, nil
}

func (s *GCSPhotoStore) UploadJobPhoto(ctx context.Context, name string, r io.Reader) (string, error) {
	photo, err := PreparePhoto(s.Folder, name, r)
	if err != nil {
		return "", err
	}
	w := s.client.Bucket(s.bucket).Object(photo.ObjectName).NewWriter(ctx)
	w.ContentType = photo.ContentType
	w.CacheControl = "public, max-age=86400"
	if _, err := io.Copy(w, photo.Reader()); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to copy photo to storage: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return s.publicURL(photo.ObjectName), nil
}

// Delete accepts either the object name or the URL returned by UploadJobPhoto.
func (s *GCSPhotoStore) Delete(ctx context.Context, ref string) error {
	object := strings.TrimPrefix(ref, s.publicURL(""))
	if object == "" {
		return models.NewValidationError("ref", "photo reference is required")
	}
	if unescaped, err := url.PathUnescape(object); err == nil {
		object = unescaped
	}
	if err := s.client.Bucket(s.bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *GCSPhotoStore) Close() error {
	return s.client.Close()
}

func (s *GCSPhotoStore) publicURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object)
}
