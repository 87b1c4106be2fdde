package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"m3allem/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryPhotoStore uploads job photos to a Cloudinary folder.
type CloudinaryPhotoStore struct {
	cld    *cloudinary.Cloudinary
	Folder string
}

func NewCloudinaryPhotoStore(cld *cloudinary.Cloudinary, folder string) *CloudinaryPhotoStore {
	if folder == "" {
		folder = "m3allem/jobs"
	}
	return &CloudinaryPhotoStore{cld: cld, Folder: folder}
}

func (s *CloudinaryPhotoStore) UploadJobPhoto(ctx context.Context, name string, r io.Reader) (string, error) {
	photo, err := PreparePhoto(s.Folder, name, r)
	if err != nil {
		return "", err
	}
	publicID := strings.TrimSuffix(photo.ObjectName, pathExt(photo.ObjectName))
	result, err := s.cld.Upload.Upload(ctx, photo.Reader(), uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload rejected: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload returned no URL for %s", publicID)
	}
	return result.SecureURL, nil
}

// Delete removes an uploaded photo by public ID.
func (s *CloudinaryPhotoStore) Delete(ctx context.Context, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return models.NewValidationError("ref", "photo reference is required")
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: ref}); err != nil {
		return fmt.Errorf("cloudinary delete failed: %w", err)
	}
	return nil
}

func pathExt(name string) string {
	if i := strings.LastIndex(name, "."); i > strings.LastIndex(name, "/") {
		return name[i:]
	}
	return ""
}
