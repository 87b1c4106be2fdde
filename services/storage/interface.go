package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"m3allem/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxPhotoBytes bounds a single job photo.
const MaxPhotoBytes = 10 << 20

var allowedPhotoTypes = []string{"image/jpeg", "image/png", "image/webp", "image/heic"}

// PhotoStore keeps the pictures clients attach to job requests.
type PhotoStore interface {
	// UploadJobPhoto stores the image and returns its public URL.
	UploadJobPhoto(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Photo is an upload that passed validation.
type Photo struct {
	Data        []byte
	ContentType string
	ObjectName  string
}

// PreparePhoto reads at most MaxPhotoBytes from r, checks the content is an image
// and derives a unique object name under folder.
func PreparePhoto(folder, name string, r io.Reader) (Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return Photo{}, fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) == 0 {
		return Photo{}, models.NewValidationError("photo", "photo is empty")
	}
	if len(data) > MaxPhotoBytes {
		return Photo{}, models.NewValidationError("photo", fmt.Sprintf("photo exceeds %d MB", MaxPhotoBytes>>20))
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedPhotoTypes...) {
		return Photo{}, models.NewValidationError("photo", fmt.Sprintf("unsupported image type %s", mt.String()))
	}

	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = sanitize(strings.TrimSuffix(base, path.Ext(base)))
	if base == "" {
		base = "photo"
	}
	return Photo{
		Data:        data,
		ContentType: mt.String(),
		ObjectName:  path.Join(folder, fmt.Sprintf("%s-%s%s", base, uuid.NewString()[:8], mt.Extension())),
	}, nil
}

func (p Photo) Reader() io.Reader { return bytes.NewReader(p.Data) }

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
