package storage

import (
	"bytes"
	"context"
	"io"

	"coursemarket/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// ImageStore persists an uploaded course image and returns the reference
// stored on the course.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader) (string, error)
}

type image struct {
	data        []byte
	contentType string
	name        string
}

// readImage buffers at most MaxImageSize bytes and sniffs the content type
// from the bytes themselves, ignoring any client-declared type.
func readImage(r io.Reader) (*image, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.NewValidationError("image", "file is empty")
	}
	if n > MaxImageSize {
		return nil, domain.NewValidationError("image", "file exceeds 5 MiB")
	}

	mt := mimetype.Detect(buf.Bytes())
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			return &image{
				data:        buf.Bytes(),
				contentType: allowed,
				name:        uuid.NewString() + mt.Extension(),
			}, nil
		}
	}
	return nil, domain.NewValidationError("image", "only jpeg, png and gif images are allowed")
}
