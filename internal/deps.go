package internal

import (
	"context"
	"io"

	"atb/news-api/internal/model"
	"atb/news-api/pkg/security"

	"gorm.io/gorm"
)

// MediaStore is the narrow contract to the image-upload collaborator.
type MediaStore interface {
	Upload(ctx context.Context, r io.Reader, opts MediaUploadOpts) (model.Image, error)
	Destroy(ctx context.Context, storageID string) error
}

// MediaUploadOpts controls the crop the image is resized to before upload.
type MediaUploadOpts struct {
	Width  int
	Height int
}

// Mailer is the narrow contract to the transactional email collaborator.
type Mailer interface {
	Send(to, subject, body string) error
}

type Deps struct {
	DB        *gorm.DB
	Tokens    *security.TokenMaker
	Passwords *security.ArgonHash
	Media     MediaStore
	Mail      Mailer
}
