package aws

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"

	"atb/news-api/internal"
	"atb/news-api/internal/model"
	"atb/news-api/pkg/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Upload decodes the image in r, crops it to the requested dimensions and
// puts the result to S3 under a random key. The returned Image carries
// both the public URL and the storage key needed to destroy it later.
func (s *S3Client) Upload(ctx context.Context, r io.Reader, opts internal.MediaUploadOpts) (model.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return model.Image{}, fmt.Errorf("failed to decode image, %w", err)
	}

	if opts.Width > 0 && opts.Height > 0 {
		img = imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return model.Image{}, fmt.Errorf("failed to encode image, %w", err)
	}

	key := util.RandStr(10) + ".jpg"

	uploader := manager.NewUploader(s.C)

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       s.Bucket,
		Key:          aws.String(key),
		Body:         &buf,
		ContentType:  aws.String("image/jpeg"),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return model.Image{}, fmt.Errorf("failed to upload image to S3, %w", err)
	}

	zap.L().Debug("Uploaded image", zap.String("key", key))

	return model.Image{
		URL:       s.PublicURL + "/" + key,
		StorageID: key,
	}, nil
}

// Destroy removes a previously uploaded image from S3.
func (s *S3Client) Destroy(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}

	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3, %w", err)
	}

	return nil
}
