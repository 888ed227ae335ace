package objstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"storefront/internal/backend"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage stores every bucket as a Cloudinary folder. Object paths
// become public IDs with the extension stripped.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudinaryURL string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) From(bucket string) backend.Bucket {
	return &cloudinaryBucket{cld: s.cld, folder: bucket}
}

type cloudinaryBucket struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func (b *cloudinaryBucket) publicID(p string) string {
	return b.folder + "/" + strings.TrimSuffix(p, path.Ext(p))
}

func (b *cloudinaryBucket) Upload(ctx context.Context, p string, body io.Reader, opts backend.UploadOptions) error {
	resp, err := b.cld.Upload.Upload(ctx, body, uploader.UploadParams{
		PublicID:       b.publicID(p),
		Overwrite:      api.Bool(opts.Upsert),
		UniqueFilename: api.Bool(false),
	})
	if err != nil {
		return fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp != nil && resp.Error.Message != "" {
		return fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return nil
}

func (b *cloudinaryBucket) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		resp, err := b.cld.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID: b.publicID(p),
		})
		if err != nil {
			return fmt.Errorf("failed to delete photo from Cloudinary: %w", err)
		}
		if resp != nil && resp.Error.Message != "" {
			return fmt.Errorf("failed to delete photo from Cloudinary: %s", resp.Error.Message)
		}
	}
	return nil
}

func (b *cloudinaryBucket) PublicURL(p string) string {
	img, err := b.cld.Image(b.publicID(p))
	if err != nil {
		return ""
	}
	url, err := img.String()
	if err != nil {
		return ""
	}
	return url
}
