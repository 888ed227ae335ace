package products

import (
	"context"
	"errors"
	"path"
	"strings"

	"storefront/internal/backend"

	"github.com/google/uuid"
)

// imagePath keeps the original extension behind a random name.
func imagePath(fileName string) string {
	name := uuid.NewString()
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" {
		name += ext
	}
	return imageFolder + "/" + name
}

// UploadImage stores the file in the products bucket and returns its public
// URL. There is no retry.
func (r *Repository) UploadImage(ctx context.Context, file backend.File) (string, error) {
	if r.images == nil {
		return "", &backend.UploadError{Msg: "upload product image", Err: errors.New("no storage configured")}
	}

	p := imagePath(file.Name)
	err := r.images.Upload(ctx, p, file.Body, backend.UploadOptions{ContentType: file.ContentType})
	if err != nil {
		r.logger.Errorw("upload product image failed", "path", p, "error", err)
		return "", &backend.UploadError{Msg: "upload product image", Err: err}
	}

	url := r.images.PublicURL(p)
	if url == "" {
		return "", &backend.UploadError{Msg: "resolve public URL for " + p}
	}
	return url, nil
}
