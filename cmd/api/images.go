package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"storefront/internal/backend"
)

const maxImageBytes = 5 << 20 // 5 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var (
	errInvalidImageType = errors.New("only jpeg, png or webp images are accepted")
	errImageTooLarge    = errors.New("image must be 5 MB or smaller")
)

// helper: sniff first 512 bytes and reset reader
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	// reset so later reads start from byte 0
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	return mime, nil
}

// formImage reads an optional image part. It returns a nil file when the
// field is absent; the caller must close the returned file when non-nil.
func formImage(r *http.Request, field string) (*backend.File, io.Closer, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", field, err)
	}
	if header.Size > maxImageBytes {
		file.Close()
		return nil, nil, errImageTooLarge
	}

	mime, err := sniffMIME(file)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("sniff mime: %w", err)
	}
	if !allowedImageTypes[mime] {
		file.Close()
		return nil, nil, fmt.Errorf("%w: got %s", errInvalidImageType, mime)
	}

	return &backend.File{Name: header.Filename, ContentType: mime, Body: file}, file, nil
}

// parseMultipart bounds the body and parses the form; the caller defers
// cleanupMultipart.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}
	return nil
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
