package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"bakery-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImagesPerUpload caps a single upload request, matching the product
// image policy of at most 3 images.
const MaxImagesPerUpload = 3

// ImageStore stores product images and returns their public URLs
type ImageStore interface {
	Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
}

// DiskStore is a filesystem-backed ImageStore standing in for the hosted
// object bucket. Files get opaque names; the original filename is only used
// for its extension.
type DiskStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

// NewDiskStore creates the upload directory if needed
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  util.Named("storage"),
	}, nil
}

// Upload stores up to MaxImagesPerUpload files and returns their URLs in
// upload order
func (ds *DiskStore) Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files uploaded")
	}
	if len(files) > MaxImagesPerUpload {
		return nil, fmt.Errorf("at most %d images per upload", MaxImagesPerUpload)
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext == "" {
			ext = ".bin"
		}
		name := uuid.New().String() + ext

		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}

		dst, err := os.Create(filepath.Join(ds.dir, name))
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to create image file: %w", err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write image file: %w", err)
		}

		util.ImageUploadsTotal.Inc()
		urls = append(urls, ds.baseURL+"/"+name)
	}

	ds.logger.Info("Images uploaded", zap.Int("count", len(urls)))
	return urls, nil
}
