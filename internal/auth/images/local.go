// Package images is the image-hosting collaborator. The shipped
// implementation stores avatars on the local filesystem and serves them by
// URL; swapping in a hosted service means implementing service.ImageStore
// against its API instead.
package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cartloop/shopapi/internal/auth/domain"
	"github.com/cartloop/shopapi/pkg/idx"
)

// Local writes uploaded images under a directory and addresses them by a
// generated public id.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("images: create dir: %w", err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

func (l *Local) Upload(_ context.Context, name string, data []byte) (domain.Avatar, error) {
	publicID := idx.New().String()
	ext := filepath.Ext(name)
	if ext == "" {
		ext = ".img"
	}

	filename := publicID + ext
	if err := os.WriteFile(filepath.Join(l.dir, filename), data, 0640); err != nil {
		return domain.Avatar{}, fmt.Errorf("images: write %s: %w", filename, err)
	}

	return domain.Avatar{
		PublicID: filename,
		URL:      l.baseURL + "/" + filename,
	}, nil
}

func (l *Local) Destroy(_ context.Context, publicID string) error {
	// publicID is our own generated filename; Base strips any traversal.
	err := os.Remove(filepath.Join(l.dir, filepath.Base(publicID)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
