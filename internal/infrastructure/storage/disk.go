package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
)

type DiskStore struct {
	dir          string
	publicPrefix string
}

// NewDiskStore writes images into dir; references are publicPrefix/<name>,
// which the router serves from the same directory.
func NewDiskStore(dir, publicPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, publicPrefix: publicPrefix}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) PublicPrefix() string {
	return s.publicPrefix
}

func (s *DiskStore) Save(_ context.Context, r io.Reader) (string, error) {
	img, err := readImage(r)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, img.name), img.data, 0o644); err != nil {
		return "", err
	}
	return path.Join(s.publicPrefix, img.name), nil
}
