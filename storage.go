package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore holds submission blobs on disk under opaque uuid keys.
var FileStore *DiskFileStore

type DiskFileStore struct {
	dir string
}

func InitFileStore(dir string) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("❌ Failed to create upload dir %s: %v", dir, err)
	}
	FileStore = &DiskFileStore{dir: dir}
}

func NewDiskFileStore(dir string) (*DiskFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskFileStore{dir: dir}, nil
}

// Save streams r into a fresh blob and returns its storage key and size.
func (s *DiskFileStore) Save(r io.Reader) (string, int64, error) {
	key := uuid.NewString()

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(f.Name())
		return "", 0, err
	}
	return key, size, nil
}

func (s *DiskFileStore) Open(key string) (*os.File, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(key)))
}

func (s *DiskFileStore) Path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *DiskFileStore) Remove(key string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(key)))
}
