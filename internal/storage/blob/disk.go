// Package blob stores upload chunks and assembled objects on local disk.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore implements domain.BlobStore on the local filesystem. Pending
// chunks live under <root>/parts/<upload id>/, assembled objects under
// <root>/objects/<key>.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	for _, dir := range []string{filepath.Join(root, "parts"), filepath.Join(root, "objects")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
		}
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) partDir(uploadID string) string {
	return filepath.Join(s.root, "parts", uploadID)
}

func (s *DiskStore) objectPath(key string) (string, error) {
	cleaned := filepath.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, "objects", cleaned), nil
}

func (s *DiskStore) WriteChunk(uploadID string, index int64, data []byte) error {
	dir := s.partDir(uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create part directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%06d.part", index))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chunk %d: %w", index, err)
	}

	return nil
}

// Assemble concatenates the parts in index order into the object at key and
// removes the part directory. Returns the assembled size.
func (s *DiskStore) Assemble(uploadID string, chunkCount int64, key string) (int64, error) {
	target, err := s.objectPath(key)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create object directory: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("failed to create object file: %w", err)
	}
	defer out.Close()

	var written int64
	for index := int64(0); index < chunkCount; index++ {
		part := filepath.Join(s.partDir(uploadID), fmt.Sprintf("%06d.part", index))

		in, err := os.Open(part)
		if err != nil {
			os.Remove(target)
			return 0, fmt.Errorf("failed to open chunk %d: %w", index, err)
		}

		n, err := io.Copy(out, in)
		in.Close()
		if err != nil {
			os.Remove(target)
			return 0, fmt.Errorf("failed to append chunk %d: %w", index, err)
		}
		written += n
	}

	if err := out.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync object file: %w", err)
	}

	if err := os.RemoveAll(s.partDir(uploadID)); err != nil {
		return 0, fmt.Errorf("failed to remove part directory: %w", err)
	}

	return written, nil
}

func (s *DiskStore) Open(key string) (io.ReadSeekCloser, error) {
	path, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}

	return f, nil
}

func (s *DiskStore) Discard(uploadID string) error {
	if err := os.RemoveAll(s.partDir(uploadID)); err != nil {
		return fmt.Errorf("failed to discard upload parts: %w", err)
	}
	return nil
}
