package files

import (
	"os"
	"path/filepath"
)

// BlobStore is the storage collaborator for attachment payloads. Every
// operation is fallible; durability and timeouts are its concern, not
// the manager's.
type BlobStore interface {
	WriteFile(path string, data []byte) error
	ReadFile(path string) ([]byte, error)
	Remove(path string) error
}

// DiskStore keeps blobs as plain files on the local filesystem.
type DiskStore struct{}

func (DiskStore) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (DiskStore) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (DiskStore) Remove(path string) error {
	return os.Remove(path)
}
