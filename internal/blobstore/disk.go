package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs on the local filesystem under root, one directory
// per owner. References are URL-style paths beginning with basePath so they
// can be served directly by a static file handler.
type DiskStore struct {
	root     string
	basePath string
}

// NewDiskStore creates the storage root if needed and returns a DiskStore.
// basePath is the public prefix of every reference, e.g. "/uploads/specimens".
func NewDiskStore(root, basePath string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return &DiskStore{root: abs, basePath: strings.TrimSuffix(basePath, "/")}, nil
}

func (s *DiskStore) Save(ctx context.Context, ownerID string, content []byte, originalName string) (string, error) {
	ext, err := validateExtension(originalName)
	if err != nil {
		return "", err
	}
	if err := validateSize(content); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, ownerID)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	name := newBlobName(ext)
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o660); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	return s.basePath + "/" + ownerID + "/" + name, nil
}

func (s *DiskStore) DeleteAll(ctx context.Context, ownerID string) error {
	if err := os.RemoveAll(filepath.Join(s.root, ownerID)); err != nil {
		return fmt.Errorf("removing namespace %s: %w", ownerID, err)
	}
	return nil
}

func (s *DiskStore) DeleteOne(ctx context.Context, ref string) (bool, error) {
	rel, ok := strings.CutPrefix(ref, s.basePath+"/")
	if !ok {
		return false, nil
	}

	// Resolve and make sure the target stays inside the storage root.
	target := filepath.Join(s.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return false, nil
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("removing blob: %w", err)
	}
	return true, nil
}
