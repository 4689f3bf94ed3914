// Package blobstore stores binary image assets in per-specimen namespaces.
// Two backends exist: local disk (default) and an S3-compatible service.
// Both produce references of the form <base>/<ownerID>/<name>.<ext>.
package blobstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/ebalodis/shellvault/internal/common"
	"github.com/google/uuid"
)

// MaxFileSize is the cap on a fully buffered upload.
const MaxFileSize = 5 << 20 // 5 MiB

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Store is the blob storage contract consumed by the specimen service.
type Store interface {
	// Save validates and stores content under ownerID's namespace and
	// returns a reference usable with DeleteOne. The extension of
	// originalName must be on the allow-list and content must not exceed
	// MaxFileSize.
	Save(ctx context.Context, ownerID string, content []byte, originalName string) (string, error)

	// DeleteAll removes the whole namespace for ownerID. Removing an absent
	// namespace is not an error.
	DeleteAll(ctx context.Context, ownerID string) error

	// DeleteOne removes the blob behind ref and reports whether a blob was
	// actually removed. References outside the managed base are rejected
	// with a false result.
	DeleteOne(ctx context.Context, ref string) (bool, error)
}

// validateExtension returns the lowercased extension of name, or
// common.ErrInvalidFileType when it is not on the allow-list.
func validateExtension(name string) (string, error) {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidFileType, ext)
	}
	return ext, nil
}

// validateSize checks the buffered content against MaxFileSize.
func validateSize(content []byte) error {
	if len(content) > MaxFileSize {
		return fmt.Errorf("%w: maximum size is %d MB", common.ErrFileTooLarge, MaxFileSize/(1<<20))
	}
	return nil
}

// newBlobName generates a collision-resistant file name preserving ext.
func newBlobName(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return id + ext
}
