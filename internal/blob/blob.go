// Package blob abstracts the object-storage collaborator that holds uploaded
// blueprint files and generated reports.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound signals a missing object.
var ErrNotFound = errors.New("blob: not found")

// Store is the object-storage interface the blueprint service depends on.
type Store interface {
	// Put stores the object under a fresh key in the given folder and returns
	// the key and a public URL for it.
	Put(ctx context.Context, folder, filename string, r io.Reader) (key, url string, err error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited download URL for the object.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ObjectKey builds a collision-free storage key: folder/<uuid>_<filename>.
func ObjectKey(folder, filename string) string {
	return fmt.Sprintf("%s/%s_%s", strings.Trim(folder, "/"), uuid.NewString(), path.Base(filename))
}

// ContentTypeFor maps a blueprint filename extension to its MIME type.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".dwg":
		return "application/acad"
	case ".dxf":
		return "application/dxf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tiff", ".tif":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
