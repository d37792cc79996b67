// Package storage persists uploaded images and hands back the path they are
// reachable under.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store saves and removes uploaded files.
type Store interface {
	// Save writes r and returns the reference clients use to fetch it.
	Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
	// Remove deletes a file previously returned by Save.
	Remove(ctx context.Context, ref string) error
}

// objectName builds a collision-free name that keeps the original extension.
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, `\`, "/")))
	if len(ext) > 10 {
		ext = ""
	}
	return uuid.NewString() + ext
}
