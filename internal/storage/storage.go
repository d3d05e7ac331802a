package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotConfigured is returned by callers when no bucket has been set up.
var ErrNotConfigured = errors.New("object storage is not configured")

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores blog covers and package brochures in remote object storage.
// Keys passed in are full object keys, usually built with Key.
type Service interface {
	Key(parts ...string) string
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DeletePrefix(ctx context.Context, prefix string) error
	GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// JoinKey joins non-empty key segments with "/", trimming stray slashes.
func JoinKey(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), "/")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return path.Join(cleaned...)
}
