package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerdesk/internal/domain"
	"careerdesk/internal/storage"
	"careerdesk/internal/textutil"
)

const (
	maxUploadBytes = 10 << 20
	maxSlugTries   = 50
)

// Upload is a file received from the admin console.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var documentTypes = map[string]string{
	"application/pdf": ".pdf",
}

// storeUpload checks the upload against allowed types and writes it under
// <prefix>/<kind>/<id>/<name>-<rand><ext>, returning the object key.
func storeUpload(ctx context.Context, store storage.Service, kind string, id int64, name string, up Upload, allowed map[string]string) (string, error) {
	if store == nil {
		return "", ErrStorageDisabled
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(up.ContentType, ";")[0]))
	ext, ok := allowed[contentType]
	if !ok {
		return "", domain.Invalid(fmt.Sprintf("unsupported file type %q", up.ContentType))
	}
	if up.Size <= 0 {
		return "", domain.Invalid("file is empty")
	}
	if up.Size > maxUploadBytes {
		return "", domain.Invalid(fmt.Sprintf("file exceeds %d MB", maxUploadBytes>>20))
	}

	base := textutil.Slugify(strings.TrimSuffix(path.Base(up.Filename), path.Ext(up.Filename)))
	if base == "" {
		base = name
	}
	key := store.Key(kind, strconv.FormatInt(id, 10), fmt.Sprintf("%s-%s%s", base, uuid.NewString()[:8], ext))
	if err := store.Put(ctx, key, contentType, io.LimitReader(up.Body, up.Size), up.Size); err != nil {
		return "", err
	}
	return key, nil
}

// removeRecordObjects deletes everything stored for one record under
// <prefix>/<kind>/<id>/. Failures are logged; the record is already gone.
func removeRecordObjects(ctx context.Context, store storage.Service, logger *logrus.Logger, kind string, id int64) {
	if store == nil {
		return
	}
	prefix := store.Key(kind, strconv.FormatInt(id, 10)) + "/"
	if err := store.DeletePrefix(ctx, prefix); err != nil {
		logger.WithError(err).WithField("prefix", prefix).Warn("delete stored objects")
	}
}

type slugExistsFunc func(ctx context.Context, slug string, excludeID int64) (bool, error)

// uniqueSlug slugifies candidate (or fallback when candidate is empty) and
// appends -2, -3, ... until no other record uses it.
func uniqueSlug(ctx context.Context, candidate, fallback string, excludeID int64, exists slugExistsFunc) (string, error) {
	base := textutil.Slugify(candidate)
	if base == "" {
		base = textutil.Slugify(fallback)
	}
	if base == "" {
		return "", domain.Invalid("slug could not be derived from title")
	}

	slug := base
	for i := 2; i <= maxSlugTries+1; i++ {
		taken, err := exists(ctx, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug %q: %w", base, domain.ErrConflict)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(v)]; dup {
			continue
		}
		seen[strings.ToLower(v)] = struct{}{}
		out = append(out, v)
	}
	return out
}
