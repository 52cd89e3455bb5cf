package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/igtharvillage/thar-api/services/spaces"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ObjectStore is a path-keyed blob store with public URLs
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data io.ReadSeeker, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(rawURL string) (string, error)
}

// File is an upload held in memory
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// MediaStore persists image uploads and resolves them by URL
type MediaStore struct {
	store ObjectStore
	now   func() time.Time
}

func NewMediaStore(store ObjectStore) *MediaStore {
	return &MediaStore{store: store, now: time.Now}
}

// WithClock replaces the time source used to build upload keys
func (m *MediaStore) WithClock(now func() time.Time) *MediaStore {
	m.now = now
	return m
}

// Upload stores file under key and returns its public URL
func (m *MediaStore) Upload(ctx context.Context, file File, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("upload key is required")
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = spaces.ContentType(file.Name)
	}

	if err := m.store.PutObject(ctx, key, bytes.NewReader(file.Data), contentType); err != nil {
		return "", err
	}
	return m.store.PublicURL(key), nil
}

// UploadMany uploads every file concurrently under basePath and returns their
// URLs in input order. If any upload fails the whole batch fails; files that
// were already stored are left in place.
func (m *MediaStore) UploadMany(ctx context.Context, files []File, basePath string) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	stamp := m.now().UnixMilli()
	urls := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		key := UploadKey(basePath, stamp, i, file.Name)
		g.Go(func() error {
			url, err := m.Upload(gctx, file, key)
			if err != nil {
				return fmt.Errorf("upload %s: %w", file.Name, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// Delete removes the object a URL points at
func (m *MediaStore) Delete(ctx context.Context, url string) error {
	key, err := m.store.KeyFromURL(url)
	if err != nil {
		return err
	}
	return m.store.DeleteObject(ctx, key)
}

// ReplaceImages deletes the images in previous that are not in current.
// Failures are logged only: the record already points at the new images.
func (m *MediaStore) ReplaceImages(ctx context.Context, previous, current []string) {
	keep := make(map[string]struct{}, len(current))
	for _, u := range current {
		keep[u] = struct{}{}
	}

	for _, u := range previous {
		if _, ok := keep[u]; ok || u == "" {
			continue
		}
		if err := m.Delete(ctx, u); err != nil {
			zap.S().Warnf("[MEDIA] failed to delete superseded image %s: %v", u, err)
		}
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UploadKey derives the storage key of the index-th file of a batch
func UploadKey(basePath string, stamp int64, index int, name string) string {
	name = unsafeNameChars.ReplaceAllString(path.Base(name), "_")
	if name == "" || name == "." || name == "_" {
		name = "file"
	}
	return path.Join(strings.Trim(basePath, "/"), fmt.Sprintf("%d_%d_%s", stamp, index, name))
}
