package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	failPut   map[string]bool
	failDel   bool
	deleted   []string
	putDelays map[string]time.Duration
}

func newMemoryObjectStore() *memoryObjectStore {
	return &memoryObjectStore{
		objects:   map[string][]byte{},
		types:     map[string]string{},
		failPut:   map[string]bool{},
		putDelays: map[string]time.Duration{},
	}
}

func (s *memoryObjectStore) PutObject(ctx context.Context, key string, data io.ReadSeeker, contentType string) error {
	s.mu.Lock()
	delay := s.putDelays[key]
	fail := false
	for suffix := range s.failPut {
		if strings.HasSuffix(key, suffix) {
			fail = true
		}
	}
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return errors.New("put rejected")
	}

	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	s.types[key] = contentType
	return nil
}

func (s *memoryObjectStore) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDel {
		return errors.New("delete rejected")
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memoryObjectStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *memoryObjectStore) KeyFromURL(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "https://cdn.test/") {
		return "", fmt.Errorf("foreign url %s", rawURL)
	}
	return strings.TrimPrefix(rawURL, "https://cdn.test/"), nil
}

func fixedClock() time.Time {
	return time.UnixMilli(1717000000000)
}

func TestUploadReturnsPublicURL(t *testing.T) {
	store := newMemoryObjectStore()
	media := NewMediaStore(store)

	url, err := media.Upload(context.Background(), File{Name: "logo.png", Data: []byte("png")}, "settings/logo.png")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if url != "https://cdn.test/settings/logo.png" {
		t.Fatalf("url = %s", url)
	}
	if store.types["settings/logo.png"] != "image/png" {
		t.Errorf("content type = %q", store.types["settings/logo.png"])
	}
}

func TestUploadManyKeepsInputOrder(t *testing.T) {
	store := newMemoryObjectStore()
	media := NewMediaStore(store).WithClock(fixedClock)

	// the first upload finishes last
	store.putDelays["properties/1717000000000_0_a.jpg"] = 30 * time.Millisecond

	files := []File{
		{Name: "a.jpg", Data: []byte("a")},
		{Name: "b.jpg", Data: []byte("b")},
		{Name: "my photo (1).jpg", Data: []byte("c")},
	}
	urls, err := media.UploadMany(context.Background(), files, "properties/")
	if err != nil {
		t.Fatalf("upload many failed: %v", err)
	}

	want := []string{
		"https://cdn.test/properties/1717000000000_0_a.jpg",
		"https://cdn.test/properties/1717000000000_1_b.jpg",
		"https://cdn.test/properties/1717000000000_2_my_photo_1_.jpg",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %d urls, want %d", len(urls), len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %s, want %s", i, urls[i], want[i])
		}
	}
}

func TestUploadManyFailsWholeBatch(t *testing.T) {
	store := newMemoryObjectStore()
	store.failPut["_1_b.jpg"] = true
	media := NewMediaStore(store).WithClock(fixedClock)

	urls, err := media.UploadMany(context.Background(), []File{
		{Name: "a.jpg", Data: []byte("a")},
		{Name: "b.jpg", Data: []byte("b")},
	}, "gallery")
	if err == nil {
		t.Fatalf("expected batch failure")
	}
	if urls != nil {
		t.Fatalf("expected no urls on failure, got %v", urls)
	}
}

func TestUploadManyEmpty(t *testing.T) {
	media := NewMediaStore(newMemoryObjectStore())
	urls, err := media.UploadMany(context.Background(), nil, "gallery")
	if err != nil || urls == nil || len(urls) != 0 {
		t.Fatalf("got %v, %v", urls, err)
	}
}

func TestDeleteResolvesURL(t *testing.T) {
	store := newMemoryObjectStore()
	media := NewMediaStore(store)
	ctx := context.Background()

	url, err := media.Upload(ctx, File{Name: "a.jpg", Data: []byte("a")}, "gallery/a.jpg")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if err := media.Delete(ctx, url); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := store.objects["gallery/a.jpg"]; ok {
		t.Fatalf("object still stored")
	}

	if err := media.Delete(ctx, "https://elsewhere.test/a.jpg"); err == nil {
		t.Fatalf("expected error for foreign url")
	}
}

func TestReplaceImagesDeletesOnlySuperseded(t *testing.T) {
	store := newMemoryObjectStore()
	media := NewMediaStore(store)

	media.ReplaceImages(context.Background(),
		[]string{"https://cdn.test/p/1.jpg", "https://cdn.test/p/2.jpg", "https://other.test/x.jpg"},
		[]string{"https://cdn.test/p/2.jpg", "https://cdn.test/p/3.jpg"},
	)

	if len(store.deleted) != 1 || store.deleted[0] != "p/1.jpg" {
		t.Fatalf("deleted = %v", store.deleted)
	}
}

func TestReplaceImagesSwallowsDeleteErrors(t *testing.T) {
	store := newMemoryObjectStore()
	store.failDel = true
	media := NewMediaStore(store)

	// must not panic or block
	media.ReplaceImages(context.Background(), []string{"https://cdn.test/p/1.jpg"}, nil)
}

func TestUploadKeySanitizesName(t *testing.T) {
	cases := []struct {
		base, name, want string
	}{
		{"gallery", "sunset.jpg", "gallery/5_2_sunset.jpg"},
		{"/gallery/", "../../etc/passwd", "gallery/5_2_passwd"},
		{"gallery", "", "gallery/5_2_file"},
	}
	for _, tc := range cases {
		if got := UploadKey(tc.base, 5, 2, tc.name); got != tc.want {
			t.Errorf("UploadKey(%q, %q) = %q, want %q", tc.base, tc.name, got, tc.want)
		}
	}
}
