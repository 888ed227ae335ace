package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"storefront/internal/backend"
)

// Object is a stored blob together with the options it was written with.
type Object struct {
	Data []byte
	Opts backend.UploadOptions
}

// Memory keeps objects in process. It backs STORAGE_DRIVER=memory for local
// runs and is the storage double in tests.
type Memory struct {
	mu      sync.Mutex
	base    string
	objects map[string]map[string]Object

	// When set, the next calls fail with these errors.
	UploadErr error
	RemoveErr error
}

func NewMemory(publicBase string) *Memory {
	return &Memory{
		base:    strings.TrimRight(publicBase, "/"),
		objects: make(map[string]map[string]Object),
	}
}

func (m *Memory) From(bucket string) backend.Bucket {
	return &memoryBucket{store: m, name: bucket}
}

// Get returns the object stored at path in bucket.
func (m *Memory) Get(bucket, path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket][path]
	return obj, ok
}

// Paths lists every object path in bucket.
func (m *Memory) Paths(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.objects[bucket]))
	for p := range m.objects[bucket] {
		paths = append(paths, p)
	}
	return paths
}

type memoryBucket struct {
	store *Memory
	name  string
}

func (b *memoryBucket) Upload(ctx context.Context, path string, body io.Reader, opts backend.UploadOptions) error {
	if b.store.UploadErr != nil {
		return b.store.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	objs, ok := b.store.objects[b.name]
	if !ok {
		objs = make(map[string]Object)
		b.store.objects[b.name] = objs
	}
	if _, exists := objs[path]; exists && !opts.Upsert {
		return fmt.Errorf("object %s/%s already exists", b.name, path)
	}
	objs[path] = Object{Data: buf.Bytes(), Opts: opts}
	return nil
}

func (b *memoryBucket) Remove(ctx context.Context, paths ...string) error {
	if b.store.RemoveErr != nil {
		return b.store.RemoveErr
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, p := range paths {
		delete(b.store.objects[b.name], p)
	}
	return nil
}

func (b *memoryBucket) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.store.base, b.name, path)
}
