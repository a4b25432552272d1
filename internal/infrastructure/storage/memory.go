package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	documentapp "github.com/logidocs/backend/internal/application/document"
)

// Ensure MemoryObjectStorage implements ObjectStorage
var _ documentapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory.
// Use it for development and tests when no bucket is configured.
type MemoryObjectStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]memoryObject),
	}
}

// Upload reads body fully and stores it under storageKey
func (s *MemoryObjectStorage) Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error {
	if storageKey == "" {
		return errStorageKeyRequired
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[storageKey] = memoryObject{data: buf.Bytes(), contentType: contentType}
	s.mu.Unlock()
	return nil
}

// GenerateDownloadURL returns a fake signed URL for storageKey
func (s *MemoryObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey, fileName string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errStorageKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{}
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	if fileName != "" {
		q.Set("response-content-disposition", inlineDisposition(fileName))
	}
	return s.BaseURL + "/" + storageKey + "?" + q.Encode(), expiresAt, nil
}

// DeleteObject removes storageKey; deleting a missing key succeeds
func (s *MemoryObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errStorageKeyRequired
	}
	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// ObjectExists reports whether storageKey was uploaded
func (s *MemoryObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errStorageKeyRequired
	}
	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	return ok, nil
}

// Ping always succeeds
func (s *MemoryObjectStorage) Ping(ctx context.Context) error {
	return nil
}

// Object returns the stored bytes and content type of storageKey
func (s *MemoryObjectStorage) Object(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj.data, obj.contentType, ok
}
