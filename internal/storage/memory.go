package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemStorage is an in-memory Storage used by tests and the songctl dry-run
// mode. It records every call so tests can assert on side effects.
type MemStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	// UploadErr, when set, makes every Upload fail without storing anything.
	UploadErr error
	// RemoveErr, when set, is returned by Remove; objects are still deleted,
	// mirroring a partial storage failure.
	RemoveErr error

	uploads int
	removes int
}

// NewMemStorage returns an empty in-memory store.
func NewMemStorage() *MemStorage {
	return &MemStorage{objects: make(map[string][]byte)}
}

func (s *MemStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.UploadErr != nil {
		return s.UploadErr
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	s.objects[key] = b
	return nil
}

func (s *MemStorage) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes++
	for _, key := range keys {
		delete(s.objects, key)
	}
	return s.RemoveErr
}

func (s *MemStorage) PublicURL(key string) string {
	return "mem://" + key
}

// Has reports whether an object exists under key.
func (s *MemStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *MemStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Calls returns the number of Upload and Remove invocations so far.
func (s *MemStorage) Calls() (uploads, removes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads, s.removes
}
