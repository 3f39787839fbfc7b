package memoryfiles

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"pet-registry/internal/ports/files"
)

// Store guarda blobs en memoria. Sirve para dev y tests;
// el backend real se enchufa detrás del mismo port.
type Store struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

var _ files.Uploader = (*Store)(nil)

func (s *Store) Upload(ctx context.Context, petID string, blob io.Reader) (string, error) {
	data, err := io.ReadAll(blob)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}

	key := fmt.Sprintf("pets/%s/%s", petID, uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data

	return key, nil
}

// Get recupera un blob por key (solo para tests/dev).
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	return b, ok
}
