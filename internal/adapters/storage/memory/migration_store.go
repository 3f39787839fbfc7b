package memory

import (
	"context"
	"sync"

	"pet-registry/internal/migrate"
)

// MigrationStore guarda la generación vigente y los run records en memoria.
type MigrationStore struct {
	mu      sync.RWMutex
	current migrate.Generation
	runs    map[string]migrate.RunRecord
	order   []string
}

func NewMigrationStore(initial migrate.Generation) *MigrationStore {
	return &MigrationStore{
		current: initial,
		runs:    make(map[string]migrate.RunRecord),
	}
}

var _ migrate.Store = (*MigrationStore)(nil)

func (s *MigrationStore) Current(ctx context.Context) (migrate.Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *MigrationStore) SetCurrent(ctx context.Context, g migrate.Generation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = g
	return nil
}

func (s *MigrationStore) GetRun(ctx context.Context, transition string) (migrate.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[transition]
	if !ok {
		return migrate.RunRecord{}, migrate.ErrRunNotFound
	}
	return r, nil
}

func (s *MigrationStore) SaveRun(ctx context.Context, r migrate.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.Transition]; !ok {
		s.order = append(s.order, r.Transition)
	}
	s.runs[r.Transition] = r
	return nil
}

func (s *MigrationStore) ListRuns(ctx context.Context) ([]migrate.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]migrate.RunRecord, 0, len(s.order))
	for _, t := range s.order {
		out = append(out, s.runs[t])
	}
	return out, nil
}

// MultiOwnerEnabled implementa ownership.GenerationSource:
// true desde el cutover a typed-pet-multi-owner.
func (s *MigrationStore) MultiOwnerEnabled(ctx context.Context) (bool, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return !cur.Before(migrate.GenTypedPetMultiOwner), nil
}
