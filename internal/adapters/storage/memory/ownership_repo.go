package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-registry/internal/domain/ownership"
)

type ownershipKey struct {
	petID  string
	userID string
}

type OwnershipRepo struct {
	mu    sync.RWMutex
	byKey map[ownershipKey]ownership.Ownership
}

func NewOwnershipRepo() *OwnershipRepo {
	return &OwnershipRepo{
		byKey: make(map[ownershipKey]ownership.Ownership),
	}
}

var _ ownership.Repository = (*OwnershipRepo)(nil)

func (r *OwnershipRepo) Create(ctx context.Context, o ownership.Ownership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.PetID) == "" || strings.TrimSpace(o.UserID) == "" {
		return errors.New("ownership pet id and user id required")
	}

	k := ownershipKey{petID: o.PetID, userID: o.UserID}
	if _, exists := r.byKey[k]; exists {
		return errors.New("ownership already exists")
	}
	r.byKey[k] = o
	return nil
}

func (r *OwnershipRepo) Delete(ctx context.Context, petID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := ownershipKey{petID: petID, userID: userID}
	if _, exists := r.byKey[k]; !exists {
		return ErrNotFound
	}
	delete(r.byKey, k)
	return nil
}

func (r *OwnershipRepo) Get(ctx context.Context, petID, userID string) (ownership.Ownership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byKey[ownershipKey{petID: petID, userID: userID}]
	if !ok {
		return ownership.Ownership{}, ErrNotFound
	}
	return o, nil
}

func (r *OwnershipRepo) ListByPet(ctx context.Context, petID string) ([]ownership.Ownership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ownership.Ownership, 0)
	for _, o := range r.byKey {
		if o.PetID == petID {
			out = append(out, o)
		}
	}

	sortOwnerships(out)
	return out, nil
}

func (r *OwnershipRepo) ListByUser(ctx context.Context, userID string) ([]ownership.Ownership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ownership.Ownership, 0)
	for _, o := range r.byKey {
		if o.UserID == userID {
			out = append(out, o)
		}
	}

	sortOwnerships(out)
	return out, nil
}

// SetPrimary apaga el primary vigente y prende el nuevo bajo el mismo lock:
// nunca se observa una mascota con dos primaries o ninguno.
func (r *OwnershipRepo) SetPrimary(ctx context.Context, petID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.byKey[ownershipKey{petID: petID, userID: userID}]
	if !ok {
		return ErrNotFound
	}

	for k, o := range r.byKey {
		if o.PetID == petID && o.IsPrimary {
			o.IsPrimary = false
			r.byKey[k] = o
		}
	}

	target.IsPrimary = true
	r.byKey[ownershipKey{petID: petID, userID: userID}] = target
	return nil
}

func sortOwnerships(out []ownership.Ownership) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
}
