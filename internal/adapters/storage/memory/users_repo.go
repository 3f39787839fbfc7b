package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pet-registry/internal/domain/users"
)

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]users.User
	byEmail map[string]string // email -> id
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]users.User),
		byEmail: make(map[string]string),
	}
}

var _ users.Repository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	if _, taken := r.byEmail[u.Email]; taken {
		return errors.New("email already taken")
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[u.ID]
	if !exists {
		return ErrNotFound
	}

	// El email es parte de la identidad; acá solo cambia el perfil.
	u.Email = prev.Email
	r.byID[u.ID] = u
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return r.byID[id], nil
}
