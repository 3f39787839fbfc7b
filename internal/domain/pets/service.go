package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Description string
	Type        string
}

// Create registra una mascota para el usuario autenticado.
// ownerUserID viene SIEMPRE de los claims del request, nunca del body:
// el cliente no puede asignar dueños arbitrarios.
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Type:        PetType(strings.TrimSpace(in.Type)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Validar antes de tocar el repo: sin escrituras parciales.
	if err := Validate(p); err != nil {
		return Pet{}, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Description *string
	Type        *string
}

// UpdateProfile aplica un patch parcial y re-valida el resultado completo.
// La autorización (CanModify) ya debe haber pasado en el boundary que llama.
func (s *Service) UpdateProfile(ctx context.Context, petID string, in UpdateInput) (Pet, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, ErrNotFound
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		p.Type = PetType(strings.TrimSpace(*in.Type))
	}

	if err := Validate(p); err != nil {
		return Pet{}, err
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, petID string) error {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, petID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Pet, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// SetPhoto asocia el asset subido a la mascota.
// key viene del port de archivos, no del cliente.
func (s *Service) SetPhoto(ctx context.Context, petID, key string) (Pet, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" || strings.TrimSpace(key) == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, ErrNotFound
	}

	p.PhotoKey = strings.TrimSpace(key)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}
