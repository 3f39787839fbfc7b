package ownership

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden es el error de autorización: la acción se rechaza
	// antes de cualquier escritura, sin mutación parcial.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	ErrBadState  = errors.New("invalid state")
)

// LegacySource expone el dueño de la columna legacy (generaciones
// single-owner). Lo implementa pets.Service.LegacyOwnerOf.
type LegacySource interface {
	LegacyOwnerOf(ctx context.Context, petID string) (string, error)
}

// GenerationSource dice si el cutover a multi-owner ya ocurrió.
// Antes del cutover este módulo lee la columna legacy; después,
// SOLO el join pet_owners (la columna queda deprecada).
type GenerationSource interface {
	MultiOwnerEnabled(ctx context.Context) (bool, error)
}

// UserSource dice si un usuario registrado existe. Lo implementa
// users.Service; invitar a un id inexistente se rechaza acá para que
// todos los adapters respondan igual (y no como violación de FK).
type UserSource interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	repo   Repository
	legacy LegacySource
	users  UserSource
	gens   GenerationSource
	now    func() time.Time
}

func NewService(repo Repository, legacy LegacySource, users UserSource, gens GenerationSource) *Service {
	return &Service{
		repo:   repo,
		legacy: legacy,
		users:  users,
		gens:   gens,
		now:    time.Now,
	}
}

// Owners devuelve el set de dueños de la mascota.
// Consulta pura, sin efectos.
func (s *Service) Owners(ctx context.Context, petID string) ([]Ownership, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}

	multi, err := s.gens.MultiOwnerEnabled(ctx)
	if err != nil {
		return nil, err
	}

	if !multi {
		ownerID, err := s.legacy.LegacyOwnerOf(ctx, petID)
		if err != nil {
			return nil, ErrNotFound
		}
		// Pre-cutover: el dueño único de la columna legacy se presenta
		// como un set de un elemento, con primary implícito.
		return []Ownership{{
			PetID:     petID,
			UserID:    ownerID,
			IsPrimary: true,
		}}, nil
	}

	items, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

// IsOwner dice si user pertenece al set de dueños de pet.
func (s *Service) IsOwner(ctx context.Context, petID, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil
	}

	items, err := s.Owners(ctx, petID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, o := range items {
		if o.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// PrimaryOwner devuelve el dueño principal.
// Invariante: el primary siempre es miembro de Owners.
func (s *Service) PrimaryOwner(ctx context.Context, petID string) (Ownership, error) {
	items, err := s.Owners(ctx, petID)
	if err != nil {
		return Ownership{}, err
	}
	for _, o := range items {
		if o.IsPrimary {
			return o, nil
		}
	}
	// Con los invariantes de migración esto no debería pasar.
	return Ownership{}, ErrBadState
}

// CanModify es el predicado central de autorización: true sii user es dueño.
// Se evalúa SIEMPRE server-side, antes de cualquier escritura sobre la
// mascota o sus relaciones; nunca sobre un owner id provisto por el cliente.
// Es llamable desde cualquier boundary (handlers, jobs, CLI).
func (s *Service) CanModify(ctx context.Context, userID, petID string) (bool, error) {
	return s.IsOwner(ctx, petID, userID)
}

// RecordInitialOwner registra al creador como dueño primary de una mascota
// recién creada. Pre-cutover es un no-op (la columna legacy ya lo tiene).
func (s *Service) RecordInitialOwner(ctx context.Context, petID, userID string) error {
	petID = strings.TrimSpace(petID)
	userID = strings.TrimSpace(userID)
	if petID == "" || userID == "" {
		return ErrInvalidInput
	}

	multi, err := s.gens.MultiOwnerEnabled(ctx)
	if err != nil {
		return err
	}
	if !multi {
		return nil
	}

	return s.repo.Create(ctx, Ownership{
		ID:        uuid.NewString(),
		PetID:     petID,
		UserID:    userID,
		IsPrimary: true,
		AddedAt:   s.now(),
	})
}

// AddOwner suma un co-dueño. Solo el primary puede invitar, y solo a
// usuarios registrados. Idempotente: si ya es dueño, devuelve la
// relación existente.
func (s *Service) AddOwner(ctx context.Context, petID, callerID, newOwnerID string) (Ownership, error) {
	petID = strings.TrimSpace(petID)
	callerID = strings.TrimSpace(callerID)
	newOwnerID = strings.TrimSpace(newOwnerID)

	if petID == "" || callerID == "" || newOwnerID == "" {
		return Ownership{}, ErrInvalidInput
	}
	if callerID == newOwnerID {
		return Ownership{}, ErrInvalidInput
	}

	if err := s.requireMultiOwner(ctx); err != nil {
		return Ownership{}, err
	}
	if err := s.requirePrimary(ctx, petID, callerID); err != nil {
		return Ownership{}, err
	}

	known, err := s.users.Exists(ctx, newOwnerID)
	if err != nil {
		return Ownership{}, err
	}
	if !known {
		return Ownership{}, ErrNotFound
	}

	if existing, err := s.repo.Get(ctx, petID, newOwnerID); err == nil {
		return existing, nil
	}

	o := Ownership{
		ID:        uuid.NewString(),
		PetID:     petID,
		UserID:    newOwnerID,
		IsPrimary: false,
		AddedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return Ownership{}, err
	}
	return o, nil
}

// RemoveOwner quita un co-dueño. Solo el primary puede hacerlo,
// y el primary no se puede quitar a sí mismo sin transferir antes:
// eso garantiza que nunca queda una mascota sin dueños ni sin primary.
func (s *Service) RemoveOwner(ctx context.Context, petID, callerID, ownerID string) error {
	petID = strings.TrimSpace(petID)
	callerID = strings.TrimSpace(callerID)
	ownerID = strings.TrimSpace(ownerID)

	if petID == "" || callerID == "" || ownerID == "" {
		return ErrInvalidInput
	}

	if err := s.requireMultiOwner(ctx); err != nil {
		return err
	}
	if err := s.requirePrimary(ctx, petID, callerID); err != nil {
		return err
	}

	target, err := s.repo.Get(ctx, petID, ownerID)
	if err != nil {
		return ErrNotFound
	}
	if target.IsPrimary {
		return ErrBadState
	}

	return s.repo.Delete(ctx, petID, ownerID)
}

// TransferPrimary mueve la bandera primary a otro dueño existente.
func (s *Service) TransferPrimary(ctx context.Context, petID, callerID, newPrimaryID string) error {
	petID = strings.TrimSpace(petID)
	callerID = strings.TrimSpace(callerID)
	newPrimaryID = strings.TrimSpace(newPrimaryID)

	if petID == "" || callerID == "" || newPrimaryID == "" {
		return ErrInvalidInput
	}

	if err := s.requireMultiOwner(ctx); err != nil {
		return err
	}
	if err := s.requirePrimary(ctx, petID, callerID); err != nil {
		return err
	}

	// El nuevo primary tiene que ser dueño ya; transferir no invita.
	if _, err := s.repo.Get(ctx, petID, newPrimaryID); err != nil {
		return ErrNotFound
	}

	return s.repo.SetPrimary(ctx, petID, newPrimaryID, s.now())
}

// ListByUser devuelve las relaciones de un usuario (para listar sus mascotas
// post-cutover sin depender de la columna legacy).
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Ownership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// MultiOwner expone si el cutover a multi-owner ya ocurrió.
// Lo usan los boundaries para elegir el camino de listado.
func (s *Service) MultiOwner(ctx context.Context) (bool, error) {
	return s.gens.MultiOwnerEnabled(ctx)
}

func (s *Service) requireMultiOwner(ctx context.Context) error {
	multi, err := s.gens.MultiOwnerEnabled(ctx)
	if err != nil {
		return err
	}
	if !multi {
		// Antes del cutover no hay join que mutar.
		return ErrBadState
	}
	return nil
}

func (s *Service) requirePrimary(ctx context.Context, petID, callerID string) error {
	p, err := s.PrimaryOwner(ctx, petID)
	if err != nil {
		return err
	}
	if p.UserID != callerID {
		return ErrForbidden
	}
	return nil
}
