package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pet-registry/internal/domain/ownership"
	"pet-registry/internal/domain/pets"
	"pet-registry/internal/migrate"
)

// CatsToTypedPetsStep copia la tabla legacy cats a la colección pets
// unificada, con tag de tipo "cat". Transición single-owner-cat ->
// typed-pet-single-owner.
type CatsToTypedPetsStep struct {
	cats    *LegacyCatsRepo
	petRepo *PetRepo
}

func NewCatsToTypedPetsStep(cats *LegacyCatsRepo, petRepo *PetRepo) *CatsToTypedPetsStep {
	return &CatsToTypedPetsStep{cats: cats, petRepo: petRepo}
}

var _ migrate.Step = (*CatsToTypedPetsStep)(nil)

func (s *CatsToTypedPetsStep) From() migrate.Generation { return migrate.GenSingleOwnerCat }
func (s *CatsToTypedPetsStep) To() migrate.Generation   { return migrate.GenTypedPetSingleOwner }

// CopyData es idempotente: los IDs ya presentes en pets se saltean,
// y se preservan identificadores y created_at del origen.
func (s *CatsToTypedPetsStep) CopyData(ctx context.Context) (migrate.CopyStats, error) {
	cats, err := s.cats.ListCats(ctx)
	if err != nil {
		return migrate.CopyStats{}, err
	}

	stats := migrate.CopyStats{Source: len(cats)}

	for _, c := range cats {
		if _, err := s.petRepo.GetByID(ctx, c.ID); err == nil {
			stats.Skipped++
			continue
		}

		p := pets.Pet{
			ID:          c.ID,
			OwnerUserID: c.OwnerUserID,
			Name:        c.Name,
			Description: c.Description,
			Type:        pets.TypeCat,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.CreatedAt,
		}
		if err := s.petRepo.Create(ctx, p); err != nil {
			return stats, err
		}
		stats.Copied++
	}

	return stats, nil
}

func (s *CatsToTypedPetsStep) Verify(ctx context.Context) error {
	cats, err := s.cats.ListCats(ctx)
	if err != nil {
		return err
	}

	var problems []string
	for _, c := range cats {
		p, err := s.petRepo.GetByID(ctx, c.ID)
		if err != nil {
			problems = append(problems, fmt.Sprintf("cat %s missing in pets", c.ID))
			continue
		}
		if p.Type != pets.TypeCat {
			problems = append(problems, fmt.Sprintf("pet %s has type %q, want cat", p.ID, p.Type))
		}
		if p.OwnerUserID != c.OwnerUserID {
			problems = append(problems, fmt.Sprintf("pet %s owner mismatch", p.ID))
		}
		if p.Name != c.Name {
			problems = append(problems, fmt.Sprintf("pet %s name mismatch", p.ID))
		}
		if !p.CreatedAt.Equal(c.CreatedAt) {
			problems = append(problems, fmt.Sprintf("pet %s created_at not preserved", p.ID))
		}
	}

	if len(problems) > 0 {
		return &migrate.VerificationError{
			Transition: migrate.TransitionName(s.From(), s.To()),
			Problems:   problems,
		}
	}
	return nil
}

// Cutover deprecia la tabla legacy: deja de leerse y escribirse,
// pero no se borra (eso sería un paso destructivo aparte).
func (s *CatsToTypedPetsStep) Cutover(ctx context.Context) error {
	s.cats.Deprecate()
	return nil
}

// OwnerColumnToJoinStep copia la FK de dueño único a filas pet_owners
// con is_primary=true. Transición typed-pet-single-owner ->
// typed-pet-multi-owner.
type OwnerColumnToJoinStep struct {
	petRepo *PetRepo
	ownRepo *OwnershipRepo
}

func NewOwnerColumnToJoinStep(petRepo *PetRepo, ownRepo *OwnershipRepo) *OwnerColumnToJoinStep {
	return &OwnerColumnToJoinStep{petRepo: petRepo, ownRepo: ownRepo}
}

var _ migrate.Step = (*OwnerColumnToJoinStep)(nil)

func (s *OwnerColumnToJoinStep) From() migrate.Generation { return migrate.GenTypedPetSingleOwner }
func (s *OwnerColumnToJoinStep) To() migrate.Generation   { return migrate.GenTypedPetMultiOwner }

func (s *OwnerColumnToJoinStep) CopyData(ctx context.Context) (migrate.CopyStats, error) {
	all, err := s.allPets(ctx)
	if err != nil {
		return migrate.CopyStats{}, err
	}

	stats := migrate.CopyStats{Source: len(all)}

	for _, p := range all {
		if _, err := s.ownRepo.Get(ctx, p.ID, p.OwnerUserID); err == nil {
			stats.Skipped++
			continue
		}

		o := ownership.Ownership{
			ID:        uuid.NewString(),
			PetID:     p.ID,
			UserID:    p.OwnerUserID,
			IsPrimary: true,
			// AddedAt preserva el alta original de la mascota.
			AddedAt: p.CreatedAt,
		}
		if err := s.ownRepo.Create(ctx, o); err != nil {
			return stats, err
		}
		stats.Copied++
	}

	return stats, nil
}

func (s *OwnerColumnToJoinStep) Verify(ctx context.Context) error {
	all, err := s.allPets(ctx)
	if err != nil {
		return err
	}

	var problems []string
	for _, p := range all {
		rows, err := s.ownRepo.ListByPet(ctx, p.ID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			problems = append(problems, fmt.Sprintf("pet %s has no owner rows", p.ID))
			continue
		}

		primaries := 0
		ownerCovered := false
		for _, o := range rows {
			if o.IsPrimary {
				primaries++
			}
			if o.UserID == p.OwnerUserID {
				ownerCovered = true
			}
		}
		if primaries != 1 {
			problems = append(problems, fmt.Sprintf("pet %s has %d primary owners, want 1", p.ID, primaries))
		}
		if !ownerCovered {
			problems = append(problems, fmt.Sprintf("pet %s legacy owner not in join", p.ID))
		}
	}

	if len(problems) > 0 {
		return &migrate.VerificationError{
			Transition: migrate.TransitionName(s.From(), s.To()),
			Problems:   problems,
		}
	}
	return nil
}

// Cutover no toca datos: la columna owner_user_id queda deprecada
// (el modelo de ownership deja de leerla cuando cambia la generación).
func (s *OwnerColumnToJoinStep) Cutover(ctx context.Context) error {
	return nil
}

func (s *OwnerColumnToJoinStep) allPets(ctx context.Context) ([]pets.Pet, error) {
	s.petRepo.mu.RLock()
	defer s.petRepo.mu.RUnlock()

	out := make([]pets.Pet, 0, len(s.petRepo.byID))
	for _, p := range s.petRepo.byID {
		out = append(out, p)
	}
	return out, nil
}
