package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pet-registry/internal/migrate"
)

// CatsToTypedPetsStep: copia la tabla legacy cats a pets con pet_type='cat'.
// La copia es INSERT ... SELECT con ON CONFLICT DO NOTHING: re-correrla
// no duplica filas y preserva id y created_at.
type CatsToTypedPetsStep struct {
	db *sql.DB
}

func NewCatsToTypedPetsStep(db *sql.DB) *CatsToTypedPetsStep {
	return &CatsToTypedPetsStep{db: db}
}

var _ migrate.Step = (*CatsToTypedPetsStep)(nil)

func (s *CatsToTypedPetsStep) From() migrate.Generation { return migrate.GenSingleOwnerCat }
func (s *CatsToTypedPetsStep) To() migrate.Generation   { return migrate.GenTypedPetSingleOwner }

func (s *CatsToTypedPetsStep) CopyData(ctx context.Context) (migrate.CopyStats, error) {
	var stats migrate.CopyStats

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cats`).Scan(&stats.Source); err != nil {
		return stats, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pets (id, owner_user_id, name, description, pet_type, photo_key, created_at, updated_at)
		SELECT c.id, c.owner_user_id, c.name, c.description, 'cat', '', c.created_at, c.created_at
		FROM cats c
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return stats, err
	}

	copied, _ := res.RowsAffected()
	stats.Copied = int(copied)
	stats.Skipped = stats.Source - stats.Copied
	return stats, nil
}

func (s *CatsToTypedPetsStep) Verify(ctx context.Context) error {
	var problems []string

	var missing int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM cats c
		LEFT JOIN pets p ON p.id = c.id
		WHERE p.id IS NULL
	`).Scan(&missing)
	if err != nil {
		return err
	}
	if missing > 0 {
		problems = append(problems, fmt.Sprintf("%d cats missing in pets", missing))
	}

	var mismatched int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM cats c
		JOIN pets p ON p.id = c.id
		WHERE p.owner_user_id <> c.owner_user_id
		   OR p.name <> c.name
		   OR p.description <> c.description
		   OR p.pet_type <> 'cat'
		   OR p.created_at <> c.created_at
	`).Scan(&mismatched)
	if err != nil {
		return err
	}
	if mismatched > 0 {
		problems = append(problems, fmt.Sprintf("%d pets inconsistent with source cats", mismatched))
	}

	if len(problems) > 0 {
		return &migrate.VerificationError{
			Transition: migrate.TransitionName(s.From(), s.To()),
			Problems:   problems,
		}
	}
	return nil
}

// Cutover renombra la tabla legacy a cats_deprecated: deja de usarse
// pero no se dropea (eso queda para un paso destructivo posterior).
func (s *CatsToTypedPetsStep) Cutover(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `ALTER TABLE cats RENAME TO cats_deprecated`)
	return err
}

// OwnerColumnToJoinStep: copia pets.owner_user_id a pet_owners con
// is_primary=true, preservando created_at como added_at.
type OwnerColumnToJoinStep struct {
	db *sql.DB
}

func NewOwnerColumnToJoinStep(db *sql.DB) *OwnerColumnToJoinStep {
	return &OwnerColumnToJoinStep{db: db}
}

var _ migrate.Step = (*OwnerColumnToJoinStep)(nil)

func (s *OwnerColumnToJoinStep) From() migrate.Generation { return migrate.GenTypedPetSingleOwner }
func (s *OwnerColumnToJoinStep) To() migrate.Generation   { return migrate.GenTypedPetMultiOwner }

func (s *OwnerColumnToJoinStep) CopyData(ctx context.Context) (migrate.CopyStats, error) {
	var stats migrate.CopyStats

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pets WHERE owner_user_id <> ''
	`).Scan(&stats.Source); err != nil {
		return stats, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pet_owners (id, pet_id, user_id, is_primary, added_at)
		SELECT gen_random_uuid(), p.id, p.owner_user_id, TRUE, p.created_at
		FROM pets p
		WHERE p.owner_user_id <> ''
		ON CONFLICT (pet_id, user_id) DO NOTHING
	`)
	if err != nil {
		return stats, err
	}

	copied, _ := res.RowsAffected()
	stats.Copied = int(copied)
	stats.Skipped = stats.Source - stats.Copied
	return stats, nil
}

func (s *OwnerColumnToJoinStep) Verify(ctx context.Context) error {
	var problems []string

	var orphans int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM pets p
		LEFT JOIN pet_owners po ON po.pet_id = p.id AND po.user_id = p.owner_user_id
		WHERE p.owner_user_id <> '' AND po.pet_id IS NULL
	`).Scan(&orphans)
	if err != nil {
		return err
	}
	if orphans > 0 {
		problems = append(problems, fmt.Sprintf("%d pets whose legacy owner is not in pet_owners", orphans))
	}

	var badPrimaries int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM (
			SELECT pet_id
			FROM pet_owners
			GROUP BY pet_id
			HAVING COUNT(*) FILTER (WHERE is_primary) <> 1
		) x
	`).Scan(&badPrimaries)
	if err != nil {
		return err
	}
	if badPrimaries > 0 {
		problems = append(problems, fmt.Sprintf("%d pets without exactly one primary owner", badPrimaries))
	}

	if len(problems) > 0 {
		return &migrate.VerificationError{
			Transition: migrate.TransitionName(s.From(), s.To()),
			Problems:   problems,
		}
	}
	return nil
}

// Cutover no toca datos: la columna owner_user_id queda deprecada y el
// modelo de ownership deja de leerla cuando cambia la generación vigente.
func (s *OwnerColumnToJoinStep) Cutover(ctx context.Context) error {
	return nil
}
