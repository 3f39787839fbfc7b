package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-registry/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

var _ pets.Repository = (*PetsRepo)(nil)

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, owner_user_id,
			name, description, pet_type, photo_key,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Description,
		string(p.Type),
		p.PhotoKey,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			description = $3,
			pet_type = $4,
			photo_key = $5,
			updated_at = $6
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Description,
		string(p.Type),
		p.PhotoKey,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const petColumns = `
	id, owner_user_id,
	name, description, pet_type, photo_key,
	created_at, updated_at
`

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPets(rows)
}

func (r *PetsRepo) ListByIDs(ctx context.Context, ids []string) ([]pets.Pet, error) {
	if len(ids) == 0 {
		return []pets.Pet{}, nil
	}

	// ANY($1) con array de pgx evita armar placeholders a mano.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = ANY($1)
		ORDER BY created_at ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var petType string
	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Description,
		&petType,
		&p.PhotoKey,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	p.Type = pets.PetType(petType)
	return p, nil
}

func collectPets(rows *sql.Rows) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
