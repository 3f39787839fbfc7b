package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pet-registry/internal/domain/ownership"
)

type OwnershipRepo struct {
	db *sql.DB
}

func NewOwnershipRepo(db *sql.DB) *OwnershipRepo {
	return &OwnershipRepo{db: db}
}

var _ ownership.Repository = (*OwnershipRepo)(nil)

func (r *OwnershipRepo) Create(ctx context.Context, o ownership.Ownership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_owners (
			id, pet_id, user_id, is_primary, added_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		o.ID,
		o.PetID,
		o.UserID,
		o.IsPrimary,
		o.AddedAt,
	)
	return err
}

func (r *OwnershipRepo) Delete(ctx context.Context, petID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM pet_owners WHERE pet_id = $1 AND user_id = $2
	`, petID, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OwnershipRepo) Get(ctx context.Context, petID, userID string) (ownership.Ownership, error) {
	petID = strings.TrimSpace(petID)
	userID = strings.TrimSpace(userID)
	if petID == "" || userID == "" {
		return ownership.Ownership{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, user_id, is_primary, added_at
		FROM pet_owners
		WHERE pet_id = $1 AND user_id = $2
	`, petID, userID)

	var o ownership.Ownership
	if err := row.Scan(&o.ID, &o.PetID, &o.UserID, &o.IsPrimary, &o.AddedAt); err != nil {
		if err == sql.ErrNoRows {
			return ownership.Ownership{}, ErrNotFound
		}
		return ownership.Ownership{}, err
	}
	return o, nil
}

func (r *OwnershipRepo) ListByPet(ctx context.Context, petID string) ([]ownership.Ownership, error) {
	return r.list(ctx, `
		SELECT id, pet_id, user_id, is_primary, added_at
		FROM pet_owners
		WHERE pet_id = $1
		ORDER BY added_at ASC, user_id ASC
	`, petID)
}

func (r *OwnershipRepo) ListByUser(ctx context.Context, userID string) ([]ownership.Ownership, error) {
	return r.list(ctx, `
		SELECT id, pet_id, user_id, is_primary, added_at
		FROM pet_owners
		WHERE user_id = $1
		ORDER BY added_at ASC, pet_id ASC
	`, userID)
}

// SetPrimary hace el toggle en una transacción: índice parcial único
// sobre (pet_id) WHERE is_primary asegura el invariante a nivel storage.
func (r *OwnershipRepo) SetPrimary(ctx context.Context, petID, userID string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE pet_owners SET is_primary = FALSE
		WHERE pet_id = $1 AND is_primary
	`, petID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE pet_owners SET is_primary = TRUE
		WHERE pet_id = $1 AND user_id = $2
	`, petID, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *OwnershipRepo) list(ctx context.Context, query, arg string) ([]ownership.Ownership, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ownership.Ownership, 0)
	for rows.Next() {
		var o ownership.Ownership
		if err := rows.Scan(&o.ID, &o.PetID, &o.UserID, &o.IsPrimary, &o.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
