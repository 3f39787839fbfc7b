package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-registry/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

var _ users.Repository = (*UsersRepo)(nil)

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash, display_name,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		u.ID,
		u.Email,
		u.PasswordHash,
		toNullString(u.DisplayName),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			display_name = $2,
			updated_at = $3
		WHERE id = $1
	`,
		u.ID,
		toNullString(u.DisplayName),
		u.UpdatedAt,
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

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return users.User{}, ErrNotFound
	}
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *UsersRepo) get(ctx context.Context, where, arg string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, display_name, created_at, updated_at
		FROM users
	`+where, arg)

	var u users.User
	var dn sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &dn, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}

	if dn.Valid {
		v := dn.String
		u.DisplayName = &v
	}
	return u, nil
}

// display_name es nullable hasta que el backfill lo complete
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}
