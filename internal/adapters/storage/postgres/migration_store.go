package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pet-registry/internal/migrate"
)

// advisory lock para que no corran dos sequencers a la vez
const migrationLockID int64 = 724011001

// MigrationStore persiste la generación vigente y los run records.
// Tablas: ownership_generation (una fila) y ownership_migration_runs.
type MigrationStore struct {
	db *sql.DB
}

func NewMigrationStore(db *sql.DB) *MigrationStore {
	return &MigrationStore{db: db}
}

var (
	_ migrate.Store  = (*MigrationStore)(nil)
	_ migrate.Locker = (*MigrationStore)(nil)
)

// Initialize crea las tablas de tracking si no existen y deja la
// generación inicial en single-owner-cat.
func (s *MigrationStore) Initialize(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ownership_generation (
			id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			generation VARCHAR(40) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		INSERT INTO ownership_generation (id, generation)
		VALUES (1, 'single-owner-cat')
		ON CONFLICT (id) DO NOTHING;

		CREATE TABLE IF NOT EXISTS ownership_migration_runs (
			transition VARCHAR(120) PRIMARY KEY,
			from_generation VARCHAR(40) NOT NULL,
			to_generation VARCHAR(40) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			copied_rows INT NOT NULL DEFAULT 0,
			started_at TIMESTAMPTZ NOT NULL,
			copied_at TIMESTAMPTZ,
			verified_at TIMESTAMPTZ,
			applied_at TIMESTAMPTZ,
			error TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("initialize migration tracking: %w", err)
	}
	return nil
}

func (s *MigrationStore) Current(ctx context.Context) (migrate.Generation, error) {
	var g string
	err := s.db.QueryRowContext(ctx, `
		SELECT generation FROM ownership_generation WHERE id = 1
	`).Scan(&g)
	if err != nil {
		return "", err
	}
	return migrate.ParseGeneration(g)
}

func (s *MigrationStore) SetCurrent(ctx context.Context, g migrate.Generation) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ownership_generation SET generation = $1, updated_at = NOW() WHERE id = 1
	`, string(g))
	return err
}

func (s *MigrationStore) GetRun(ctx context.Context, transition string) (migrate.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT transition, from_generation, to_generation, status, copied_rows,
		       started_at, copied_at, verified_at, applied_at, error
		FROM ownership_migration_runs
		WHERE transition = $1
	`, transition)

	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return migrate.RunRecord{}, migrate.ErrRunNotFound
		}
		return migrate.RunRecord{}, err
	}
	return r, nil
}

func (s *MigrationStore) SaveRun(ctx context.Context, r migrate.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ownership_migration_runs (
			transition, from_generation, to_generation, status, copied_rows,
			started_at, copied_at, verified_at, applied_at, error
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (transition) DO UPDATE SET
			status = EXCLUDED.status,
			copied_rows = EXCLUDED.copied_rows,
			copied_at = EXCLUDED.copied_at,
			verified_at = EXCLUDED.verified_at,
			applied_at = EXCLUDED.applied_at,
			error = EXCLUDED.error
	`,
		r.Transition,
		string(r.From),
		string(r.To),
		string(r.Status),
		r.CopiedRows,
		r.StartedAt,
		r.CopiedAt,
		r.VerifiedAt,
		r.AppliedAt,
		r.Error,
	)
	return err
}

func (s *MigrationStore) ListRuns(ctx context.Context) ([]migrate.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT transition, from_generation, to_generation, status, copied_rows,
		       started_at, copied_at, verified_at, applied_at, error
		FROM ownership_migration_runs
		ORDER BY started_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]migrate.RunRecord, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *MigrationStore) Lock(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockID)
	if err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	return nil
}

func (s *MigrationStore) Unlock(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, migrationLockID)
	if err != nil {
		return fmt.Errorf("release migration lock: %w", err)
	}
	return nil
}

// MultiOwnerEnabled implementa ownership.GenerationSource.
func (s *MigrationStore) MultiOwnerEnabled(ctx context.Context) (bool, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return !cur.Before(migrate.GenTypedPetMultiOwner), nil
}

func scanRun(row rowScanner) (migrate.RunRecord, error) {
	var r migrate.RunRecord
	var from, to, status string
	var copiedAt, verifiedAt, appliedAt sql.NullTime
	var errMsg sql.NullString

	if err := row.Scan(
		&r.Transition,
		&from,
		&to,
		&status,
		&r.CopiedRows,
		&r.StartedAt,
		&copiedAt,
		&verifiedAt,
		&appliedAt,
		&errMsg,
	); err != nil {
		return migrate.RunRecord{}, err
	}

	r.From = migrate.Generation(from)
	r.To = migrate.Generation(to)
	r.Status = migrate.RunStatus(status)

	if copiedAt.Valid {
		t := copiedAt.Time
		r.CopiedAt = &t
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		r.VerifiedAt = &t
	}
	if appliedAt.Valid {
		t := appliedAt.Time
		r.AppliedAt = &t
	}
	if errMsg.Valid {
		m := errMsg.String
		r.Error = &m
	}

	return r, nil
}
