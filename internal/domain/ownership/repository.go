package ownership

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o Ownership) error
	Delete(ctx context.Context, petID, userID string) error
	Get(ctx context.Context, petID, userID string) (Ownership, error)
	ListByPet(ctx context.Context, petID string) ([]Ownership, error)
	ListByUser(ctx context.Context, userID string) ([]Ownership, error)

	// SetPrimary transfiere la bandera primary dentro de una mascota
	// en una sola operación (el adapter decide cómo hacerla atómica).
	SetPrimary(ctx context.Context, petID, userID string, at time.Time) error
}
