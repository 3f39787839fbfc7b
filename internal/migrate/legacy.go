package migrate

import (
	"context"
	"time"
)

// LegacyCat es la forma vieja de la generación single-owner-cat:
// una tabla solo de gatos, con FK de dueño único.
// Solo se lee como origen de la primera transición.
type LegacyCat struct {
	ID          string
	Name        string
	Description string
	OwnerUserID string
	CreatedAt   time.Time
}

// LegacyCatSource expone la tabla legacy para copiar y verificar.
type LegacyCatSource interface {
	ListCats(ctx context.Context) ([]LegacyCat, error)
}
