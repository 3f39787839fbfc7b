package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pet-registry/internal/migrate"
)

// LegacyCatsRepo es la tabla legacy de la generación single-owner-cat.
// Tras el cutover queda deprecada: se conserva (nunca se borra en el
// mismo paso) pero deja de aceptar escrituras.
type LegacyCatsRepo struct {
	mu         sync.RWMutex
	byID       map[string]migrate.LegacyCat
	deprecated bool
}

func NewLegacyCatsRepo() *LegacyCatsRepo {
	return &LegacyCatsRepo{
		byID: make(map[string]migrate.LegacyCat),
	}
}

var _ migrate.LegacyCatSource = (*LegacyCatsRepo)(nil)

// Seed carga gatos legacy (fixtures de dev/tests).
func (r *LegacyCatsRepo) Seed(cats ...migrate.LegacyCat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deprecated {
		return errors.New("legacy cats table is deprecated")
	}
	for _, c := range cats {
		r.byID[c.ID] = c
	}
	return nil
}

func (r *LegacyCatsRepo) ListCats(ctx context.Context) ([]migrate.LegacyCat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]migrate.LegacyCat, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LegacyCatsRepo) Deprecate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deprecated = true
}

func (r *LegacyCatsRepo) Deprecated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deprecated
}
