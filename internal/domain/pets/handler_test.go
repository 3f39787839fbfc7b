package pets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-registry/internal/adapters/files/memoryfiles"
	"pet-registry/internal/domain/ownership"
	"pet-registry/internal/middleware"
	"pet-registry/internal/platform/logger"
)

// Repo de ownership que rechaza toda escritura, para simular la falla
// entre el alta de la mascota y el registro del dueño inicial.
type failingOwnRepo struct{}

func (failingOwnRepo) Create(ctx context.Context, o ownership.Ownership) error {
	return errors.New("repo: write failed")
}

func (failingOwnRepo) Delete(ctx context.Context, petID, userID string) error {
	return errors.New("repo: write failed")
}

func (failingOwnRepo) Get(ctx context.Context, petID, userID string) (ownership.Ownership, error) {
	return ownership.Ownership{}, errRepoNotFound
}

func (failingOwnRepo) ListByPet(ctx context.Context, petID string) ([]ownership.Ownership, error) {
	return nil, nil
}

func (failingOwnRepo) ListByUser(ctx context.Context, userID string) ([]ownership.Ownership, error) {
	return nil, nil
}

func (failingOwnRepo) SetPrimary(ctx context.Context, petID, userID string, at time.Time) error {
	return errors.New("repo: write failed")
}

type allUsersExist struct{}

func (allUsersExist) Exists(ctx context.Context, userID string) (bool, error) {
	return true, nil
}

type multiEnabled struct{}

func (multiEnabled) MultiOwnerEnabled(ctx context.Context) (bool, error) {
	return true, nil
}

func TestCreatePetHandler_OwnerWriteFailureUndoesCreate(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	ownSvc := ownership.NewService(failingOwnRepo{}, svc, allUsersExist{}, multiEnabled{})

	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, svc, ownSvc, memoryfiles.New(), logger.Nop())

	body := `{"name":"Michi","description":"gata gris","type":"cat"}`
	req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-User-ID", "user-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	// Si no se pudo registrar al dueño, la mascota no puede quedar creada:
	// nadie (ni el creador) pasaría la autorización para tocarla después.
	if len(repo.byID) != 0 {
		t.Fatalf("expected pet rolled back, got %d pets persisted", len(repo.byID))
	}
}
