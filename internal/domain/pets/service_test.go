package pets

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Pet
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) ListByIDs(ctx context.Context, ids []string) ([]Pet, error) {
	out := make([]Pet, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_SetsTimestampsAndOwner(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:        "Ziggy",
		Description: "Gato atigrado, tres años",
		Type:        "cat",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if p.OwnerUserID != "user-1" {
		t.Fatalf("expected owner user-1, got %s", p.OwnerUserID)
	}
	if p.CreatedAt != now || p.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("expected pet persisted")
	}
}

func TestService_Create_ValidationFailure_PersistsNothing(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	// "Whiskers" sin descripción: un campo válido no salva al inválido.
	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:        "Whiskers",
		Description: "",
		Type:        "cat",
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "description" {
		t.Fatalf("expected single description violation, got %#v", ve.Fields)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected nothing persisted, got %d pets", len(repo.byID))
	}
}

func TestService_Create_ReportsAllViolations(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:        "",
		Description: "",
		Type:        "dragon",
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	// Todas las reglas se evalúan, no solo la primera.
	if len(ve.Fields) != 3 {
		t.Fatalf("expected 3 violations, got %#v", ve.Fields)
	}
	got := map[string]bool{}
	for _, f := range ve.Fields {
		got[f.Field] = true
	}
	for _, want := range []string{"name", "description", "type"} {
		if !got[want] {
			t.Fatalf("missing violation for %q in %#v", want, ve.Fields)
		}
	}
}

func TestService_UpdateProfile_PartialPatch(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now2 := now1.Add(time.Hour)

	svc.now = func() time.Time { return now1 }
	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:        "Ziggy",
		Description: "Gato atigrado",
		Type:        "cat",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	newDesc := "Gato atigrado, castrado"
	updated, err := svc.UpdateProfile(context.Background(), p.ID, UpdateInput{
		Description: &newDesc,
	})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}

	if updated.Name != "Ziggy" {
		t.Fatalf("expected name untouched, got %s", updated.Name)
	}
	if updated.Description != newDesc {
		t.Fatalf("expected description updated, got %s", updated.Description)
	}
	if updated.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt refreshed")
	}
	if updated.CreatedAt != now1 {
		t.Fatalf("expected CreatedAt preserved")
	}
}

func TestService_UpdateProfile_InvalidPatch_LeavesStoredPetIntact(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:        "Ziggy",
		Description: "Gato atigrado",
		Type:        "cat",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	empty := "   "
	_, err = svc.UpdateProfile(context.Background(), p.ID, UpdateInput{Name: &empty})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	stored := repo.byID[p.ID]
	if stored.Name != "Ziggy" {
		t.Fatalf("expected stored pet unchanged, got name %q", stored.Name)
	}
}

func TestService_UpdateProfile_UnknownPet(t *testing.T) {
	svc := NewService(newTestRepo())

	name := "Max"
	_, err := svc.UpdateProfile(context.Background(), "nope", UpdateInput{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_SetPhoto(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:        "Ziggy",
		Description: "Gato atigrado",
		Type:        "cat",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.SetPhoto(context.Background(), p.ID, "pets/abc/photo-1")
	if err != nil {
		t.Fatalf("SetPhoto error: %v", err)
	}
	if updated.PhotoKey != "pets/abc/photo-1" {
		t.Fatalf("expected photo key set, got %q", updated.PhotoKey)
	}

	if _, err := svc.SetPhoto(context.Background(), p.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty key, got %v", err)
	}
}
