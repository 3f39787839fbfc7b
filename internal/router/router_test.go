package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memory "pet-registry/internal/adapters/storage/memory"
	"pet-registry/internal/domain/users"
	"pet-registry/internal/migrate"
	"pet-registry/internal/platform/logger"
	"pet-registry/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil, // modo dev: X-Debug-User-ID
		Logger:       logger.Nop(),
	}))
	t.Cleanup(ts.Close)
	return ts
}

// newSeededServer registra los usuarios dados para que las invitaciones
// de co-dueños (que exigen usuarios existentes) funcionen en modo dev.
func newSeededServer(t *testing.T, userIDs ...string) *httptest.Server {
	t.Helper()

	usersRepo := memory.NewUserRepo()
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range userIDs {
		err := usersRepo.Create(context.Background(), users.User{
			ID:           id,
			Email:        id + "@example.com",
			PasswordHash: "test-hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			t.Fatalf("seed user %s: %v", id, err)
		}
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil,
		Logger:       logger.Nop(),
		Memory: &router.MemoryAdapters{
			Users:      usersRepo,
			Pets:       memory.NewPetRepo(),
			Ownerships: memory.NewOwnershipRepo(),
			Migrations: memory.NewMigrationStore(migrate.Latest()),
		},
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_Ownership(t *testing.T) {
	ownerID := "owner-1"
	coOwnerID := "co-owner-1"
	strangerID := "stranger-1"

	ts := newSeededServer(t, ownerID, coOwnerID, strangerID)

	// 1) Owner crea mascota
	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":        "Milo",
		"description": "Perro mestizo adoptado",
		"type":        "dog",
	})

	// 2) Un extraño no puede ver ni editar
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, strangerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 get pet by stranger, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/pets/"+petID, strangerID, map[string]any{
			"name": "Hacked",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 patch by stranger, got %d", st)
		}
	}

	// El intento rechazado no mutó nada.
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet by owner, got %d body=%s", st, string(body))
		}
		var resp struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Name != "Milo" {
			t.Fatalf("expected name untouched after forbidden patch, got %q", resp.Name)
		}
	}

	// 3) Owner suma un co-dueño
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/owners", ownerID, map[string]any{
			"user_id": coOwnerID,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add owner, got %d body=%s", st, string(body))
		}
	}

	// 4) El co-dueño ya puede ver y editar
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, coOwnerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet by co-owner, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/"+petID, coOwnerID, map[string]any{
			"description": "Perro mestizo, castrado",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch by co-owner, got %d body=%s", st, string(body))
		}
	}

	// 5) La mascota aparece en el listado del co-dueño
	{
		st, body := doReq(t, ts.URL, "GET", "/pets", coOwnerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list pets, got %d body=%s", st, string(body))
		}
		var list []struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 || list[0].ID != petID {
			t.Fatalf("expected co-owner list to contain pet, got %s", string(body))
		}
	}

	// 6) Pero solo el primary puede invitar
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/owners", coOwnerID, map[string]any{
			"user_id": "someone-else",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 add owner by non-primary, got %d", st)
		}
	}

	// 7) El primary no puede quitarse sin transferir antes
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/pets/"+petID+"/owners/"+ownerID, ownerID, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 removing primary, got %d", st)
		}
	}

	// 8) Transferencia de primary y remoción del anterior
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/owners/"+coOwnerID+"/primary", ownerID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 transfer primary, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/pets/"+petID+"/owners/"+ownerID, coOwnerID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 remove former primary, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after losing ownership, got %d", st)
		}
	}
}

func TestHTTP_AddOwner_UnknownUserNotFound(t *testing.T) {
	ts := newSeededServer(t, "owner-1")

	petID := createPet(t, ts.URL, "owner-1", map[string]any{
		"name":        "Tomas",
		"description": "Gato naranja",
		"type":        "cat",
	})

	// El invitado tiene que ser un usuario registrado: 404, no 500.
	st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/owners", "owner-1", map[string]any{
		"user_id": "ghost-user",
	})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 inviting unknown user, got %d", st)
	}

	// El set de dueños no cambió.
	st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/owners", "owner-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list owners, got %d body=%s", st, string(body))
	}
	var list []struct {
		UserID string `json:"user_id"`
	}
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 || list[0].UserID != "owner-1" {
		t.Fatalf("expected owner set unchanged, got %s", string(body))
	}
}

func TestHTTP_CreatePet_ValidationErrorsPerField(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/pets", "owner-1", map[string]any{
		"name":        "Whiskers",
		"description": "",
		"type":        "cat",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", st, string(body))
	}

	var resp struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, string(body))
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "description" {
		t.Fatalf("expected single description error, got %s", string(body))
	}

	// Nada quedó persistido.
	st, body = doReq(t, ts.URL, "GET", "/pets", "owner-1", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d", st)
	}
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty pet list, got %s", string(body))
	}
}

func TestHTTP_Unauthenticated(t *testing.T) {
	ts := newTestServer(t)

	// Sin X-Debug-User-ID ni token: 401.
	st, _ := doReq(t, ts.URL, "GET", "/pets", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}
}

func TestHTTP_PreCutover_OwnerMutationsRejected(t *testing.T) {
	// Generación single-owner: la columna legacy manda y el join no existe.
	adapters := &router.MemoryAdapters{
		Users:      memory.NewUserRepo(),
		Pets:       memory.NewPetRepo(),
		Ownerships: memory.NewOwnershipRepo(),
		Migrations: memory.NewMigrationStore(migrate.GenTypedPetSingleOwner),
	}
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil,
		Logger:       logger.Nop(),
		Memory:       adapters,
	}))
	defer ts.Close()

	petID := createPet(t, ts.URL, "owner-1", map[string]any{
		"name":        "Nube",
		"description": "Coneja blanca",
		"type":        "rabbit",
	})

	// El dueño por FK puede operar normalmente.
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, "owner-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get by legacy owner, got %d body=%s", st, string(body))
		}
	}

	// Los dueños listados salen de la columna, como set de uno.
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/owners", "owner-1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list owners, got %d body=%s", st, string(body))
		}
		var list []struct {
			UserID    string `json:"user_id"`
			IsPrimary bool   `json:"is_primary"`
		}
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 || list[0].UserID != "owner-1" || !list[0].IsPrimary {
			t.Fatalf("expected synthesized single primary owner, got %s", string(body))
		}
	}

	// Sumar co-dueños requiere el cutover a multi-owner: 409.
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/owners", "owner-1", map[string]any{
			"user_id": "co-owner-1",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 add owner pre-cutover, got %d", st)
		}
	}
}

func TestHTTP_AuthFlow_RegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	// Registro
	st, body := doReq(t, ts.URL, "POST", "/auth/register", "", map[string]any{
		"email":    "ana@example.com",
		"password": "hunter2hunter2",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", st, string(body))
	}

	var reg struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &reg); err != nil || reg.Token == "" {
		t.Fatalf("expected token in register response, body=%s", string(body))
	}

	// Login
	st, body = doReq(t, ts.URL, "POST", "/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "hunter2hunter2",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}

	// /me con el user id de debug (modo dev)
	st, body = doReq(t, ts.URL, "GET", "/me", reg.User.ID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 /me, got %d body=%s", st, string(body))
	}
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
