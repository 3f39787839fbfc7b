package users

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// -------------------------
// Fakes
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID    map[string]User
	byEmail map[string]User
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}, byEmail: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return errors.New("repo: email taken")
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

type testIssuer struct{}

func (testIssuer) Issue(userID, email string) (string, error) {
	return "token-for-" + userID, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_HashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, testIssuer{})

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Ana@Example.COM ",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.User.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %s", res.User.Email)
	}
	if res.User.PasswordHash == "hunter2hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("hunter2hunter2")) != nil {
		t.Fatalf("stored hash does not match password")
	}
	if res.Token == "" {
		t.Fatalf("expected session token")
	}
}

func TestService_Register_RejectsWeakInput(t *testing.T) {
	svc := NewService(newTestRepo(), testIssuer{})

	cases := []RegisterInput{
		{Email: "", Password: "hunter2hunter2"},
		{Email: "not-an-email", Password: "hunter2hunter2"},
		{Email: "ana@example.com", Password: "short"},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Register(%#v): expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestService_Register_EmailTaken(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, testIssuer{})

	in := RegisterInput{Email: "ana@example.com", Password: "hunter2hunter2"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register #1 error: %v", err)
	}

	// Mismo mail con otra capitalización: sigue tomado.
	in.Email = "ANA@example.com"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Login(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, testIssuer{})

	reg, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	res, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Fatalf("expected same user")
	}

	// Password incorrecta y mail inexistente devuelven el MISMO error:
	// no se filtra cuál de los dos falló.
	if _, err := svc.Login(context.Background(), "ana@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_UpdateProfile_DisplayName(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, testIssuer{})

	reg, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if reg.User.DisplayName != nil {
		t.Fatalf("expected DisplayName unset at sign-up")
	}

	dn := "Ana P."
	u, err := svc.UpdateProfile(context.Background(), reg.User.ID, UpdateProfileInput{DisplayName: &dn})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if u.DisplayName == nil || *u.DisplayName != "Ana P." {
		t.Fatalf("expected DisplayName set, got %v", u.DisplayName)
	}

	empty := "  "
	if _, err := svc.UpdateProfile(context.Background(), reg.User.ID, UpdateProfileInput{DisplayName: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}
