package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenIssuer emite un token firmado para el usuario autenticado.
// Lo implementa el adapter jwtauth; acá solo importa el contrato.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type Service struct {
	repo   Repository
	issuer TokenIssuer
	now    func() time.Time
}

func NewService(repo Repository, issuer TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		issuer: issuer,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// AuthResult es el resultado de register/login: usuario + token de sesión.
type AuthResult struct {
	User  User
	Token string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return AuthResult{}, ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return AuthResult{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if dn := strings.TrimSpace(in.DisplayName); dn != "" {
		u.DisplayName = &dn
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return AuthResult{}, err
	}

	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: u, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: u, Token: token}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Exists dice si un usuario registrado existe. Lo consume ownership
// para validar invitaciones sin acoplarse a este repo.
func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := s.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type UpdateProfileInput struct {
	// Puntero para PATCH real: nil = no tocar.
	DisplayName *string
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if in.DisplayName != nil {
		dn := strings.TrimSpace(*in.DisplayName)
		if dn == "" {
			return User{}, ErrInvalidInput
		}
		u.DisplayName = &dn
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
