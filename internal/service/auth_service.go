package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/task-manager/internal/auth"
	"github.com/Tomlord1122/task-manager/internal/domain"
	"github.com/Tomlord1122/task-manager/internal/repository"
)

// maxSecretBytes is the longest secret bcrypt hashes without truncation.
const maxSecretBytes = 72

// RegisterRequest holds the credentials for a new account.
type RegisterRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Secret string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds the credentials presented at login. No format rules are
// applied so that every failure looks the same to the caller.
type LoginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a user. It never carries the hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthService registers users, checks credentials and verifies tokens.
type AuthService interface {
	// Register creates an account and returns a token for it.
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)

	// Login returns a fresh token when email and secret match. Unknown emails
	// and wrong secrets both fail with ErrInvalidCredentials.
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)

	// Verify resolves a token to the user id it was issued for.
	Verify(token string) (uuid.UUID, error)

	// CurrentUser loads the profile of an authenticated caller.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error)
}

type authService struct {
	users      repository.UserRepository
	issuer     *auth.Issuer
	bcryptCost int
	log        *slog.Logger
	now        func() time.Time

	// dummyHash is compared against when the email is unknown so that the
	// response time does not reveal whether the account exists.
	dummyHash []byte
}

func NewAuthService(users repository.UserRepository, issuer *auth.Issuer, bcryptCost int, log *slog.Logger) (AuthService, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &authService{
		users:      users,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		log:        log,
		now:        dbNow,
		dummyHash:  dummy,
	}, nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Secret) > maxSecretBytes {
		return nil, validationErrorf("password cannot exceed %d bytes", maxSecretBytes)
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user.ID)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := NormalizeEmail(req.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Secret))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	// No stored secret can be this long, and bcrypt would only compare a prefix.
	if len(req.Secret) > maxSecretBytes {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Secret[:maxSecretBytes]))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

func (s *authService) Verify(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	userID, err := s.issuer.Verify(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

func (s *authService) issue(userID uuid.UUID) (*TokenResponse, error) {
	token, expiresAt, err := s.issuer.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}
