package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/crypto"
	"github.com/contactbook/contactbook-go/internal/model"
	"github.com/contactbook/contactbook-go/internal/repository"
	"github.com/contactbook/contactbook-go/internal/validation"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.KindInvalidCredentials, "Invalid credentials")
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "Email already registered")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "User not found")
)

// UserRepository is the persistence the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// AuthService handles authentication business logic.
type AuthService struct {
	repo      UserRepository
	hasher    *crypto.Hasher
	jwtSecret string
	jwtExpiry time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserRepository, hasher *crypto.Hasher, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		jwtSecret: secret,
		jwtExpiry: expiry,
		now:       time.Now,
	}
}

// Register creates a new user account and returns an auth token.
// The email lookup is a fast path; the store's unique constraint decides races.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := validation.Validate(req); err != nil {
		return model.AuthResponse{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return model.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResponse{}, serverError("lookup user", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, serverError("hash password", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, serverError("create user", err)
	}

	return s.authResponse(user)
}

// Login authenticates a user and returns an auth token.
// Unknown email and wrong password produce the same error after the same hashing work.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := validation.Validate(req); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(req.Password)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, serverError("lookup user", err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, serverError("verify password", err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, serverError("get user", err)
	}

	return user.ToResponse(), nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, serverError("generate token", err)
	}

	return model.AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}

// serverError tags an unclassified failure as KindServer. The cause stays in the chain for logging.
func serverError(op string, err error) error {
	return apperr.Wrap(apperr.KindServer, "Server error", fmt.Errorf("%s: %w", op, err))
}
