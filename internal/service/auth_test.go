package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/crypto"
	"github.com/contactbook/contactbook-go/internal/model"
	"github.com/contactbook/contactbook-go/internal/repository"
)

const testSecret = "test-secret"

func fastHasher() *crypto.Hasher {
	return crypto.NewHasher(crypto.HashParams{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func newTestAuthService() (*AuthService, *repository.MemoryUserRepository) {
	repo := repository.NewMemoryUserRepository()
	return NewAuthService(repo, fastHasher(), testSecret, time.Hour), repo
}

// racyUserRepo misses the fast-path lookup, leaving the duplicate to Create.
type racyUserRepo struct {
	*repository.MemoryUserRepository
}

func (r racyUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

type brokenUserRepo struct{}

func (brokenUserRepo) Create(context.Context, *model.User) error { return errors.New("db down") }
func (brokenUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, errors.New("db down")
}
func (brokenUserRepo) GetByID(context.Context, string) (*model.User, error) {
	return nil, errors.New("db down")
}

func TestRegister_TokenSubjectIsNewUser(t *testing.T) {
	svc, _ := newTestAuthService()

	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    "A@X.com ",
		Password: "secret1",
		Name:     "Alice",
	})
	require.NoError(t, err)

	claims, err := crypto.ValidateToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID())
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.Equal(t, "Alice", resp.User.Name)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   model.RegisterRequest
		field string
	}{
		{"empty email", model.RegisterRequest{Password: "password123"}, "email"},
		{"bad email", model.RegisterRequest{Email: "not-an-email", Password: "password123"}, "email"},
		{"short password", model.RegisterRequest{Email: "test@example.com", Password: "12345"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestAuthService()

			_, err := svc.Register(context.Background(), tt.req)

			ae, ok := apperr.As(err)
			require.True(t, ok, "expected *apperr.Error, got %v", err)
			assert.Equal(t, apperr.KindValidation, ae.Kind)
			assert.Contains(t, ae.Fields, tt.field)
			assert.Equal(t, 0, repo.Count())
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, model.RegisterRequest{Email: "A@x.com", Password: "other-secret"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 1, repo.Count())
}

func TestRegister_StoreConstraintDecidesRace(t *testing.T) {
	mem := repository.NewMemoryUserRepository()
	svc := NewAuthService(racyUserRepo{mem}, fastHasher(), testSecret, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, mem.Count())
}

func TestRegister_StoreFailureIsServerError(t *testing.T) {
	svc := NewAuthService(brokenUserRepo{}, fastHasher(), testSecret, time.Hour)

	_, err := svc.Register(context.Background(), model.RegisterRequest{Email: "a@x.com", Password: "secret1"})

	assert.Equal(t, apperr.KindServer, apperr.KindOf(err))
	assert.Equal(t, "Server error", err.Error())
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := crypto.ValidateToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID())
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "wrong-password"})
	_, unknownEmail := svc.Login(ctx, model.LoginRequest{Email: "ghost@x.com", Password: "wrong-password"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(unknownEmail))
}

func TestLogin_ValidationBeforeLookup(t *testing.T) {
	svc := NewAuthService(brokenUserRepo{}, fastHasher(), testSecret, time.Hour)

	_, err := svc.Login(context.Background(), model.LoginRequest{Email: "a@x.com", Password: "123"})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetUser(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.User, got)

	_, err = svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
