package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/contactbook/contactbook-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = `id, email, name, password_hash, created_at, updated_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

// Create inserts a new user. The unique index on email is the authority on duplicates:
// a concurrent registration that lost the race gets ErrDuplicateEmail here.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := r.dialect.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := r.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := r.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}
