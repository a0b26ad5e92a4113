package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/contactbook/contactbook-go/internal/model"
)

// ErrContactNotFound covers both a missing contact and one owned by someone else.
var ErrContactNotFound = errors.New("contact not found")

const contactColumns = `id, owner_id, name, email, phone, created_at, updated_at`

// ContactRepository handles contact persistence. Every statement is scoped by owner_id.
type ContactRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(db *sql.DB, dialect Dialect) *ContactRepository {
	return &ContactRepository{db: db, dialect: dialect}
}

// Create inserts a contact.
func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	query := r.dialect.rebind(`INSERT INTO contacts (` + contactColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// ListByOwner returns all contacts owned by ownerID in creation order.
func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Contact, error) {
	query := r.dialect.rebind(`SELECT ` + contactColumns + `
		FROM contacts WHERE owner_id = ? ORDER BY created_at ASC, id ASC`)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]model.Contact, 0)
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Update overwrites name, email and phone of the contact matching both c.ID and c.OwnerID.
// The match is a single conditional UPDATE; zero affected rows means ErrContactNotFound.
// On success c.CreatedAt is filled from the stored row.
func (r *ContactRepository) Update(ctx context.Context, c *model.Contact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	update := r.dialect.rebind(`UPDATE contacts SET name = ?, email = ?, phone = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`)

	result, err := tx.ExecContext(ctx, update, c.Name, c.Email, c.Phone, c.UpdatedAt, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if affected == 0 {
		return ErrContactNotFound
	}

	created := r.dialect.rebind(`SELECT created_at FROM contacts WHERE id = ? AND owner_id = ?`)
	if err := tx.QueryRowContext(ctx, created, c.ID, c.OwnerID).Scan(&c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrContactNotFound
		}
		return fmt.Errorf("select contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes the contact matching both id and ownerID in one conditional DELETE.
func (r *ContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := r.dialect.rebind(`DELETE FROM contacts WHERE id = ? AND owner_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if affected == 0 {
		return ErrContactNotFound
	}
	return nil
}
