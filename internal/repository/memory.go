package repository

import (
	"context"
	"sync"

	"github.com/contactbook/contactbook-go/internal/model"
)

// MemoryUserRepository is an in-process user store for development and tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

// Create inserts a user, enforcing email uniqueness under the write lock.
func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

// GetByID retrieves a user by their ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

// Count returns the number of stored users.
func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// MemoryContactRepository is an in-process contact store for development and tests.
// Contacts are kept in insertion order.
type MemoryContactRepository struct {
	mu       sync.RWMutex
	contacts []model.Contact
}

// NewMemoryContactRepository creates an empty MemoryContactRepository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{}
}

// Create appends a contact.
func (r *MemoryContactRepository) Create(_ context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts = append(r.contacts, *c)
	return nil
}

// ListByOwner returns all contacts owned by ownerID in insertion order.
func (r *MemoryContactRepository) ListByOwner(_ context.Context, ownerID string) ([]model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Contact, 0)
	for _, c := range r.contacts {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Update overwrites the mutable fields of the contact matching c.ID and c.OwnerID.
func (r *MemoryContactRepository) Update(_ context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(c.OwnerID, c.ID)
	if i < 0 {
		return ErrContactNotFound
	}

	stored := &r.contacts[i]
	stored.Name = c.Name
	stored.Email = c.Email
	stored.Phone = c.Phone
	stored.UpdatedAt = c.UpdatedAt
	c.CreatedAt = stored.CreatedAt
	return nil
}

// Delete removes the contact matching id and ownerID.
func (r *MemoryContactRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ownerID, id)
	if i < 0 {
		return ErrContactNotFound
	}
	r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
	return nil
}

func (r *MemoryContactRepository) indexOf(ownerID, id string) int {
	for i, c := range r.contacts {
		if c.ID == id && c.OwnerID == ownerID {
			return i
		}
	}
	return -1
}
