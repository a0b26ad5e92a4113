package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/model"
	"github.com/contactbook/contactbook-go/internal/repository"
	"github.com/contactbook/contactbook-go/internal/validation"
)

// ErrContactNotFound is returned both for a missing contact and for one owned by another user.
var ErrContactNotFound = apperr.New(apperr.KindNotFound, "Contact not found")

// ContactRepository is the owner-scoped persistence the contact service needs.
// Update and Delete must match id and owner in a single conditional statement.
type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, ownerID, id string) error
}

// ContactService handles contact business logic. Every method takes the caller's id
// as resolved by the auth middleware.
type ContactService struct {
	repo ContactRepository
	now  func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(repo ContactRepository) *ContactService {
	return &ContactService{repo: repo, now: time.Now}
}

// List returns all contacts owned by ownerID. An owner with no contacts gets an empty slice.
func (s *ContactService) List(ctx context.Context, ownerID string) ([]model.Contact, error) {
	contacts, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, serverError("list contacts", err)
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, nil
}

// Create validates in and stores a new contact owned by ownerID.
func (s *ContactService) Create(ctx context.Context, ownerID string, in model.ContactInput) (model.Contact, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Validate(in); err != nil {
		return model.Contact{}, err
	}

	now := s.now().UTC()
	c := model.Contact{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &c); err != nil {
		return model.Contact{}, serverError("create contact", err)
	}
	return c, nil
}

// Update replaces name, email and phone of the contact id owned by ownerID.
func (s *ContactService) Update(ctx context.Context, ownerID, id string, in model.ContactInput) (model.Contact, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Validate(in); err != nil {
		return model.Contact{}, err
	}

	id, ok := canonicalID(id)
	if !ok {
		return model.Contact{}, ErrContactNotFound
	}

	c := model.Contact{
		ID:        id,
		OwnerID:   ownerID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		UpdatedAt: s.now().UTC(),
	}

	if err := s.repo.Update(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return model.Contact{}, ErrContactNotFound
		}
		return model.Contact{}, serverError("update contact", err)
	}
	return c, nil
}

// Delete removes the contact id owned by ownerID.
func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	id, ok := canonicalID(id)
	if !ok {
		return ErrContactNotFound
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return ErrContactNotFound
		}
		return serverError("delete contact", err)
	}
	return nil
}

// canonicalID returns id in the lower-case hyphenated form ids are stored in.
// uuid.Parse also accepts upper case, braces, urn:uuid: and hyphen-less input.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
