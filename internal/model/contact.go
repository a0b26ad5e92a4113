package model

import "time"

// Contact is one address-book entry. OwnerID is set once at creation and never changes.
type Contact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactInput is the client-supplied body for create and update.
// Ownership is never read from the body.
type ContactInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,max=254,email"`
	Phone string `json:"phone" validate:"min=10,max=32"`
}
