//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../../mocks/mock_directory.go -package=mocks

/*
Package user contains core data structures and logic related to user identity.

It defines the account record kept by the identity directory, the Writer/Reader roles,
and the Directory contract that admission and profile renaming depend on.
*/
package user

import (
	"context"
	"errors"
)

// Role is the access level an identity requests for chat connections.
type Role string

const (
	// RoleWriter may send chat messages; at most one writer chat connection exists at a time.
	RoleWriter Role = "Writer"

	// RoleReader only receives broadcast chat messages.
	RoleReader Role = "Reader"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleWriter || r == RoleReader
}

var (
	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when creating an account whose email already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// User represents an account in the identity directory.
type User struct {
	// ID is the unique identifier (UUID) of the account.
	ID string `json:"id"`

	// Email is the login key; unique across the directory.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string `json:"-"`

	// Role is the account's role, fixed at signup.
	Role Role `json:"role"`

	// Name is the display name shown to other participants.
	Name string `json:"name"`
}

// Directory is the keyed store of accounts.
type Directory interface {
	// FindByEmail returns the account registered under email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID returns the account with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// Create stores a new account, or returns ErrEmailTaken.
	Create(ctx context.Context, u *User) error

	// Rename updates the display name and returns the updated account.
	Rename(ctx context.Context, id, name string) (*User, error)
}
