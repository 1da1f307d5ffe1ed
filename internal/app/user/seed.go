package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"rwchat/internal/pkg/randx"
)

// DefaultPassword is the password of the seeded demo accounts.
const DefaultPassword = "password"

// New builds an account with a fresh id, a bcrypt hash of password and a
// display name derived from the email.
func New(email, password string, role Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &User{
		ID:           randx.IdentityID(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		Role:         role,
		Name:         randx.DisplayName(email),
	}, nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Seed creates the demo writer and reader accounts when they are absent.
func Seed(ctx context.Context, dir Directory) error {
	defaults := []struct {
		email string
		role  Role
	}{
		{"writer@example.com", RoleWriter},
		{"reader@example.com", RoleReader},
	}

	for _, d := range defaults {
		u, err := New(d.email, DefaultPassword, d.role)
		if err != nil {
			return err
		}
		if err := dir.Create(ctx, u); err != nil && !errors.Is(err, ErrEmailTaken) {
			return fmt.Errorf("seed %s: %w", d.email, err)
		}
	}

	return nil
}
