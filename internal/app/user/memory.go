package user

import (
	"context"
	"strings"
	"sync"
)

// MemoryDirectory is an in-process Directory keyed by email.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	byID    map[string]*User
}

// NewMemoryDirectory returns an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byEmail: make(map[string]*User),
		byID:    make(map[string]*User),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (d *MemoryDirectory) Create(_ context.Context, u *User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := normalizeEmail(u.Email)
	if _, exists := d.byEmail[key]; exists {
		return ErrEmailTaken
	}

	stored := *u
	stored.Email = key
	d.byEmail[key] = &stored
	d.byID[stored.ID] = &stored
	return nil
}

func (d *MemoryDirectory) Rename(_ context.Context, id, name string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Name = name
	clone := *u
	return &clone, nil
}
