// Package repository provides directory implementations for tests and local
// development. Production deployments plug in the marketplace user service.
package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	userDomain "github.com/hdtickets/admission/internal/user/domain"
)

// MemoryDirectory is an in-process user directory. It is safe for concurrent
// use and returns copies so callers cannot mutate shared state.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*userDomain.User
}

// NewMemoryDirectory creates a directory seeded with the given users.
func NewMemoryDirectory(users ...*userDomain.User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[uuid.UUID]*userDomain.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = cloneUser(u)
	}
	return d
}

// FindByID returns the user with the given ID.
// Returns ErrUserNotFound if no such user exists.
func (d *MemoryDirectory) FindByID(_ context.Context, id uuid.UUID) (*userDomain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// FindByEmail returns the user with the given email (case-insensitive).
// Returns ErrUserNotFound if no such user exists.
func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (*userDomain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, userDomain.ErrUserNotFound
}

// UpdateCustomPermissions replaces the custom permission grants of a user.
func (d *MemoryDirectory) UpdateCustomPermissions(_ context.Context, id uuid.UUID, permissions []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return userDomain.ErrUserNotFound
	}
	u.CustomPermissions = append([]string(nil), permissions...)
	return nil
}

// UpdateRole replaces the role of a user.
func (d *MemoryDirectory) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return userDomain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

// Add inserts or replaces a user. Intended for test setup.
func (d *MemoryDirectory) Add(u *userDomain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users[u.ID] = cloneUser(u)
}

func cloneUser(u *userDomain.User) *userDomain.User {
	clone := *u
	clone.CustomPermissions = append([]string(nil), u.CustomPermissions...)
	return &clone
}
