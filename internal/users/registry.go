// Package users manages the flat-file credential registry backing login and
// sign-up. Credentials are stored as a plain username -> password JSON
// object; hashing is intentionally absent to stay compatible with existing
// users.json files.
package users

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"nautilus/internal/gallery"
	"nautilus/internal/store"
)

var (
	// ErrExists is returned when registering a username that is already
	// taken. Duplicate sign-up replacing an existing password would let
	// anyone hijack an account, so the registry rejects it.
	ErrExists = errors.New("username already exists")

	// ErrEmptyField is returned when username or password is blank.
	ErrEmptyField = errors.New("username and password must not be empty")

	// ErrInvalidUsername is returned when the username cannot serve as a
	// storage directory segment. Accepting it would create an account whose
	// scan and gallery operations fail on every request.
	ErrInvalidUsername = errors.New("username contains unsupported characters")
)

// Registry is the user credential store over users.json.
type Registry struct {
	file *store.File[map[string]string]
}

// NewRegistry creates a registry backed by path. A fresh store is seeded
// with the given account so a new installation has one working login.
func NewRegistry(path, seedUser, seedPass string, logger *zap.Logger) *Registry {
	return &Registry{
		file: store.New(path, func() map[string]string {
			seed := map[string]string{}
			if seedUser != "" {
				seed[seedUser] = seedPass
			}
			return seed
		}, logger),
	}
}

// Authenticate checks username/password against the registry. The file is
// re-read on every call so accounts created by another process are visible
// on the next login attempt.
func (r *Registry) Authenticate(username, password string) (bool, error) {
	db, err := r.file.Load()
	if err != nil {
		return false, fmt.Errorf("loading users: %w", err)
	}
	stored, ok := db[username]
	return ok && stored == password, nil
}

// Register adds a new account. Empty fields, existing usernames and
// usernames unusable as directory names are rejected.
func (r *Registry) Register(username, password string) error {
	if username == "" || password == "" {
		return ErrEmptyField
	}
	if err := gallery.ValidateName(username); err != nil {
		return ErrInvalidUsername
	}
	_, err := r.file.Update(func(db map[string]string) (map[string]string, error) {
		if _, taken := db[username]; taken {
			return nil, ErrExists
		}
		db[username] = password
		return db, nil
	})
	return err
}

// Exists reports whether a username is registered.
func (r *Registry) Exists(username string) (bool, error) {
	db, err := r.file.Load()
	if err != nil {
		return false, fmt.Errorf("loading users: %w", err)
	}
	_, ok := db[username]
	return ok, nil
}

// List returns all registered usernames, sorted.
func (r *Registry) List() ([]string, error) {
	db, err := r.file.Load()
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	names := make([]string, 0, len(db))
	for name := range db {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
