package users

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return NewRegistry(path, "admin", "1234", nil), path
}

func TestRegistry_SeedAccount(t *testing.T) {
	r, _ := newTestRegistry(t)

	ok, err := r.Authenticate("admin", "1234")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !ok {
		t.Error("expected seed account to authenticate")
	}
}

func TestRegistry_Authenticate(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.Register("alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"valid credentials", "alice", "pw1", true},
		{"wrong password", "alice", "pw2", false},
		{"unknown user", "bob", "pw1", false},
		{"empty username", "", "pw1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Authenticate(tt.username, tt.password)
			if err != nil {
				t.Fatalf("Authenticate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRegistry_Register_PersistsToFile(t *testing.T) {
	r, path := newTestRegistry(t)

	if err := r.Register("alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var db map[string]string
	if err := json.Unmarshal(data, &db); err != nil {
		t.Fatalf("users.json is not valid JSON: %v", err)
	}
	if db["admin"] != "1234" || db["alice"] != "pw1" {
		t.Errorf("unexpected users.json content: %v", db)
	}
}

func TestRegistry_Register_RejectsDuplicates(t *testing.T) {
	r, _ := newTestRegistry(t)

	if err := r.Register("alice", "pw1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("alice", "other"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	// The original password must survive the rejected attempt.
	ok, err := r.Authenticate("alice", "pw1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("original password should still authenticate")
	}
}

func TestRegistry_Register_RejectsEmptyFields(t *testing.T) {
	r, _ := newTestRegistry(t)

	if err := r.Register("", "pw"); !errors.Is(err, ErrEmptyField) {
		t.Errorf("expected ErrEmptyField for empty username, got %v", err)
	}
	if err := r.Register("alice", ""); !errors.Is(err, ErrEmptyField) {
		t.Errorf("expected ErrEmptyField for empty password, got %v", err)
	}
}

func TestRegistry_Register_RejectsUnsafeUsernames(t *testing.T) {
	r, _ := newTestRegistry(t)

	// Usernames become directory names under the image stores; anything
	// unusable as a path segment must never reach the registry.
	unsafe := []string{
		"a/b",
		`a\b`,
		"..",
		"../../etc",
		"a\nb",
		strings.Repeat("x", 65),
	}
	for _, name := range unsafe {
		if err := r.Register(name, "pw"); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("expected ErrInvalidUsername for %q, got %v", name, err)
		}
	}

	// None of the rejected names may have been persisted.
	names, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "admin" {
		t.Errorf("expected only the seed account, got %v", names)
	}
}

func TestRegistry_List(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.Register("zoe", "z"); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("alice", "a"); err != nil {
		t.Fatal(err)
	}

	names, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"admin", "alice", "zoe"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
			break
		}
	}
}
