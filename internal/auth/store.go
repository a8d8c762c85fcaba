// Package auth holds the fixed set of accounts a session can log in as.
package auth

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is an immutable-after-load username → password table.  Lookups
// are exact and case-sensitive.
type Store struct {
	mu    sync.RWMutex
	users map[string]string
}

// DefaultUsers is the period-appropriate account list every fresh Store
// starts with.
var DefaultUsers = map[string]string{ //nolint:gochecknoglobals
	"root":     "root",
	"sysadmin": "admin123",
	"user":     "password",
	"guest":    "guest",
}

// New returns a Store holding a copy of users.
func New(users map[string]string) *Store {
	s := &Store{users: make(map[string]string, len(users))}
	for u, p := range users {
		s.users[u] = p
	}
	return s
}

// Default returns a Store holding DefaultUsers.
func Default() *Store { return New(DefaultUsers) }

// Verify reports whether password is the password for username.  An
// unknown username never verifies.
func (s *Store) Verify(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want, ok := s.users[username]
	return ok && want == password
}

// Has reports whether username is a known account.
func (s *Store) Has(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok
}

// Users returns the account names in sorted order.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.users))
	for u := range s.users {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// file is the on-disk shape of a users file:
//
//	users:
//	  root: root
//	  operator: s3cret
type file struct {
	Users   map[string]string `yaml:"users"`
	Replace bool              `yaml:"replace"`
}

// LoadFile reads a YAML users file.  Accounts are merged over the
// defaults unless the file sets "replace: true".
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML users document.  See LoadFile.
func Parse(data []byte) (*Store, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	for u := range f.Users {
		if u == "" {
			return nil, fmt.Errorf("parse users file: empty username")
		}
		for _, r := range u {
			if r == ' ' || r == '\t' {
				return nil, fmt.Errorf("parse users file: username %q contains whitespace", u)
			}
		}
	}

	s := New(nil)
	if !f.Replace {
		s = Default()
	}
	for u, p := range f.Users {
		s.users[u] = p
	}
	if len(s.users) == 0 {
		return nil, fmt.Errorf("parse users file: no accounts defined")
	}
	return s, nil
}
