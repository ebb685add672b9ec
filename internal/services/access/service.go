// Package access decides which chat handles may use the bot and lets admins
// edit the allow-list.
package access

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrAccessDenied is returned when a sender lacks the role an action needs.
	ErrAccessDenied = errors.New("access denied")
	// ErrEmptyUsername is returned for a handle that is blank after normalization.
	ErrEmptyUsername = errors.New("username is empty")
	// ErrUserNotFound is returned when deleting a handle that is not on the allow-list.
	ErrUserNotFound = errors.New("user not found")
)

// Role is what a chat handle may do with the bot.
type Role int

const (
	// RoleNone may only ask for help
	RoleNone Role = iota
	// RoleUser may request reports and switch servers
	RoleUser
	// RoleAdmin may also manage the allow-list
	RoleAdmin
)

// String returns the lowercase role name used in logs.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Persister writes the allow-list back to the configuration file.
type Persister interface {
	// SaveAccounts stores the complete new allow-list.
	SaveAccounts(accounts []string) error
}

// Service resolves roles and edits the allow-list.
// Admins come from configuration and never change at runtime.
type Service struct {
	// writeMu serializes mutations including their write-back
	writeMu sync.Mutex

	// mu protects accounts and admins
	mu       sync.RWMutex
	accounts []string
	admins   []string
	// persister receives every allow-list change before it takes effect
	persister Persister
}

// NewService creates a new access service.
//
// Parameters:
// - accounts: handles allowed to use the bot
// - admins: handles allowed to manage the allow-list
// - persister: receives allow-list changes; nil keeps them in memory only
//
// Returns:
// - *Service: a service with normalized, de-duplicated lists
func NewService(accounts, admins []string, persister Persister) *Service {
	return &Service{
		accounts:  normalizeAll(accounts),
		admins:    normalizeAll(admins),
		persister: persister,
	}
}

// Normalize trims spaces and one leading '@'.
func Normalize(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// ResolveRole maps a chat handle to its role. Admins need not be on the
// allow-list.
func (s *Service) ResolveRole(handle string) Role {
	handle = Normalize(handle)
	if handle == "" {
		return RoleNone
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case contains(s.admins, handle):
		return RoleAdmin
	case contains(s.accounts, handle):
		return RoleUser
	default:
		return RoleNone
	}
}

// AddUser appends the handle to the allow-list and persists it. Adding a
// handle that is already present changes nothing.
//
// Parameters:
// - handle: the handle to add, with or without '@'
//
// Returns:
// - string: the normalized handle
// - error: ErrEmptyUsername or the persistence failure
func (s *Service) AddUser(handle string) (string, error) {
	name := Normalize(handle)
	if name == "" {
		return "", ErrEmptyUsername
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.ListUsers()
	if contains(current, name) {
		return name, nil
	}
	if err := s.commit(append(current, name)); err != nil {
		return "", err
	}
	return name, nil
}

// DeleteUser removes the handle from the allow-list and persists it.
//
// Parameters:
// - handle: the handle to remove, with or without '@'
//
// Returns:
// - string: the normalized handle that was removed
// - error: ErrEmptyUsername, ErrUserNotFound or the persistence failure
func (s *Service) DeleteUser(handle string) (string, error) {
	name := Normalize(handle)
	if name == "" {
		return "", ErrEmptyUsername
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.ListUsers()
	next := make([]string, 0, len(current))
	for _, account := range current {
		if account != name {
			next = append(next, account)
		}
	}
	if len(next) == len(current) {
		return "", fmt.Errorf("%q: %w", name, ErrUserNotFound)
	}
	if err := s.commit(next); err != nil {
		return "", err
	}
	return name, nil
}

// ListUsers returns a copy of the allow-list.
func (s *Service) ListUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.accounts...)
}

// ListAdmins returns a copy of the admin list.
func (s *Service) ListAdmins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.admins...)
}

// commit persists first; the in-memory list only changes after a successful
// write.
func (s *Service) commit(accounts []string) error {
	if s.persister != nil {
		if err := s.persister.SaveAccounts(accounts); err != nil {
			return fmt.Errorf("save accounts: %w", err)
		}
	}
	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()
	return nil
}

func normalizeAll(handles []string) []string {
	out := make([]string, 0, len(handles))
	for _, handle := range handles {
		if name := Normalize(handle); name != "" && !contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}
