// Package servers holds the configured iiko servers and the one currently
// selected for reports.
package servers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

var (
	// ErrUnknownServer is returned for a name that is not in the registry.
	ErrUnknownServer = errors.New("unknown server")
	// ErrNoServers is returned when the registry would be empty.
	ErrNoServers = errors.New("server list is empty")
)

// Registry is the ordered server list shared by all chats and the name of the
// server reports currently go to.
type Registry struct {
	// mu protects current
	mu sync.RWMutex
	// servers keeps configuration order
	servers []model.Server
	// current indexes servers
	current int
}

// NewRegistry creates a registry whose first server is current.
//
// Parameters:
// - servers: the configured servers; names must be unique and non-blank
//
// Returns:
// - *Registry: a registry holding a copy of servers
// - error: ErrNoServers or a validation error
func NewRegistry(servers []model.Server) (*Registry, error) {
	if len(servers) == 0 {
		return nil, ErrNoServers
	}
	seen := make(map[string]struct{}, len(servers))
	for _, server := range servers {
		if strings.TrimSpace(server.Name) == "" {
			return nil, errors.New("server name is empty")
		}
		if _, ok := seen[server.Name]; ok {
			return nil, fmt.Errorf("duplicate server name %q", server.Name)
		}
		seen[server.Name] = struct{}{}
	}

	list := make([]model.Server, len(servers))
	copy(list, servers)
	return &Registry{servers: list}, nil
}

// Current returns the server reports go to.
func (r *Registry) Current() model.Server {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.servers[r.current]
}

// List returns a copy of the servers in configuration order.
func (r *Registry) List() []model.Server {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Server, len(r.servers))
	copy(out, r.servers)
	return out
}

// Names returns the server names in configuration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.servers))
	for _, server := range r.servers {
		names = append(names, server.Name)
	}
	return names
}

// Lookup finds a server by name without changing the current one.
//
// Parameters:
// - name: exact server name
//
// Returns:
// - model.Server: the matching server
// - error: wraps ErrUnknownServer when there is no match
func (r *Registry) Lookup(name string) (model.Server, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.index(name); idx >= 0 {
		return r.servers[idx], nil
	}
	return model.Server{}, fmt.Errorf("%q: %w", name, ErrUnknownServer)
}

// Switch makes name the current server for every chat.
//
// Parameters:
// - name: exact server name
//
// Returns:
// - model.Server: the new current server
// - error: wraps ErrUnknownServer; the current server is then unchanged
func (r *Registry) Switch(name string) (model.Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(name)
	if idx < 0 {
		return model.Server{}, fmt.Errorf("%q: %w", name, ErrUnknownServer)
	}
	r.current = idx
	return r.servers[idx], nil
}

func (r *Registry) index(name string) int {
	for i, server := range r.servers {
		if server.Name == name {
			return i
		}
	}
	return -1
}
