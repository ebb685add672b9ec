package conversation

import (
	"context"
	"sync"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

// chatSession is what the memory store keeps for one chat.
type chatSession struct {
	state State
	olap  *model.OlapGroup
}

// MemoryStore keeps sessions in process memory.
// It uses a mutex to ensure safe concurrent access to the sessions map.
type MemoryStore struct {
	// sessions maps Telegram chat IDs to their sessions
	sessions map[int64]*chatSession
	// mu protects concurrent access to the sessions map
	mu sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
// It initializes the sessions map and prepares the store for use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*chatSession),
	}
}

// State returns the pending step of the chat, StateIdle for unknown chats.
//
// Parameters:
// - chatID: Telegram chat identifier
//
// Returns:
// - State: the pending step
// - error: always nil
func (m *MemoryStore) State(_ context.Context, chatID int64) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.sessions[chatID]; ok && session.state != "" {
		return session.state, nil
	}
	return StateIdle, nil
}

// SetState records the pending step of the chat. The cached report is kept.
func (m *MemoryStore) SetState(_ context.Context, chatID int64, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session(chatID).state = state
	return nil
}

// OlapGroup returns the report cached for the chat and whether one exists.
//
// Parameters:
// - chatID: Telegram chat identifier
//
// Returns:
// - model.OlapGroup: the cached report
// - bool: false when the chat has no report
// - error: always nil
func (m *MemoryStore) OlapGroup(_ context.Context, chatID int64) (model.OlapGroup, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[chatID]
	if !ok || session.olap == nil {
		return model.OlapGroup{}, false, nil
	}
	return *session.olap, true, nil
}

// SetOlapGroup replaces the report cached for the chat.
func (m *MemoryStore) SetOlapGroup(_ context.Context, chatID int64, group model.OlapGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session(chatID).olap = &group
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// session must be called with mu held for writing.
func (m *MemoryStore) session(chatID int64) *chatSession {
	session, ok := m.sessions[chatID]
	if !ok {
		session = &chatSession{state: StateIdle}
		m.sessions[chatID] = session
	}
	return session
}
