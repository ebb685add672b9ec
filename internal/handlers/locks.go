package handlers

import "sync"

// lockStripes bounds the number of chat mutexes regardless of how many
// chats the bot has seen.
const lockStripes = 64

// chatLocks serializes messages of one chat while other chats proceed.
// Chats that share a stripe also wait for each other.
type chatLocks struct {
	stripes [lockStripes]sync.Mutex
}

func newChatLocks() *chatLocks {
	return &chatLocks{}
}

func (l *chatLocks) stripe(chatID int64) *sync.Mutex {
	return &l.stripes[uint64(chatID)%lockStripes]
}

func (l *chatLocks) lock(chatID int64) func() {
	m := l.stripe(chatID)
	m.Lock()
	return m.Unlock
}
