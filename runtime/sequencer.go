package runtime

import (
	"room-chat/domain"
	"sync"
)

// Sequencer serializes commit-then-publish sections per room, so that
// the publish order of a room equals its commit order.
// Rooms never wait on each other.
type Sequencer struct {
	mu    sync.Mutex
	locks map[domain.RoomID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func NewSequencer() *Sequencer {
	return &Sequencer{locks: make(map[domain.RoomID]*roomLock)}
}

// Do runs fn while holding the lock of the room.
func (s *Sequencer) Do(roomID domain.RoomID, fn func() error) error {
	lock := s.acquire(roomID)
	defer s.release(roomID, lock)
	return fn()
}

func (s *Sequencer) acquire(roomID domain.RoomID) *roomLock {
	s.mu.Lock()
	lock, ok := s.locks[roomID]
	if !ok {
		lock = &roomLock{}
		s.locks[roomID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

// release drops the lock entry once nobody waits on it.
func (s *Sequencer) release(roomID domain.RoomID, lock *roomLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, roomID)
	}
	s.mu.Unlock()
}

// Size is the number of rooms currently holding or waiting on a lock.
func (s *Sequencer) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
