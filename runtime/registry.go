package runtime

import (
	"log/slog"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/errors"
	"sync"
)

type Set[K comparable] map[K]struct{}

type session struct {
	identity domain.Identity
	sink     contract.EventSink
	state    ConnState
	rooms    Set[domain.RoomID]
}

// Registry is the connection manager.
// It binds each live connection to its identity and sink and maintains
// the room -> connections and user -> connections indexes.
// A single RWMutex protects the three maps so they never disagree.
type Registry struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sessions    map[contract.ConnectionID]*session
	roomMembers map[domain.RoomID]Set[contract.ConnectionID]
	userConns   map[domain.UserID]Set[contract.ConnectionID]
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:         log,
		sessions:    make(map[contract.ConnectionID]*session),
		roomMembers: make(map[domain.RoomID]Set[contract.ConnectionID]),
		userConns:   make(map[domain.UserID]Set[contract.ConnectionID]),
	}
}

// Register binds an authenticated connection to its identity.
// It reports whether this is the first live connection of the user.
func (r *Registry) Register(connID contract.ConnectionID, identity domain.Identity, sink contract.EventSink) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connID]; ok {
		return false, errors.ErrAlreadyRegistered
	}
	r.sessions[connID] = &session{
		identity: identity,
		sink:     sink,
		state:    Authenticated,
		rooms:    make(Set[domain.RoomID]),
	}
	conns, ok := r.userConns[identity.UserID]
	if !ok {
		conns = make(Set[contract.ConnectionID])
		r.userConns[identity.UserID] = conns
	}
	conns[connID] = struct{}{}
	r.log.Debug("Connection registered", "conn_id", connID, "user_id", identity.UserID.String(), "connections", len(conns))
	return len(conns) == 1, nil
}

// SubscribeAll adds the connection to every given room in one step
// and moves it to the Subscribed state.
func (r *Registry) SubscribeAll(connID contract.ConnectionID, roomIDs []domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return errors.ErrUnknownConnection
	}
	for _, roomID := range roomIDs {
		r.subscribe(connID, s, roomID)
	}
	s.state = Subscribed
	return nil
}

// SubscribeUser adds the room to every live connection of the user.
// It returns the number of connections subscribed.
func (r *Registry) SubscribeUser(userID domain.UserID, roomID domain.RoomID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for connID := range r.userConns[userID] {
		if s, ok := r.sessions[connID]; ok {
			r.subscribe(connID, s, roomID)
			count++
		}
	}
	return count
}

// UnsubscribeUser removes the room from every live connection of the user.
func (r *Registry) UnsubscribeUser(userID domain.UserID, roomID domain.RoomID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for connID := range r.userConns[userID] {
		if s, ok := r.sessions[connID]; ok {
			r.unsubscribe(connID, s, roomID)
			count++
		}
	}
	return count
}

// DropRoom removes the subscriber set of a deleted room.
// It returns the number of connections that were subscribed.
func (r *Registry) DropRoom(roomID domain.RoomID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.roomMembers[roomID]
	for connID := range members {
		if s, ok := r.sessions[connID]; ok {
			delete(s.rooms, roomID)
		}
	}
	delete(r.roomMembers, roomID)
	return len(members)
}

// Unregister removes the connection from every subscriber set.
// It returns the rooms the connection was subscribed to and whether
// it was the last live connection of its user.
func (r *Registry) Unregister(connID contract.ConnectionID) ([]domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	rooms := make([]domain.RoomID, 0, len(s.rooms))
	for roomID := range s.rooms {
		rooms = append(rooms, roomID)
		r.unsubscribe(connID, s, roomID)
	}
	s.state = Closed
	delete(r.sessions, connID)

	userID := s.identity.UserID
	conns := r.userConns[userID]
	delete(conns, connID)
	last := len(conns) == 0
	if last {
		delete(r.userConns, userID)
	}
	r.log.Debug("Connection unregistered", "conn_id", connID, "user_id", userID.String(), "rooms", len(rooms))
	return rooms, last
}

// GetSinksForRoom returns a snapshot of the sinks subscribed to the room.
// Later subscription changes do not affect the returned slice.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for connID := range members {
		if s, exists := r.sessions[connID]; exists {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

func (r *Registry) IsOnline(userID domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.userConns[userID]) > 0
}

// State returns the lifecycle state of a connection, Closed when unknown.
func (r *Registry) State(connID contract.ConnectionID) ConnState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[connID]; ok {
		return s.state
	}
	return Closed
}

// Rooms lists the rooms a connection is subscribed to.
func (r *Registry) Rooms(connID contract.ConnectionID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	rooms := make([]domain.RoomID, 0, len(s.rooms))
	for roomID := range s.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// ConnectionCount is the number of live connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) subscribe(connID contract.ConnectionID, s *session, roomID domain.RoomID) {
	members, ok := r.roomMembers[roomID]
	if !ok {
		members = make(Set[contract.ConnectionID])
		r.roomMembers[roomID] = members
	}
	members[connID] = struct{}{}
	s.rooms[roomID] = struct{}{}
}

func (r *Registry) unsubscribe(connID contract.ConnectionID, s *session, roomID domain.RoomID) {
	delete(s.rooms, roomID)
	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, connID)
		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
}
