package runtime

import (
	"sort"
	"sync"

	"termchat/contract"
	"termchat/domain"
)

// liveSession pairs the session state with the sink delivering events to
// the underlying connection.
type liveSession struct {
	session domain.Session
	sink    contract.EventSink
}

// Registry tracks every authenticated connection and the room it is in.
// All state lives in memory and is rebuilt from scratch on restart; a
// single mutex guards both maps so membership reads never see a
// half-applied update.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*liveSession
	usernames map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[string]*liveSession),
		usernames: make(map[string]string),
	}
}

// Open registers a connection for an authenticated identity. A second
// login under the same username leaves the previous connection open but
// repoints the username index at the new one.
func (r *Registry) Open(connID string, identity domain.Identity, sink contract.EventSink) domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := domain.Session{
		ConnID:   connID,
		Username: identity.Username,
		Role:     identity.Role,
	}
	r.sessions[connID] = &liveSession{session: session, sink: sink}
	r.usernames[identity.Username] = connID
	return session
}

// SetRoom moves the connection into a room. An empty room clears the
// membership. Returns false for unknown connections.
func (r *Registry) SetRoom(connID, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	live, ok := r.sessions[connID]
	if !ok {
		return false
	}
	live.session.Room = room
	return true
}

func (r *Registry) ByConnection(connID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live, ok := r.sessions[connID]
	if !ok {
		return domain.Session{}, false
	}
	return live.session, true
}

func (r *Registry) ByUsername(username string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.usernames[username]
	if !ok {
		return domain.Session{}, false
	}
	live, ok := r.sessions[connID]
	if !ok {
		return domain.Session{}, false
	}
	return live.session, true
}

// MembersOf returns the usernames currently inside a room, sorted for
// deterministic snapshots.
func (r *Registry) MembersOf(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []string
	for _, live := range r.sessions {
		if live.session.Room == room {
			members = append(members, live.session.Username)
		}
	}
	sort.Strings(members)
	return members
}

// SinksForRoom returns the sinks of every connection inside a room.
func (r *Registry) SinksForRoom(room string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, live := range r.sessions {
		if live.session.Room == room {
			sinks = append(sinks, live.sink)
		}
	}
	return sinks
}

// SinkFor returns the sink of a single connection.
func (r *Registry) SinkFor(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	return live.sink, true
}

// Close removes a connection and returns its last session state. The
// username index entry is dropped only if it still points at this
// connection, so a relogin from elsewhere survives the old socket dying.
func (r *Registry) Close(connID string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live, ok := r.sessions[connID]
	if !ok {
		return domain.Session{}, false
	}
	delete(r.sessions, connID)
	if r.usernames[live.session.Username] == connID {
		delete(r.usernames, live.session.Username)
	}
	return live.session, true
}
