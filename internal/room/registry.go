// Package room tracks live connections, their room membership, and the
// fan-out of document and presence events between room members.
package room

import "sync"

// EventSink is one connection's outbound side. Implementations must be
// safe for concurrent Send calls.
type EventSink interface {
	Send(event string, payload any) error
}

// Member is the wire shape of one room member in presence payloads.
type Member struct {
	ConnID   string `json:"connectionId"`
	Username string `json:"username"`
}

type session struct {
	username string
	roomID   string
	sink     EventSink
}

// Registry owns the connection table. A session exists from Connect to
// Remove and belongs to at most one room at any instant.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Connect registers a fresh, unjoined session for connID.
func (r *Registry) Connect(connID string, sink EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = &session{username: "Anonymous", sink: sink}
}

// Join binds connID to roomID, replacing any prior mapping. Returns
// false when the connection is unknown.
func (r *Registry) Join(connID, roomID, username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return false
	}
	s.roomID = roomID
	s.username = username
	return true
}

// Remove drops the session and reports its last known identity so the
// caller can notify the room it left behind. Safe to call twice; the
// second call finds nothing.
func (r *Registry) Remove(connID string) (username, roomID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return "", "", false
	}
	delete(r.sessions, connID)
	return s.username, s.roomID, true
}

// Members snapshots the membership of roomID. The empty room id is
// what unjoined sessions carry and never names a room.
func (r *Registry) Members(roomID string) []Member {
	if roomID == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []Member
	for id, s := range r.sessions {
		if s.roomID == roomID {
			members = append(members, Member{ConnID: id, Username: s.username})
		}
	}
	return members
}

// SinksFor snapshots the sinks of every member of roomID except the
// excluded connection.
func (r *Registry) SinksFor(roomID, exclude string) []EventSink {
	if roomID == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []EventSink
	for id, s := range r.sessions {
		if s.roomID == roomID && id != exclude {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

// Sink returns the outbound side of one connection.
func (r *Registry) Sink(connID string) (EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	return s.sink, true
}
