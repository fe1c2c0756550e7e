package game

import "trivia-live/pkg/http/ws"

// Pusher is the write side of a client connection.
type Pusher interface {
	Push(ws.Envelope) error
}

// RoleKind tags what a connection is.
type RoleKind int

const (
	RoleNone RoleKind = iota
	RoleHost
	RolePlayer
)

// Role is a connection's resolved identity.
type Role struct {
	Kind     RoleKind
	PlayerID string
}

// PlayerConn pairs a player id with its live connection.
type PlayerConn struct {
	PlayerID string
	Conn     Pusher
}

// Registry holds the bidirectional connection<->role mapping. It has no
// locking of its own: the Dispatcher's mutex covers every access, and no
// other component touches it.
type Registry struct {
	roles   map[Pusher]Role
	players map[string]Pusher
	host    Pusher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		roles:   make(map[Pusher]Role),
		players: make(map[string]Pusher),
	}
}

// RegisterHost maps conn as the host. A prior host mapping is silently
// replaced: the old connection, if still open, is left untouched but no
// longer addressed as host.
func (r *Registry) RegisterHost(conn Pusher) {
	if r.host != nil && r.host != conn {
		delete(r.roles, r.host)
	}
	r.host = conn
	r.roles[conn] = Role{Kind: RoleHost}
}

// RegisterPlayer maps conn to a player id.
func (r *Registry) RegisterPlayer(conn Pusher, playerID string) {
	r.roles[conn] = Role{Kind: RolePlayer, PlayerID: playerID}
	r.players[playerID] = conn
}

// Resolve returns the role of conn.
func (r *Registry) Resolve(conn Pusher) Role {
	return r.roles[conn]
}

// Unregister drops conn from all mappings and returns the role it had.
func (r *Registry) Unregister(conn Pusher) Role {
	role, ok := r.roles[conn]
	if !ok {
		return Role{}
	}
	delete(r.roles, conn)
	switch role.Kind {
	case RoleHost:
		if r.host == conn {
			r.host = nil
		}
	case RolePlayer:
		if r.players[role.PlayerID] == conn {
			delete(r.players, role.PlayerID)
		}
	}
	return role
}

// PlayerConnOf returns the live connection for a player id.
func (r *Registry) PlayerConnOf(playerID string) (Pusher, bool) {
	conn, ok := r.players[playerID]
	return conn, ok
}

// PlayerConns returns every live player connection.
func (r *Registry) PlayerConns() []PlayerConn {
	out := make([]PlayerConn, 0, len(r.players))
	for id, conn := range r.players {
		out = append(out, PlayerConn{PlayerID: id, Conn: conn})
	}
	return out
}

// HostConn returns the host connection if one is registered.
func (r *Registry) HostConn() (Pusher, bool) {
	if r.host == nil {
		return nil, false
	}
	return r.host, true
}

// ClearPlayers drops every player mapping. The host mapping survives.
func (r *Registry) ClearPlayers() {
	for id, conn := range r.players {
		delete(r.roles, conn)
		delete(r.players, id)
	}
}
