package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHostReplacement(t *testing.T) {
	r := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	r.RegisterHost(first)
	r.RegisterHost(second)

	host, ok := r.HostConn()
	require.True(t, ok)
	assert.Same(t, second, host.(*fakeConn))

	// The old connection is no longer addressed as host but was not closed.
	assert.Equal(t, RoleNone, r.Resolve(first).Kind)
	assert.Equal(t, RoleHost, r.Resolve(second).Kind)
}

func TestRegistryPlayerLookup(t *testing.T) {
	r := NewRegistry()
	conn := &fakeConn{}
	r.RegisterPlayer(conn, "p1")

	role := r.Resolve(conn)
	assert.Equal(t, RolePlayer, role.Kind)
	assert.Equal(t, "p1", role.PlayerID)

	byID, ok := r.PlayerConnOf("p1")
	require.True(t, ok)
	assert.Same(t, conn, byID.(*fakeConn))

	assert.Len(t, r.PlayerConns(), 1)
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	player := &fakeConn{}
	r.RegisterHost(host)
	r.RegisterPlayer(player, "p1")

	role := r.Unregister(player)
	assert.Equal(t, RolePlayer, role.Kind)
	assert.Equal(t, "p1", role.PlayerID)
	_, ok := r.PlayerConnOf("p1")
	assert.False(t, ok)

	role = r.Unregister(host)
	assert.Equal(t, RoleHost, role.Kind)
	_, ok = r.HostConn()
	assert.False(t, ok)

	// Unknown connections resolve to no role.
	assert.Equal(t, RoleNone, r.Unregister(&fakeConn{}).Kind)
}

func TestRegistryClearPlayersKeepsHost(t *testing.T) {
	r := NewRegistry()
	host := &fakeConn{}
	r.RegisterHost(host)
	r.RegisterPlayer(&fakeConn{}, "p1")
	r.RegisterPlayer(&fakeConn{}, "p2")

	r.ClearPlayers()

	assert.Empty(t, r.PlayerConns())
	_, ok := r.HostConn()
	assert.True(t, ok)
}
