package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leader struct {
	Pos float64 `hook:"pos"`
}

type follower struct {
	Target float64 `hook:"target"`
}

func Test_BindingManager_ApplyCopiesSourceIntoDest(t *testing.T) {
	// Arrange
	r := NewRegistry()
	RegisterComponent[leader](r, "leader")
	RegisterComponent[follower](r, "follower")
	leaderID := r.Spawn()
	followerID := r.Spawn()
	require.NoError(t, r.AddComponent(leaderID, "leader", leader{Pos: 5}))
	require.NoError(t, r.AddComponent(followerID, "follower", follower{Target: 0}))
	r.Bindings.Add(&Binding{
		ID:     followerID,
		Source: HookRef{Entity: leaderID, Component: "leader", Field: "pos"},
		Dest:   HookRef{Entity: followerID, Component: "follower", Field: "target"},
	})

	// Act
	err := r.Bindings.Apply(r)

	// Assert
	require.NoError(t, err)
	got, err := r.GetComponent(followerID, "follower")
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.(*follower).Target)
}

func Test_BindingManager_RemoveOwnedByDropsOnlyThatEntitysBindings(t *testing.T) {
	// Arrange
	m := NewBindingManager()
	m.Add(&Binding{ID: 1})
	m.Add(&Binding{ID: 2})
	m.Add(&Binding{ID: 1})

	// Act
	m.RemoveOwnedBy(1)

	// Assert
	assert.Equal(t, 1, m.Len())
}

func Test_GlobalHooks_RegisterGetSet(t *testing.T) {
	// Arrange
	value := 3.0
	g := NewGlobalHooks()
	g.Register("leader.pos", func() (any, bool) { return value, true }, func(v any) error {
		value = v.(float64)
		return nil
	})

	// Act
	got, err := g.Get("leader.pos")
	require.NoError(t, err)
	err = g.Set("leader.pos", 9.0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
	assert.Equal(t, 9.0, value)
}

func Test_GlobalHooks_GetUnknownNameErrors(t *testing.T) {
	// Arrange
	g := NewGlobalHooks()

	// Act
	_, err := g.Get("missing")

	// Assert
	assert.Error(t, err)
}

func Test_CopyInto_AssignableTypes(t *testing.T) {
	// Arrange
	var dst float64

	// Act
	err := CopyInto(&dst, 4.0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4.0, dst)
}
