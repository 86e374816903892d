package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zPos struct{ X int }
type zVel struct{ X int }

func Test_Zipper_ForEach_OnlyVisitsEntitiesWithAllComponents(t *testing.T) {
	// Arrange
	r := NewRegistry()
	RegisterComponent[zPos](r, "zpos")
	RegisterComponent[zVel](r, "zvel")
	both := r.Spawn()
	onlyPos := r.Spawn()
	require.NoError(t, r.AddComponent(both, "zpos", zPos{X: 1}))
	require.NoError(t, r.AddComponent(both, "zvel", zVel{X: 2}))
	require.NoError(t, r.AddComponent(onlyPos, "zpos", zPos{X: 9}))

	// Act
	var visited []EntityID
	NewZipper(r, "zpos", "zvel").ForEach(func(id EntityID, values []any) bool {
		visited = append(visited, id)
		return true
	})

	// Assert
	assert.Equal(t, []EntityID{both}, visited)
}

func Test_Zipper_ForEach_StopsEarlyWhenFnReturnsFalse(t *testing.T) {
	// Arrange
	r := NewRegistry()
	RegisterComponent[zPos](r, "zpos")
	a := r.Spawn()
	b := r.Spawn()
	require.NoError(t, r.AddComponent(a, "zpos", zPos{X: 1}))
	require.NoError(t, r.AddComponent(b, "zpos", zPos{X: 2}))

	// Act
	count := 0
	NewZipper(r, "zpos").ForEach(func(id EntityID, values []any) bool {
		count++
		return false
	})

	// Assert
	assert.Equal(t, 1, count)
}

func Test_Zipper_ForEach_SkipsDisabledScene(t *testing.T) {
	// Arrange
	r := NewRegistry()
	RegisterSceneComponent(r)
	RegisterComponent[zPos](r, "zpos")
	visible := r.Spawn()
	hidden := r.Spawn()
	require.NoError(t, r.AddComponent(visible, "zpos", zPos{X: 1}))
	require.NoError(t, r.AddComponent(hidden, "zpos", zPos{X: 2}))
	require.NoError(t, r.AddComponent(hidden, "scene", Scene{Name: "menu", State: SceneDisabled}))

	// Act
	var visited []EntityID
	NewZipper(r, "zpos").ForEach(func(id EntityID, values []any) bool {
		visited = append(visited, id)
		return true
	})

	// Assert
	assert.Equal(t, []EntityID{visible}, visited)
}

func Test_ForEach2_TypedWrapper(t *testing.T) {
	// Arrange
	r := NewRegistry()
	RegisterComponent[zPos](r, "zpos")
	RegisterComponent[zVel](r, "zvel")
	id := r.Spawn()
	require.NoError(t, r.AddComponent(id, "zpos", zPos{X: 1}))
	require.NoError(t, r.AddComponent(id, "zvel", zVel{X: 2}))

	// Act
	var sum int
	ForEach2(r, ComponentType("zpos"), ComponentType("zvel"), func(eid EntityID, a *zPos, b *zVel) bool {
		sum = a.X + b.X
		return true
	})

	// Assert
	assert.Equal(t, 3, sum)
}
