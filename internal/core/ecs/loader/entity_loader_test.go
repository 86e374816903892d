package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgekernel/internal/core/ecs"
)

type lPos struct {
	X float64 `hook:"x"`
	Y float64 `hook:"y"`
}

type lFollow struct {
	Target float64 `hook:"target"`
}

type lOwner struct {
	Owner int64 `hook:"owner"`
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func Test_Loader_LoadDir_SpawnsEntitiesSortedByName(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"a","components":{"pos":{"x":1,"y":2}}}`)
	writeFile(t, dir, "b.json", `{"name":"b","components":{"pos":{"x":3,"y":4}}}`)
	r := ecs.NewRegistry()
	ecs.RegisterComponent[lPos](r, "pos")
	l := New(r)

	// Act
	ids, err := l.LoadDir(dir)

	// Assert
	require.NoError(t, err)
	require.Len(t, ids, 2)
	got, err := r.GetComponent(ids[0], "pos")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.(*lPos).X)
}

func Test_Loader_ExtendsMergesParentFields(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "base.json", `{"name":"base","abstract":true,"components":{"pos":{"x":1,"y":1}}}`)
	writeFile(t, dir, "child.json", `{"name":"child","extends":"base","components":{"pos":{"y":9}}}`)
	r := ecs.NewRegistry()
	ecs.RegisterComponent[lPos](r, "pos")
	l := New(r)

	// Act
	ids, err := l.LoadDir(dir)

	// Assert
	require.NoError(t, err)
	require.Len(t, ids, 1)
	got, err := r.GetComponent(ids[0], "pos")
	require.NoError(t, err)
	pos := got.(*lPos)
	assert.Equal(t, 1.0, pos.X)
	assert.Equal(t, 9.0, pos.Y)
}

func Test_Loader_DollarKeyForcesWholesaleReplace(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "base.json", `{"name":"base","abstract":true,"components":{"pos":{"x":1,"y":1}}}`)
	writeFile(t, dir, "child.json", `{"name":"child","extends":"base","components":{"$pos":{"x":5}}}`)
	r := ecs.NewRegistry()
	ecs.RegisterComponent[lPos](r, "pos")
	l := New(r)

	// Act
	ids, err := l.LoadDir(dir)

	// Assert: the parent's pos object is replaced, not field-merged, so y is gone
	require.NoError(t, err)
	got, err := r.GetComponent(ids[0], "pos")
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.(*lPos).X)
	assert.Equal(t, 0.0, got.(*lPos).Y)
}

func Test_Loader_AbstractTemplateIsNotInstantiated(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "base.json", `{"name":"base","abstract":true,"components":{}}`)
	r := ecs.NewRegistry()
	l := New(r)

	// Act
	ids, err := l.LoadDir(dir)

	// Assert
	require.NoError(t, err)
	assert.Len(t, ids, 0)
}

func Test_Loader_SelfHookExpressionResolvesOwnID(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"name":"a","components":{"owner":{"owner":"@self"}}}`)
	r := ecs.NewRegistry()
	ecs.RegisterComponent[lOwner](r, "owner")
	l := New(r)

	// Act
	ids, err := l.LoadDir(dir)

	// Assert
	require.NoError(t, err)
	got, err := r.GetComponent(ids[0], "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(ids[0]), got.(*lOwner).Owner)
}

func Test_Loader_PercentHookExpressionSnapshotsSourceValue(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "a_leader.json", `{"name":"a_leader","components":{"pos":{"x":7,"y":8}}}`)
	writeFile(t, dir, "b_follower.json", `{"name":"b_follower","components":{"follow":{"target":"%a_leader:pos:x"}}}`)
	r := ecs.NewRegistry()
	ecs.RegisterComponent[lPos](r, "pos")
	ecs.RegisterComponent[lFollow](r, "follow")
	l := New(r)

	// Act
	ids, err := l.LoadDir(dir)

	// Assert
	require.NoError(t, err)
	got, err := r.GetComponent(ids[1], "follow")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.(*lFollow).Target)
}

func Test_Loader_HashHookExpressionQueuesLiveBinding(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, "a_leader.json", `{"name":"a_leader","components":{"pos":{"x":2,"y":3}}}`)
	writeFile(t, dir, "b_follower.json", `{"name":"b_follower","components":{"follow":{"target":"#a_leader:pos:x"}}}`)
	r := ecs.NewRegistry()
	ecs.RegisterComponent[lPos](r, "pos")
	ecs.RegisterComponent[lFollow](r, "follow")
	l := New(r)

	// Act
	ids, err := l.LoadDir(dir)
	require.NoError(t, err)
	require.NoError(t, r.Bindings.Apply(r))

	// Assert
	got, err := r.GetComponent(ids[1], "follow")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.(*lFollow).Target)
}
