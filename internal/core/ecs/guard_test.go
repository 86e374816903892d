package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CompileGuard_EvaluatesTickCondition(t *testing.T) {
	// Arrange
	guard, err := CompileGuard("Tick % 2 == 0")
	require.NoError(t, err)
	r := NewRegistry()

	// Act
	ok, err := guard(r, Now{Tick: 4})

	// Assert
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_CompileGuard_UsesComponentCount(t *testing.T) {
	// Arrange
	guard, err := CompileGuard(`Count("zpos") > 0`)
	require.NoError(t, err)
	r := NewRegistry()
	RegisterComponent[zPos](r, "zpos")
	id := r.Spawn()
	require.NoError(t, r.AddComponent(id, "zpos", zPos{X: 1}))

	// Act
	ok, err := guard(r, Now{Delta: time.Second})

	// Assert
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_CompileGuard_RejectsMalformedExpression(t *testing.T) {
	// Arrange & Act
	_, err := CompileGuard("this is not valid expr (")

	// Assert
	assert.Error(t, err)
}
