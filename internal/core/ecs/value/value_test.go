package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Value_JSONRoundTrip(t *testing.T) {
	// Arrange
	v := Object(map[string]Value{
		"name":   String("cobra"),
		"health": Int(100),
		"speed":  Real(3.5),
		"flags":  Array(Bool(true), Bool(false)),
	})

	// Act
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var decoded Value
	err = json.Unmarshal(raw, &decoded)
	require.NoError(t, err)

	// Assert
	name, ok := decoded.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "cobra", name.Str)
	health, _ := decoded.Get("health")
	assert.Equal(t, int64(100), health.Int)
	speed, _ := decoded.Get("speed")
	assert.Equal(t, 3.5, speed.Real)
}

func Test_Value_ToAnyAndFromAnyAreInverse(t *testing.T) {
	// Arrange
	v := Object(map[string]Value{
		"a": Int(1),
		"b": Array(String("x"), String("y")),
	})

	// Act
	back := FromAny(v.ToAny())

	// Assert
	a, _ := back.Get("a")
	assert.Equal(t, int64(1), a.Int)
	b, _ := back.Get("b")
	assert.Len(t, b.Array, 2)
	assert.Equal(t, "x", b.Array[0].Str)
}

func Test_Value_GetOnNonObjectReturnsFalse(t *testing.T) {
	// Arrange
	v := Int(5)

	// Act
	_, ok := v.Get("anything")

	// Assert
	assert.False(t, ok)
}

func Test_Value_IsNull(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.False(t, Int(0).IsNull())
}
