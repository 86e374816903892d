package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgekernel/internal/core/ecs/value"
)

func Test_WriterReader_PrimitiveRoundTrip(t *testing.T) {
	// Arrange
	w := NewWriter()
	w.WriteUint8(7)
	w.WriteBool(true)
	w.WriteUint32(1234)
	w.WriteInt64(-9)
	w.WriteFloat64(3.25)
	w.WriteString("forgekernel")

	// Act
	r := NewReader(w.Bytes())

	// Assert
	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), u8)

	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), u32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-9), i64)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, 3.25, f64)

	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "forgekernel", s)

	assert.Equal(t, 0, r.Remaining())
}

func Test_Reader_ShortBufferReturnsError(t *testing.T) {
	// Arrange
	r := NewReader([]byte{1, 2})

	// Act
	_, err := r.ReadUint32()

	// Assert
	assert.Error(t, err)
}

func Test_Optional_PresentAndAbsent(t *testing.T) {
	// Arrange
	w := NewWriter()
	w.WriteOptional(true, func(w *Writer) { w.WriteInt64(42) })
	w.WriteOptional(false, func(w *Writer) { w.WriteInt64(99) })
	r := NewReader(w.Bytes())

	// Act
	var got int64
	present1, err := r.ReadOptional(func(r *Reader) error {
		v, err := r.ReadInt64()
		got = v
		return err
	})
	require.NoError(t, err)
	present2, err := r.ReadOptional(func(r *Reader) error {
		v, err := r.ReadInt64()
		got = v
		return err
	})
	require.NoError(t, err)

	// Assert
	assert.True(t, present1)
	assert.Equal(t, int64(42), got)
	assert.False(t, present2)
}

func Test_EncodeDecodeValue_Object(t *testing.T) {
	// Arrange
	v := value.Object(map[string]value.Value{
		"name":  value.String("cobra"),
		"speed": value.Real(2.5),
		"tags":  value.Array(value.String("fast"), value.Bool(true)),
	})
	w := NewWriter()

	// Act
	EncodeValue(w, v)
	decoded, err := DecodeValue(NewReader(w.Bytes()))

	// Assert
	require.NoError(t, err)
	name, ok := decoded.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "cobra", name.Str)
	speed, _ := decoded.Get("speed")
	assert.Equal(t, 2.5, speed.Real)
	tags, _ := decoded.Get("tags")
	assert.Len(t, tags.Array, 2)
}
