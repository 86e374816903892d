// Package codec implements the binary wire format from spec.md §6:
// big-endian fixed-width integers, IEEE-754 floats, single-byte bools,
// length-prefixed strings and arrays, a single-byte discriminator for
// optional values, and a tagged encoding for the structured-value tree.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"forgekernel/internal/core/ecs/value"
)

// Writer accumulates encoded bytes. The zero value is ready to use.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) WriteUint8(v uint8) { w.buf.WriteByte(v) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes a uint32 byte length followed by the raw UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteOptional writes a single presence byte, then, if present, calls
// write to encode the payload.
func (w *Writer) WriteOptional(present bool, write func(*Writer)) {
	w.WriteBool(present)
	if present {
		write(w)
	}
}

// Reader consumes bytes in the same layout Writer produces. On
// truncation it returns a plain error naming the byte count needed,
// the offset, and the bytes left.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return fmt.Errorf("codec: need %d bytes at offset %d, have %d", n, r.pos, len(r.buf)-r.pos)
	}
	return nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	u, err := r.ReadUint64()
	return int64(u), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	u, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadOptional reads the presence byte and, if set, calls read.
func (r *Reader) ReadOptional(read func(*Reader) error) (bool, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return present, err
	}
	return true, read(r)
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Structured-value tags, one per value.Kind, written as a single byte
// ahead of the kind-specific payload.
const (
	tagNull uint8 = iota
	tagBool
	tagInt
	tagReal
	tagString
	tagArray
	tagObject
)

// EncodeValue appends v's tagged binary encoding to w.
func EncodeValue(w *Writer, v value.Value) {
	switch v.Kind {
	case value.KindNull:
		w.WriteUint8(tagNull)
	case value.KindBool:
		w.WriteUint8(tagBool)
		w.WriteBool(v.Bool)
	case value.KindInt:
		w.WriteUint8(tagInt)
		w.WriteInt64(v.Int)
	case value.KindReal:
		w.WriteUint8(tagReal)
		w.WriteFloat64(v.Real)
	case value.KindString:
		w.WriteUint8(tagString)
		w.WriteString(v.Str)
	case value.KindArray:
		w.WriteUint8(tagArray)
		w.WriteUint32(uint32(len(v.Array)))
		for _, e := range v.Array {
			EncodeValue(w, e)
		}
	case value.KindObject:
		w.WriteUint8(tagObject)
		w.WriteUint32(uint32(len(v.Object)))
		for _, k := range v.Keys() {
			w.WriteString(k)
			EncodeValue(w, v.Object[k])
		}
	}
}

// DecodeValue reads one tagged value from r.
func DecodeValue(r *Reader) (value.Value, error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case tagNull:
		return value.Null(), nil
	case tagBool:
		b, err := r.ReadBool()
		return value.Bool(b), err
	case tagInt:
		i, err := r.ReadInt64()
		return value.Int(i), err
	case tagReal:
		f, err := r.ReadFloat64()
		return value.Real(f), err
	case tagString:
		s, err := r.ReadString()
		return value.String(s), err
	case tagArray:
		n, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		items := make([]value.Value, n)
		for i := range items {
			items[i], err = DecodeValue(r)
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.Array(items...), nil
	case tagObject:
		n, err := r.ReadUint32()
		if err != nil {
			return value.Value{}, err
		}
		obj := make(map[string]value.Value, n)
		for i := uint32(0); i < n; i++ {
			k, err := r.ReadString()
			if err != nil {
				return value.Value{}, err
			}
			v, err := DecodeValue(r)
			if err != nil {
				return value.Value{}, err
			}
			obj[k] = v
		}
		return value.Object(obj), nil
	default:
		return value.Value{}, fmt.Errorf("codec: unknown structured-value tag %d", tag)
	}
}
