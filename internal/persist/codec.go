// Package persist stores world objects as flat, fixed-order field lists
// encoded with the protobuf wire format.
package persist

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrMissingField = errors.New("persist: missing field")
	ErrFieldType    = errors.New("persist: unexpected field type")
)

// Writer appends fields in call order. Field numbers are assigned
// sequentially, so a Reader must read them back in the same order.
type Writer struct {
	buf  []byte
	next protowire.Number
}

func NewWriter() *Writer {
	return &Writer{next: 1}
}

func (w *Writer) tag(t protowire.Type) {
	w.buf = protowire.AppendTag(w.buf, w.next, t)
	w.next++
}

func (w *Writer) WriteBool(v bool) {
	w.tag(protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeBool(v))
}

func (w *Writer) WriteInt(v int64) {
	w.tag(protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeZigZag(v))
}

func (w *Writer) WriteDouble(v float64) {
	w.tag(protowire.Fixed64Type)
	w.buf = protowire.AppendFixed64(w.buf, math.Float64bits(v))
}

func (w *Writer) WriteString(v string) {
	w.tag(protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, v)
}

func (w *Writer) WriteBytes(v []byte) {
	w.tag(protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

// WritePoint writes a world position as one nested field.
func (w *Writer) WritePoint(x, y, z int) {
	var nested []byte
	nested = protowire.AppendVarint(nested, protowire.EncodeZigZag(int64(x)))
	nested = protowire.AppendVarint(nested, protowire.EncodeZigZag(int64(y)))
	nested = protowire.AppendVarint(nested, protowire.EncodeZigZag(int64(z)))
	w.WriteBytes(nested)
}

func (w *Writer) Bytes() []byte { return w.buf }

type field struct {
	typ    protowire.Type
	varint uint64
	fixed  uint64
	bytes  []byte
}

// Reader returns fields in the order they were written. A missing or
// malformed field yields the zero value; the first problem is kept in Err.
type Reader struct {
	fields map[protowire.Number]field
	next   protowire.Number
	err    error
}

func NewReader(data []byte) *Reader {
	r := &Reader{fields: make(map[protowire.Number]field), next: 1}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			r.fail(fmt.Errorf("persist: tag: %w", protowire.ParseError(n)))
			break
		}
		data = data[n:]
		var f field
		f.typ = typ
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(data)
		case protowire.Fixed64Type:
			f.fixed, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			r.fail(fmt.Errorf("persist: field %d: %w", num, protowire.ParseError(n)))
			break
		}
		data = data[n:]
		r.fields[num] = f
	}
	return r
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Err is the first decode problem seen so far.
func (r *Reader) Err() error { return r.err }

func (r *Reader) take(want protowire.Type) (field, bool) {
	num := r.next
	r.next++
	f, ok := r.fields[num]
	if !ok {
		r.fail(fmt.Errorf("%w %d", ErrMissingField, num))
		return field{}, false
	}
	if f.typ != want {
		r.fail(fmt.Errorf("%w: field %d", ErrFieldType, num))
		return field{}, false
	}
	return f, true
}

func (r *Reader) ReadBool() bool {
	f, ok := r.take(protowire.VarintType)
	return ok && protowire.DecodeBool(f.varint)
}

func (r *Reader) ReadInt() int64 {
	f, ok := r.take(protowire.VarintType)
	if !ok {
		return 0
	}
	return protowire.DecodeZigZag(f.varint)
}

func (r *Reader) ReadDouble() float64 {
	f, ok := r.take(protowire.Fixed64Type)
	if !ok {
		return 0
	}
	v := math.Float64frombits(f.fixed)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.fail(fmt.Errorf("%w: non-finite double", ErrFieldType))
		return 0
	}
	return v
}

func (r *Reader) ReadString() string {
	f, ok := r.take(protowire.BytesType)
	if !ok {
		return ""
	}
	return string(f.bytes)
}

func (r *Reader) ReadBytes() []byte {
	f, ok := r.take(protowire.BytesType)
	if !ok {
		return nil
	}
	return f.bytes
}

func (r *Reader) ReadPoint() (x, y, z int) {
	data := r.ReadBytes()
	var coords [3]int
	for i := range coords {
		if len(data) == 0 {
			break
		}
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			r.fail(fmt.Errorf("persist: point: %w", protowire.ParseError(n)))
			return 0, 0, 0
		}
		coords[i] = int(protowire.DecodeZigZag(v))
		data = data[n:]
	}
	return coords[0], coords[1], coords[2]
}
