package persist

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	magic          = "moongates"
	CurrentVersion = 1

	fieldMagic   protowire.Number = 1
	fieldVersion protowire.Number = 2
	fieldRecord  protowire.Number = 3

	recordKind protowire.Number = 1
	recordData protowire.Number = 2
)

var ErrNotSnapshot = errors.New("persist: not a moongate snapshot")

// Record is one saved object. Data is the output of a Writer.
type Record struct {
	Kind string
	Data []byte
}

type Snapshot struct {
	Version int
	Records []Record
}

func (s *Snapshot) Add(kind string, w *Writer) {
	s.Records = append(s.Records, Record{Kind: kind, Data: w.Bytes()})
}

func EncodeSnapshot(s Snapshot) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMagic, protowire.BytesType)
	b = protowire.AppendString(b, magic)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(CurrentVersion))
	for _, rec := range s.Records {
		var inner []byte
		inner = protowire.AppendTag(inner, recordKind, protowire.BytesType)
		inner = protowire.AppendString(inner, rec.Kind)
		inner = protowire.AppendTag(inner, recordData, protowire.BytesType)
		inner = protowire.AppendBytes(inner, rec.Data)
		b = protowire.AppendTag(b, fieldRecord, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	}
	return b
}

// DecodeSnapshot parses data. Records decoded before a corruption are
// returned together with the error so callers can keep what survived.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	sawMagic := false
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return snap, fmt.Errorf("persist: snapshot tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldMagic && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return snap, fmt.Errorf("persist: magic: %w", protowire.ParseError(m))
			}
			if string(v) != magic {
				return snap, ErrNotSnapshot
			}
			sawMagic = true
			n = m
		case num == fieldVersion && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return snap, fmt.Errorf("persist: version: %w", protowire.ParseError(m))
			}
			snap.Version = int(v)
			n = m
		case num == fieldRecord && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return snap, fmt.Errorf("persist: record: %w", protowire.ParseError(m))
			}
			rec, err := decodeRecord(v)
			if err != nil {
				return snap, err
			}
			snap.Records = append(snap.Records, rec)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return snap, fmt.Errorf("persist: field %d: %w", num, protowire.ParseError(n))
			}
		}
		data = data[n:]
	}
	if !sawMagic {
		return snap, ErrNotSnapshot
	}
	return snap, nil
}

func decodeRecord(data []byte) (Record, error) {
	var rec Record
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return rec, fmt.Errorf("persist: record tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
		} else {
			var v []byte
			v, n = protowire.ConsumeBytes(data)
			switch num {
			case recordKind:
				rec.Kind = string(v)
			case recordData:
				rec.Data = v
			}
		}
		if n < 0 {
			return rec, fmt.Errorf("persist: record field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return rec, nil
}
