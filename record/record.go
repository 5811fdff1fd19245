// Package record implements the typed, fixed-schema record codec used to
// turn string-typed tuples into the fixed-width byte payloads the
// heap-file layer stores, and back. It is not a schema catalog: a caller
// builds a Schema value and passes it directly to Encode/Decode — there is
// no table registry, no persistence, no SQL.
package record

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ColumnKind is the type tag of a Schema column.
type ColumnKind int

const (
	Int ColumnKind = iota
	Float
	Char
	Varchar
)

// Column describes one fixed-width field of a Schema.
type Column struct {
	Name string
	Kind ColumnKind
	Size int // width in bytes for Char/Varchar; ignored for Int/Float
}

// Schema is an ordered list of columns with a fixed per-record byte size.
type Schema struct {
	Columns []Column
}

// NewSchema builds a Schema from cols.
func NewSchema(cols ...Column) Schema {
	return Schema{Columns: cols}
}

// RecordSize returns the fixed number of bytes one record occupies.
func (s Schema) RecordSize() int {
	n := 0
	for _, c := range s.Columns {
		switch c.Kind {
		case Int, Float:
			n += 4
		case Char, Varchar:
			n += c.Size
		}
	}
	return n
}

// Encode converts values (one string per column, in column order) into the
// schema's fixed-width byte representation.
func (s Schema) Encode(values []string) ([]byte, error) {
	if len(values) != len(s.Columns) {
		return nil, errors.Errorf("record: arity mismatch: schema has %d columns, got %d values", len(s.Columns), len(values))
	}
	buf := make([]byte, s.RecordSize())
	off := 0
	for i, col := range s.Columns {
		val := values[i]
		switch col.Kind {
		case Int:
			v, err := strconv.ParseInt(val, 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "record: column %s: invalid int", col.Name)
			}
			putLE32(buf[off:off+4], uint32(int32(v)))
			off += 4
		case Float:
			f, err := strconv.ParseFloat(val, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "record: column %s: invalid float", col.Name)
			}
			putLE32(buf[off:off+4], math.Float32bits(float32(f)))
			off += 4
		case Char, Varchar:
			b := []byte(val)
			if len(b) > col.Size {
				return nil, errors.Errorf("record: column %s: value %q exceeds width %d", col.Name, val, col.Size)
			}
			copy(buf[off:off+col.Size], b)
			off += col.Size
		}
	}
	return buf, nil
}

// Decode converts a fixed-width record back into one string per column.
func (s Schema) Decode(buf []byte) ([]string, error) {
	if len(buf) < s.RecordSize() {
		return nil, errors.Errorf("record: buffer too small: need %d bytes, got %d", s.RecordSize(), len(buf))
	}
	values := make([]string, 0, len(s.Columns))
	off := 0
	for _, col := range s.Columns {
		switch col.Kind {
		case Int:
			v := int32(getLE32(buf[off : off+4]))
			values = append(values, strconv.FormatInt(int64(v), 10))
			off += 4
		case Float:
			bits := getLE32(buf[off : off+4])
			f := math.Float32frombits(bits)
			values = append(values, strconv.FormatFloat(float64(f), 'g', -1, 32))
			off += 4
		case Char, Varchar:
			field := buf[off : off+col.Size]
			end := col.Size
			for k, b := range field {
				if b == 0 {
					end = k
					break
				}
			}
			values = append(values, string(field[:end]))
			off += col.Size
		}
	}
	return values, nil
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
