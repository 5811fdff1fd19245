package record_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malzahar-project/heapfiledb/record"
)

func studentsSchema() record.Schema {
	return record.NewSchema(
		record.Column{Name: "id", Kind: record.Int},
		record.Column{Name: "gpa", Kind: record.Float},
		record.Column{Name: "name", Kind: record.Varchar, Size: 16},
	)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := studentsSchema()
	buf, err := s.Encode([]string{"42", "3.5", "alice"})
	require.NoError(t, err)
	require.Equal(t, s.RecordSize(), len(buf))

	values, err := s.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, "42", values[0])
	require.Equal(t, "3.5", values[1])
	require.Equal(t, "alice", values[2])
}

func TestEncodeArityMismatch(t *testing.T) {
	s := studentsSchema()
	_, err := s.Encode([]string{"1", "2"})
	require.Error(t, err)
}

func TestEncodeVarcharTooLong(t *testing.T) {
	s := studentsSchema()
	_, err := s.Encode([]string{"1", "1.0", "this name is far too long to fit"})
	require.Error(t, err)
}

func TestEncodeInvalidInt(t *testing.T) {
	s := studentsSchema()
	_, err := s.Encode([]string{"not-a-number", "1.0", "bob"})
	require.Error(t, err)
}

func TestDecodeBufferTooSmall(t *testing.T) {
	s := studentsSchema()
	_, err := s.Decode(make([]byte, 2))
	require.Error(t, err)
}

func TestRecordSizeFixedWidth(t *testing.T) {
	s := record.NewSchema(
		record.Column{Name: "a", Kind: record.Int},
		record.Column{Name: "b", Kind: record.Char, Size: 8},
	)
	require.Equal(t, 12, s.RecordSize())
}
