package codec

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/ccoveille/go-safecast"
)

const (
	// EndMarker terminates every record
	EndMarker byte = 0xFF

	// Overhead is the number of framing bytes in a record:
	// ProcessID(1) + CodeSize(2) + DataSize(2) + EndMarker(1)
	Overhead = 6

	// MaxSegmentSize is the largest segment a 16-bit length field can describe
	MaxSegmentSize = math.MaxUint16
)

// Record represents one synthetic process descriptor
type Record struct {
	ID   byte   // Process identifier
	Code []byte // Code segment
	Data []byte // Data segment
}

// NewRecord creates a record after checking both segments fit the format
func NewRecord(id byte, code, data []byte) (*Record, error) {
	r := &Record{ID: id, Code: code, Data: data}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that both segment lengths fit in 16 bits
func (r *Record) Validate() error {
	if _, err := segmentLength("code", r.Code); err != nil {
		return err
	}
	if _, err := segmentLength("data", r.Data); err != nil {
		return err
	}
	return nil
}

// Size returns the total size of the record when encoded
func (r *Record) Size() int {
	return Overhead + len(r.Code) + len(r.Data)
}

// TextSize returns the size of the record's text form: three characters per byte
func (r *Record) TextSize() int {
	return 3 * r.Size()
}

// Equal reports whether two records carry the same id and segments
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.ID == o.ID && bytes.Equal(r.Code, o.Code) && bytes.Equal(r.Data, o.Data)
}

// RecordCodec handles serialization and deserialization of whole records in memory
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a record into its binary form
// Format: [ProcessID(1)][CodeSize(2)][Code][DataSize(2)][Data][0xFF]
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	bin, _, err := c.EncodePair(r)
	return bin, err
}

// EncodeText serializes a record into its hex text form
func (c *RecordCodec) EncodeText(r *Record) ([]byte, error) {
	_, text, err := c.EncodePair(r)
	return text, err
}

// EncodePair serializes a record into both forms at once
func (c *RecordCodec) EncodePair(r *Record) ([]byte, []byte, error) {
	var bin, text bytes.Buffer
	bin.Grow(r.Size())
	text.Grow(r.TextSize())

	if err := NewEncoder(&bin, &text).Encode(r); err != nil {
		return nil, nil, err
	}
	return bin.Bytes(), text.Bytes(), nil
}

// Decode deserializes the record at the start of data.
// Bytes after the end marker are ignored; use Record.Size to find the next record.
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	r, err := NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty input", ErrTruncatedRecord)
		}
		return nil, err
	}
	return r, nil
}

// segmentLength narrows a segment length to the 16-bit wire field
func segmentLength(name string, seg []byte) (uint16, error) {
	n, err := safecast.ToUint16(len(seg))
	if err != nil {
		return 0, fmt.Errorf("%w: %s segment is %d bytes, limit is %d",
			ErrInvalidLength, name, len(seg), MaxSegmentSize)
	}
	return n, nil
}
