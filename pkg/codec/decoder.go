package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Decoder reads records from a binary stream
type Decoder struct {
	r      *bufio.Reader
	offset int64 // Start offset of the next record
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br}
}

// Decode reads the next record.
// It returns io.EOF when the stream ends on a record boundary.
func (d *Decoder) Decode() (*Record, error) {
	start := d.offset

	id, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read record at offset %d: %w", start, err)
	}

	code, err := d.readSegment(start, "code")
	if err != nil {
		return nil, err
	}
	data, err := d.readSegment(start, "data")
	if err != nil {
		return nil, err
	}

	marker, err := d.r.ReadByte()
	if err != nil {
		return nil, d.truncated(start, "end marker", err)
	}
	if marker != EndMarker {
		return nil, fmt.Errorf("%w: record at offset %d ends with 0x%02X", ErrBadEndMarker, start, marker)
	}

	r := &Record{ID: id, Code: code, Data: data}
	d.offset += int64(r.Size())
	return r, nil
}

// Offset returns the stream offset just past the last successfully decoded record
func (d *Decoder) Offset() int64 {
	return d.offset
}

func (d *Decoder) readSegment(start int64, name string) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		return nil, d.truncated(start, name+" length", err)
	}

	seg := make([]byte, binary.BigEndian.Uint16(lenBuf[:]))
	if _, err := io.ReadFull(d.r, seg); err != nil {
		return nil, d.truncated(start, name+" segment", err)
	}
	return seg, nil
}

func (d *Decoder) truncated(start int64, field string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: record at offset %d ends inside %s", ErrTruncatedRecord, start, field)
	}
	return fmt.Errorf("read %s of record at offset %d: %w", field, start, err)
}
