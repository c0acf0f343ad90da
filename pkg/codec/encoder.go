package codec

import (
	"fmt"
	"io"
)

const hexDigits = "0123456789ABCDEF"

// Encoder writes records to a binary sink and a text sink in lockstep.
// Each logical byte goes to both sinks before the next byte is written.
// The binary byte is written first, so if the text sink fails the binary sink
// holds one byte more than the text sink. Written counts only bytes that
// reached both sinks; store.Recover trims such a pair back to whole records.
type Encoder struct {
	bin     io.Writer
	text    io.Writer
	written int64 // Logical bytes written to both sinks
	buf     [3]byte
}

// NewEncoder creates an encoder over the given binary and text sinks
func NewEncoder(bin, text io.Writer) *Encoder {
	return &Encoder{bin: bin, text: text}
}

// EncodeByte writes b verbatim to the binary sink and as "HH " to the text sink
func (e *Encoder) EncodeByte(b byte) error {
	return e.encode(b, ' ')
}

// EncodeRecord writes one record: id, code length, code, data length, data, end marker.
// Both lengths are checked before the first byte is written.
func (e *Encoder) EncodeRecord(id byte, code, data []byte) error {
	codeLen, err := segmentLength("code", code)
	if err != nil {
		return err
	}
	dataLen, err := segmentLength("data", data)
	if err != nil {
		return err
	}

	if err := e.EncodeByte(id); err != nil {
		return err
	}
	if err := e.encodeSegment(codeLen, code); err != nil {
		return err
	}
	if err := e.encodeSegment(dataLen, data); err != nil {
		return err
	}

	// The text form ends each record with "FF\n" instead of "FF "
	return e.encode(EndMarker, '\n')
}

// Encode writes r to both sinks
func (e *Encoder) Encode(r *Record) error {
	return e.EncodeRecord(r.ID, r.Code, r.Data)
}

// Written returns the number of logical bytes written so far
func (e *Encoder) Written() int64 {
	return e.written
}

func (e *Encoder) encodeSegment(n uint16, seg []byte) error {
	if err := e.EncodeByte(byte(n >> 8)); err != nil {
		return err
	}
	if err := e.EncodeByte(byte(n)); err != nil {
		return err
	}
	for _, b := range seg {
		if err := e.EncodeByte(b); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encode(b, sep byte) error {
	e.buf[0] = b
	if _, err := e.bin.Write(e.buf[:1]); err != nil {
		return fmt.Errorf("%w: binary sink at byte %d: %w", ErrSinkUnwritable, e.written, err)
	}

	e.buf[0] = hexDigits[b>>4]
	e.buf[1] = hexDigits[b&0x0F]
	e.buf[2] = sep
	if _, err := e.text.Write(e.buf[:]); err != nil {
		return fmt.Errorf("%w: text sink at byte %d: %w", ErrSinkUnwritable, e.written, err)
	}

	e.written++
	return nil
}
