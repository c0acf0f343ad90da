package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextDecoder reads records from the hex text form, one line per record
type TextDecoder struct {
	r    *bufio.Reader
	line int // Number of lines consumed
}

// NewTextDecoder creates a text decoder reading from r
func NewTextDecoder(r io.Reader) *TextDecoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &TextDecoder{r: br}
}

// Decode reads the next text line and returns the record together with the
// raw bytes the line spells out. It returns io.EOF after the last line.
func (d *TextDecoder) Decode() (*Record, []byte, error) {
	line, err := d.r.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return nil, nil, fmt.Errorf("read text line %d: %w", d.line+1, err)
		}
		if line == "" {
			return nil, nil, io.EOF
		}
		return nil, nil, fmt.Errorf("%w: line %d has no trailing newline", ErrTruncatedRecord, d.line+1)
	}
	d.line++

	raw, err := ParseTextLine(line)
	if err != nil {
		return nil, nil, fmt.Errorf("line %d: %w", d.line, err)
	}

	rec, err := NewRecordCodec().Decode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("line %d: %w", d.line, err)
	}
	if rec.Size() != len(raw) {
		return nil, nil, fmt.Errorf("%w: line %d has %d tokens after the end marker",
			ErrMalformedText, d.line, len(raw)-rec.Size())
	}
	return rec, raw, nil
}

// Line returns the number of lines consumed so far
func (d *TextDecoder) Line() int {
	return d.line
}

// ParseTextLine converts one canonical text line ("HH HH ... FF\n") back into bytes.
// Tokens must be two uppercase hex digits separated by exactly one space.
func ParseTextLine(line string) ([]byte, error) {
	body, ok := strings.CutSuffix(line, "\n")
	if !ok {
		return nil, fmt.Errorf("%w: missing newline", ErrMalformedText)
	}
	if len(body) < 2 || (len(body)+1)%3 != 0 {
		return nil, fmt.Errorf("%w: line length %d is not a token sequence", ErrMalformedText, len(body))
	}

	out := make([]byte, (len(body)+1)/3)
	for i := range out {
		pos := 3 * i
		if i > 0 && body[pos-1] != ' ' {
			return nil, fmt.Errorf("%w: expected space at column %d", ErrMalformedText, pos)
		}
		hi, ok1 := fromHex(body[pos])
		lo, ok2 := fromHex(body[pos+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: bad token %q at column %d", ErrMalformedText, body[pos:pos+2], pos+1)
		}
		out[i] = hi<<4 | lo
	}

	if out[len(out)-1] != EndMarker {
		return nil, fmt.Errorf("%w: last token is %02X", ErrBadEndMarker, out[len(out)-1])
	}
	return out, nil
}

// fromHex accepts uppercase hex digits only
func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
