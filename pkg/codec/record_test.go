package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRecordCodec_ConcreteScenario(t *testing.T) {
	codec := NewRecordCodec()
	r := &Record{ID: 0x07, Code: []byte{0x01, 0x02}, Data: []byte{}}

	bin, text, err := codec.EncodePair(r)
	if err != nil {
		t.Fatalf("EncodePair failed: %v", err)
	}

	wantBin := []byte{0x07, 0x00, 0x02, 0x01, 0x02, 0x00, 0x00, 0xFF}
	if !bytes.Equal(bin, wantBin) {
		t.Errorf("binary mismatch: got % X, want % X", bin, wantBin)
	}

	wantText := "07 00 02 01 02 00 00 FF\n"
	if string(text) != wantText {
		t.Errorf("text mismatch: got %q, want %q", text, wantText)
	}
}

func TestRecordCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewRecordCodec()

	testCases := []struct {
		name string
		id   byte
		code []byte
		data []byte
	}{
		{name: "typical sizes", id: 0x2A, code: bytes.Repeat([]byte{0xC3}, 48), data: bytes.Repeat([]byte{0x5A}, 128)},
		{name: "empty code", id: 0x01, code: []byte{}, data: []byte{0x10, 0x20}},
		{name: "empty data", id: 0x02, code: []byte{0x10, 0x20}, data: nil},
		{name: "both empty", id: 0x00, code: nil, data: nil},
		{name: "end marker inside segments", id: 0xFF, code: []byte{0xFF, 0xFF}, data: []byte{0xFF}},
		{name: "every byte value", id: 0x80, code: allBytes(), data: allBytes()},
		{name: "maximum code segment", id: 0x10, code: make([]byte, MaxSegmentSize), data: []byte{0x01}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := &Record{ID: tc.id, Code: tc.code, Data: tc.data}

			encoded, err := codec.Encode(in)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			if len(encoded) != 6+len(tc.code)+len(tc.data) {
				t.Errorf("encoded length: got %d, want %d", len(encoded), 6+len(tc.code)+len(tc.data))
			}

			out, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if out.ID != tc.id {
				t.Errorf("ID mismatch: got %02X, want %02X", out.ID, tc.id)
			}
			if !bytes.Equal(out.Code, tc.code) {
				t.Errorf("Code mismatch: got %d bytes, want %d", len(out.Code), len(tc.code))
			}
			if !bytes.Equal(out.Data, tc.data) {
				t.Errorf("Data mismatch: got %d bytes, want %d", len(out.Data), len(tc.data))
			}
		})
	}
}

func TestRecordCodec_TextMirrorsBinary(t *testing.T) {
	codec := NewRecordCodec()
	r := &Record{ID: 0x9C, Code: allBytes()[:80], Data: allBytes()[100:]}

	bin, text, err := codec.EncodePair(r)
	if err != nil {
		t.Fatalf("EncodePair failed: %v", err)
	}

	if !strings.HasSuffix(string(text), " FF\n") {
		t.Errorf("text does not end with \" FF\\n\": %q", text[len(text)-8:])
	}
	if strings.Count(string(text), "\n") != 1 {
		t.Errorf("expected exactly one newline per record")
	}

	stripped := strings.NewReplacer(" ", "", "\n", "").Replace(string(text))
	if len(stripped) != 2*len(bin) {
		t.Fatalf("hex digits: got %d, want %d", len(stripped), 2*len(bin))
	}
	for i, b := range bin {
		tok := stripped[2*i : 2*i+2]
		if tok != hexToken(b) {
			t.Fatalf("byte %d: text token %s, binary %02X", i, tok, b)
		}
	}
}

func TestRecordCodec_LengthBoundaries(t *testing.T) {
	codec := NewRecordCodec()

	t.Run("zero length segments encode as 00 00", func(t *testing.T) {
		bin, err := codec.Encode(&Record{ID: 0x33})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		want := []byte{0x33, 0x00, 0x00, 0x00, 0x00, 0xFF}
		if !bytes.Equal(bin, want) {
			t.Errorf("got % X, want % X", bin, want)
		}
	})

	t.Run("65535 encodes as FF FF", func(t *testing.T) {
		bin, err := codec.Encode(&Record{ID: 0x01, Data: make([]byte, 65535)})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if bin[3] != 0xFF || bin[4] != 0xFF {
			t.Errorf("data length field: got %02X %02X, want FF FF", bin[3], bin[4])
		}
	})

	for _, seg := range []string{"code", "data"} {
		t.Run("65536 "+seg+" bytes is rejected", func(t *testing.T) {
			r := &Record{ID: 0x01}
			if seg == "code" {
				r.Code = make([]byte, 65536)
			} else {
				r.Data = make([]byte, 65536)
			}

			_, err := codec.Encode(r)
			if !errors.Is(err, ErrInvalidLength) {
				t.Fatalf("expected ErrInvalidLength, got %v", err)
			}
			if !strings.Contains(err.Error(), seg+" segment") {
				t.Errorf("error should name the %s segment: %v", seg, err)
			}
		})
	}
}

func TestNewRecord(t *testing.T) {
	r, err := NewRecord(0x05, []byte{1, 2, 3}, []byte{4, 5})
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	if r.Size() != 11 {
		t.Errorf("Size: got %d, want 11", r.Size())
	}
	if r.TextSize() != 33 {
		t.Errorf("TextSize: got %d, want 33", r.TextSize())
	}

	if _, err := NewRecord(0x05, make([]byte, 70000), nil); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
}

func TestRecord_Equal(t *testing.T) {
	a := &Record{ID: 1, Code: []byte{1}, Data: []byte{2}}
	b := &Record{ID: 1, Code: []byte{1}, Data: []byte{2}}
	c := &Record{ID: 2, Code: []byte{1}, Data: []byte{2}}

	if !a.Equal(b) {
		t.Error("identical records should be equal")
	}
	if a.Equal(c) {
		t.Error("records with different ids should differ")
	}
	if a.Equal(nil) {
		t.Error("record should not equal nil")
	}
}

func TestRecordCodec_DecodeEmpty(t *testing.T) {
	_, err := NewRecordCodec().Decode(nil)
	if !errors.Is(err, ErrTruncatedRecord) {
		t.Errorf("expected ErrTruncatedRecord, got %v", err)
	}
}

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func hexToken(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0x0F]})
}
