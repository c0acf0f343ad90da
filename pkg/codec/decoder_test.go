package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestDecoder_Stream(t *testing.T) {
	codec := NewRecordCodec()
	records := []*Record{
		{ID: 0x01, Code: []byte{0x10}, Data: []byte{0x20, 0x21}},
		{ID: 0x02},
		{ID: 0xFF, Code: bytes.Repeat([]byte{0xFF}, 300), Data: []byte{0xFF}},
	}

	var stream bytes.Buffer
	for _, r := range records {
		b, err := codec.Encode(r)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		stream.Write(b)
	}

	dec := NewDecoder(&stream)
	var offset int64
	for i, want := range records {
		got, err := dec.Decode()
		if err != nil {
			t.Fatalf("record %d: Decode failed: %v", i, err)
		}
		if !got.Equal(want) {
			t.Errorf("record %d mismatch", i)
		}
		offset += int64(want.Size())
		if dec.Offset() != offset {
			t.Errorf("record %d: Offset got %d, want %d", i, dec.Offset(), offset)
		}
	}

	if _, err := dec.Decode(); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestDecoder_TruncatedAtEveryPrefix(t *testing.T) {
	encoded, err := NewRecordCodec().Encode(&Record{ID: 0x07, Code: []byte{1, 2}, Data: []byte{3}})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for n := 1; n < len(encoded); n++ {
		_, err := NewDecoder(bytes.NewReader(encoded[:n])).Decode()
		if !errors.Is(err, ErrTruncatedRecord) {
			t.Errorf("prefix %d: expected ErrTruncatedRecord, got %v", n, err)
		}
	}
}

func TestDecoder_TruncatedSecondRecordKeepsOffset(t *testing.T) {
	codec := NewRecordCodec()
	first, _ := codec.Encode(&Record{ID: 0x01, Code: []byte{1}})
	second, _ := codec.Encode(&Record{ID: 0x02, Data: []byte{2, 3}})

	stream := append(append([]byte{}, first...), second[:4]...)
	dec := NewDecoder(bytes.NewReader(stream))

	if _, err := dec.Decode(); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := dec.Decode(); !errors.Is(err, ErrTruncatedRecord) {
		t.Fatalf("expected ErrTruncatedRecord, got %v", err)
	}
	if dec.Offset() != int64(len(first)) {
		t.Errorf("Offset should stay at last good record: got %d, want %d", dec.Offset(), len(first))
	}
}

func TestDecoder_BadEndMarker(t *testing.T) {
	encoded, _ := NewRecordCodec().Encode(&Record{ID: 0x07, Code: []byte{1, 2}})
	encoded[len(encoded)-1] = 0xFE

	_, err := NewDecoder(bytes.NewReader(encoded)).Decode()
	if !errors.Is(err, ErrBadEndMarker) {
		t.Fatalf("expected ErrBadEndMarker, got %v", err)
	}
}

func TestDecoder_ReaderError(t *testing.T) {
	boom := errors.New("io failure")
	_, err := NewDecoder(io.MultiReader(bytes.NewReader([]byte{0x01, 0x00}), errReader{boom})).Decode()
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying error, got %v", err)
	}
	if errors.Is(err, ErrTruncatedRecord) {
		t.Errorf("reader failures should not be reported as truncation")
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
