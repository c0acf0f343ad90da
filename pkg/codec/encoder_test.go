package codec

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestEncoder_EncodeByteAllValues(t *testing.T) {
	for v := 0; v < 256; v++ {
		var bin, text bytes.Buffer
		enc := NewEncoder(&bin, &text)

		if err := enc.EncodeByte(byte(v)); err != nil {
			t.Fatalf("EncodeByte(%d) failed: %v", v, err)
		}

		if !bytes.Equal(bin.Bytes(), []byte{byte(v)}) {
			t.Errorf("value %d: binary got % X", v, bin.Bytes())
		}
		if want := fmt.Sprintf("%02X ", v); text.String() != want {
			t.Errorf("value %d: text got %q, want %q", v, text.String(), want)
		}
		if enc.Written() != 1 {
			t.Errorf("value %d: Written got %d, want 1", v, enc.Written())
		}
	}
}

func TestEncoder_MultipleRecordsStream(t *testing.T) {
	var bin, text bytes.Buffer
	enc := NewEncoder(&bin, &text)

	if err := enc.EncodeRecord(0x01, []byte{0xAA}, nil); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := enc.EncodeRecord(0x02, nil, []byte{0xBB}); err != nil {
		t.Fatalf("second record: %v", err)
	}

	wantText := "01 00 01 AA 00 00 FF\n02 00 00 00 01 BB FF\n"
	if text.String() != wantText {
		t.Errorf("text got %q, want %q", text.String(), wantText)
	}
	if enc.Written() != 14 || bin.Len() != 14 {
		t.Errorf("Written=%d, binary len=%d, want 14", enc.Written(), bin.Len())
	}
}

func TestEncoder_InvalidLengthWritesNothing(t *testing.T) {
	var bin, text bytes.Buffer
	enc := NewEncoder(&bin, &text)

	err := enc.EncodeRecord(0x01, []byte{0x01}, make([]byte, MaxSegmentSize+1))
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
	if bin.Len() != 0 || text.Len() != 0 {
		t.Errorf("sinks should be untouched, got %d binary and %d text bytes", bin.Len(), text.Len())
	}
}

func TestEncoder_SinkFailures(t *testing.T) {
	boom := errors.New("disk full")

	testCases := []struct {
		name      string
		binLimit  int
		textLimit int
		wantBin   int
		wantText  int
	}{
		{name: "binary fails first", binLimit: 0, textLimit: 100, wantBin: 0, wantText: 0},
		{name: "binary fails mid record", binLimit: 4, textLimit: 100, wantBin: 4, wantText: 4},
		{name: "text fails mid record", binLimit: 100, textLimit: 3, wantBin: 4, wantText: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bin := &limitedWriter{limit: tc.binLimit, err: boom}
			text := &limitedWriter{limit: tc.textLimit, err: boom}
			enc := NewEncoder(bin, text)

			err := enc.EncodeRecord(0x07, []byte{1, 2, 3}, []byte{4, 5, 6})
			if !errors.Is(err, ErrSinkUnwritable) {
				t.Fatalf("expected ErrSinkUnwritable, got %v", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("error should wrap the sink cause: %v", err)
			}
			if bin.writes != tc.wantBin || text.writes != tc.wantText {
				t.Errorf("writes: binary %d text %d, want %d and %d",
					bin.writes, text.writes, tc.wantBin, tc.wantText)
			}
			if enc.Written() != int64(tc.wantText) {
				t.Errorf("Written() = %d, want %d bytes present in both sinks", enc.Written(), tc.wantText)
			}
		})
	}
}

// limitedWriter accepts limit writes and then fails
type limitedWriter struct {
	limit  int
	writes int
	err    error
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.writes >= w.limit {
		return 0, w.err
	}
	w.writes++
	return len(p), nil
}
