package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/ssargent/procgen/pkg/codec"
)

// Verify checks that the text file of a pair spells out exactly the bytes of
// the binary file, record by record
func Verify(fs afero.Fs, base string) (*VerifyResult, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	reader, err := NewStreamReader(StreamReaderConfig{Fs: fs, FilePath: BinaryPath(base)})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	textFile, err := fs.Open(TextPath(base))
	if err != nil {
		return nil, err
	}
	defer textFile.Close()

	textDec := codec.NewTextDecoder(textFile)
	rc := codec.NewRecordCodec()

	var records int64
	for {
		rec, binErr := reader.ReadNext()
		_, raw, textErr := textDec.Decode()

		if binErr == io.EOF && textErr == io.EOF {
			return &VerifyResult{Records: records, BinaryBytes: reader.Offset()}, nil
		}
		if binErr == io.EOF || textErr == io.EOF {
			return nil, fmt.Errorf("%w: record count differs after %d records", ErrMismatch, records)
		}
		if binErr != nil {
			return nil, fmt.Errorf("binary record %d: %w", records+1, binErr)
		}
		if textErr != nil {
			return nil, fmt.Errorf("text record %d: %w", records+1, textErr)
		}

		bin, err := rc.Encode(rec)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(bin, raw) {
			return nil, fmt.Errorf("%w: record %d at offset %d", ErrMismatch, records+1, reader.Offset()-int64(len(bin)))
		}
		records++
	}
}
