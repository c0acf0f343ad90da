package store

import (
	"io"

	"github.com/spf13/afero"

	"github.com/ssargent/procgen/pkg/codec"
)

// StreamReader provides sequential access to records in a binary stream file
type StreamReader struct {
	file   afero.File
	dec    *codec.Decoder
	config StreamReaderConfig
}

// NewStreamReader opens the binary stream file described by config
func NewStreamReader(config StreamReaderConfig) (*StreamReader, error) {
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}

	file, err := config.Fs.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	// Seek to start offset if specified
	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &StreamReader{
		file:   file,
		dec:    codec.NewDecoder(file),
		config: config,
	}, nil
}

// ReadNext reads the record at the current offset.
// It returns io.EOF after the last complete record.
func (r *StreamReader) ReadNext() (*codec.Record, error) {
	return r.dec.Decode()
}

// Offset returns the file offset just past the last record read
func (r *StreamReader) Offset() int64 {
	return r.config.StartOffset + r.dec.Offset()
}

// Iterator returns a streaming iterator for records
func (r *StreamReader) Iterator() RecordIterator {
	return &streamIterator{reader: r}
}

// Close closes the stream reader
func (r *StreamReader) Close() error {
	return r.file.Close()
}

// streamIterator implements RecordIterator over a StreamReader
type streamIterator struct {
	reader *StreamReader
	record *codec.Record
	err    error
}

func (it *streamIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.record, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *streamIterator) Record() *codec.Record {
	return it.record
}

// Err returns the error that stopped iteration, or nil at a clean end of stream
func (it *streamIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *streamIterator) Close() error {
	// The underlying reader is owned by the caller
	return nil
}
