package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ssargent/procgen/pkg/codec"
)

// PairWriter writes records to a binary file and its text mirror
type PairWriter struct {
	bin      afero.File
	text     afero.File
	binBuf   *bufio.Writer
	textBuf  *bufio.Writer
	enc      *codec.Encoder
	config   PairWriterConfig
	base     int64 // Binary file size when the pair was opened
	textBase int64 // Text file size when the pair was opened
	closed   bool
	failed   bool
}

// NewPairWriter opens the file pair described by config.
// The text file is opened first; if the binary file then fails to open, the
// text file is closed but left on disk.
func NewPairWriter(config PairWriterConfig) (*PairWriter, error) {
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}

	if err := config.Fs.MkdirAll(filepath.Dir(config.BasePath), 0750); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", codec.ErrSinkUnwritable, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if config.Mode == ModeAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	text, err := config.Fs.OpenFile(TextPath(config.BasePath), flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", codec.ErrSinkUnwritable, TextPath(config.BasePath), err)
	}

	bin, err := config.Fs.OpenFile(BinaryPath(config.BasePath), flags, 0644)
	if err != nil {
		_ = text.Close()
		return nil, fmt.Errorf("%w: open %s: %w", codec.ErrSinkUnwritable, BinaryPath(config.BasePath), err)
	}

	stat, err := bin.Stat()
	if err != nil {
		_ = text.Close()
		_ = bin.Close()
		return nil, err
	}
	textStat, err := text.Stat()
	if err != nil {
		_ = text.Close()
		_ = bin.Close()
		return nil, err
	}

	w := &PairWriter{
		bin:      bin,
		text:     text,
		binBuf:   bufio.NewWriterSize(bin, config.BufferSize),
		textBuf:  bufio.NewWriterSize(text, config.BufferSize*3),
		config:   config,
		base:     stat.Size(),
		textBase: textStat.Size(),
	}
	w.enc = codec.NewEncoder(w.binBuf, w.textBuf)

	return w, nil
}

// Write appends a record to both files and returns the record's binary offset.
// Each record is flushed before Write returns. In append mode a failed write
// truncates both files back to where the record started, so the stream stays
// decodable; the writer refuses further records after any failure.
func (w *PairWriter) Write(r *codec.Record) (int64, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.failed {
		return 0, ErrWriterFailed
	}

	offset := w.Offset()
	err := w.enc.Encode(r)
	if errors.Is(err, codec.ErrInvalidLength) {
		// Rejected before any byte was written
		return 0, err
	}
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		w.failed = true
		if w.config.Mode == ModeAppend {
			if rbErr := w.rollback(offset); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
		}
		return 0, err
	}
	return offset, nil
}

// rollback discards buffered bytes and cuts both files back to the record
// that started at binary offset
func (w *PairWriter) rollback(offset int64) error {
	w.binBuf.Reset(w.bin)
	w.textBuf.Reset(w.text)

	textOffset := w.textBase + 3*(offset-w.base)
	if err := w.bin.Truncate(offset); err != nil {
		return fmt.Errorf("roll back %s to %d: %w", BinaryPath(w.config.BasePath), offset, err)
	}
	if err := w.text.Truncate(textOffset); err != nil {
		return fmt.Errorf("roll back %s to %d: %w", TextPath(w.config.BasePath), textOffset, err)
	}
	return nil
}

// Offset returns the binary offset where the next record will start
func (w *PairWriter) Offset() int64 {
	return w.base + w.enc.Written()
}

// Written returns the number of bytes written to the binary file by this writer
func (w *PairWriter) Written() int64 {
	return w.enc.Written()
}

// BasePath returns the path the pair was opened with, without extension
func (w *PairWriter) BasePath() string {
	return w.config.BasePath
}

// Flush pushes buffered bytes of both files to the filesystem
func (w *PairWriter) Flush() error {
	if err := w.binBuf.Flush(); err != nil {
		return fmt.Errorf("%w: flush binary: %w", codec.ErrSinkUnwritable, err)
	}
	if err := w.textBuf.Flush(); err != nil {
		return fmt.Errorf("%w: flush text: %w", codec.ErrSinkUnwritable, err)
	}
	return nil
}

// Close flushes, optionally syncs, and closes both files
func (w *PairWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if !w.failed {
		if err := w.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if w.config.SyncOnClose {
		if err := w.bin.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("%w: sync binary: %w", codec.ErrSinkUnwritable, err))
		}
		if err := w.text.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("%w: sync text: %w", codec.ErrSinkUnwritable, err))
		}
	}
	if err := w.bin.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.text.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
