package store

import (
	"time"

	"github.com/spf13/afero"

	"github.com/ssargent/procgen/pkg/codec"
)

const (
	BinaryExt = ".proc" // Extension of the binary form
	TextExt   = ".txt"  // Extension of the text form

	DefaultBufferSize = 4096
)

// Mode selects how a pair writer opens existing files
type Mode int

const (
	// ModeTruncate starts both files empty: one record per file pair
	ModeTruncate Mode = iota
	// ModeAppend adds records to the end of both files: a record stream
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeTruncate:
		return "truncate"
	case ModeAppend:
		return "append"
	default:
		return "unknown"
	}
}

// PairWriterConfig holds configuration for a pair writer
type PairWriterConfig struct {
	Fs          afero.Fs // Filesystem, defaults to the OS filesystem
	BasePath    string   // Path without extension; ".proc" and ".txt" are appended
	Mode        Mode     // Truncate or append
	BufferSize  int      // Write buffer size per file
	SyncOnClose bool     // Fsync both files before closing
}

// StreamReaderConfig holds configuration for a stream reader
type StreamReaderConfig struct {
	Fs          afero.Fs // Filesystem, defaults to the OS filesystem
	FilePath    string   // Path to the binary stream file
	StartOffset int64    // Offset to start reading from
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *codec.Record
	Err() error
	Close() error
}

// RecoveryResult holds statistics about a stream pair recovery
type RecoveryResult struct {
	RecordsValidated int64         // Complete records kept in both files
	RecordsTruncated int64         // Records removed from the binary file; a partial tail counts as one
	BinarySizeBefore int64         // Size of the binary file before recovery
	BinarySizeAfter  int64         // Size of the binary file after recovery
	TextSizeBefore   int64         // Size of the text file before recovery
	TextSizeAfter    int64         // Size of the text file after recovery
	RecoveryTime     time.Duration // Time taken for recovery
}

// VerifyResult holds statistics about a successful pair verification
type VerifyResult struct {
	Records     int64 // Records present in both files
	BinaryBytes int64 // Bytes in the binary file
}

// BinaryPath returns the binary file path for a base path
func BinaryPath(base string) string {
	return base + BinaryExt
}

// TextPath returns the text file path for a base path
func TextPath(base string) string {
	return base + TextExt
}

// Errors
var (
	ErrMismatch     = &StoreError{"text and binary forms differ"}
	ErrClosed       = &StoreError{"pair writer is closed"}
	ErrWriterFailed = &StoreError{"pair writer failed on an earlier record"}
)

// StoreError represents a sink store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
