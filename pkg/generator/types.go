package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/procgen/pkg/codec"
)

// Layout selects how records are laid out on disk
type Layout string

const (
	// LayoutFiles writes p{i}.proc and p{i}.txt per process
	LayoutFiles Layout = "files"
	// LayoutStream appends all records to processes.proc and processes.txt
	LayoutStream Layout = "stream"

	// StreamBaseName is the file name, without extension, of the stream layout
	StreamBaseName = "processes"
)

// ErrInvalidConfig is returned for unusable generator settings
var ErrInvalidConfig = errors.New("invalid generator config")

// Range is an inclusive size range
type Range struct {
	Min int
	Max int
}

func (r Range) validate(name string) error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("%w: %s size range [%d, %d]", ErrInvalidConfig, name, r.Min, r.Max)
	}
	if r.Max > codec.MaxSegmentSize {
		return fmt.Errorf("%w: %s size %d exceeds %d", codec.ErrInvalidLength, name, r.Max, codec.MaxSegmentSize)
	}
	return nil
}

func (r Range) pick(rng *rand.Rand) int {
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

// Config holds generator settings
type Config struct {
	Count       int    // Number of processes to generate
	OutputDir   string // Directory for the generated files
	CodeSize    Range  // Code segment size range
	DataSize    Range  // Data segment size range
	Layout      Layout // Files or stream
	Seed        uint64 // Random seed, 0 derives one from the clock
	SyncOnClose bool   // Fsync each file pair before closing
}

// DefaultConfig returns the classic settings: five processes in processes/
func DefaultConfig() Config {
	return Config{
		Count:     5,
		OutputDir: "processes",
		CodeSize:  Range{Min: 16, Max: 80},
		DataSize:  Range{Min: 64, Max: 192},
		Layout:    LayoutFiles,
	}
}

// Validate checks the config for unusable values
func (c Config) Validate() error {
	if c.Count < 0 {
		return fmt.Errorf("%w: count %d", ErrInvalidConfig, c.Count)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: empty output directory", ErrInvalidConfig)
	}
	if c.Layout != LayoutFiles && c.Layout != LayoutStream {
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidConfig, c.Layout)
	}
	if err := c.CodeSize.validate("code"); err != nil {
		return err
	}
	return c.DataSize.validate("data")
}

// Result describes one generated process pair
type Result struct {
	Index      int
	ProcessID  byte
	CodeSize   int
	DataSize   int
	Offset     int64 // Binary offset of the record, non-zero only in the stream layout
	Bytes      int64 // Binary record size
	BinaryPath string
	TextPath   string
	CatalogKey ksuid.KSUID
}

// Failure describes a process that could not be written
type Failure struct {
	Index int
	Err   error
}

// Report summarizes a generation run
type Report struct {
	RunID    ksuid.KSUID
	Seed     uint64
	Results  []Result
	Failures []Failure
}

// Err joins all per-process failures, or returns nil if every process was written
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("process %d: %w", f.Index, f.Err))
	}
	return errors.Join(errs...)
}
