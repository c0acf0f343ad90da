// Package generator drives synthetic process generation: it draws random
// process records from an explicit source and writes each one to a sink pair,
// isolating failures per record.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"

	"github.com/ssargent/procgen/pkg/catalog"
	"github.com/ssargent/procgen/pkg/codec"
	"github.com/ssargent/procgen/pkg/metrics"
	"github.com/ssargent/procgen/pkg/store"
)

// Cataloger persists generated entries
type Cataloger interface {
	Put(e *catalog.Entry) (ksuid.KSUID, error)
}

// Generator produces process record pairs
type Generator struct {
	config  Config
	fs      afero.Fs
	rng     *rand.Rand
	seed    uint64
	logger  *slog.Logger
	metrics *metrics.Metrics
	catalog Cataloger
	runID   ksuid.KSUID
}

// Option customizes a Generator
type Option func(*Generator)

// WithFs sets the filesystem the sink pairs are written to
func WithFs(fs afero.Fs) Option {
	return func(g *Generator) { g.fs = fs }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithCatalog records every generated pair in c
func WithCatalog(c Cataloger) Option {
	return func(g *Generator) { g.catalog = c }
}

// WithSource replaces the seeded PCG source, e.g. with a fixed sequence in tests
func WithSource(src rand.Source) Option {
	return func(g *Generator) { g.rng = rand.New(src) }
}

// New creates a generator. A zero seed is replaced by one derived from the
// wall clock; Seed reports the value actually used.
func New(config Config, opts ...Option) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g := &Generator{
		config: config,
		fs:     afero.NewOsFs(),
		seed:   seed,
		logger: slog.Default(),
		runID:  ksuid.New(),
	}
	g.rng = rand.New(rand.NewPCG(seed, seed))

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Seed returns the seed of the default random source
func (g *Generator) Seed() uint64 {
	return g.seed
}

// RunID identifies this generator's run in logs and the catalog
func (g *Generator) RunID() ksuid.KSUID {
	return g.runID
}

// NextRecord draws one random process record
func (g *Generator) NextRecord() *codec.Record {
	id := byte(g.rng.UintN(256))
	code := g.randomBytes(g.config.CodeSize.pick(g.rng))
	data := g.randomBytes(g.config.DataSize.pick(g.rng))
	return &codec.Record{ID: id, Code: code, Data: data}
}

// Run generates config.Count records. Failing records are logged, reported
// and skipped; Run only returns an error if it cannot start or ctx is done.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	if err := g.fs.MkdirAll(g.config.OutputDir, 0750); err != nil {
		return nil, fmt.Errorf("%w: create output directory %s: %w", codec.ErrSinkUnwritable, g.config.OutputDir, err)
	}

	logger := g.logger.With("run_id", g.runID.String())
	logger.Info("starting generation",
		"count", g.config.Count,
		"output_dir", g.config.OutputDir,
		"layout", g.config.Layout,
		"seed", g.seed,
	)

	report := &Report{RunID: g.runID, Seed: g.seed}
	for i := 1; i <= g.config.Count; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		start := time.Now()
		result, err := g.generateOne(i)
		if err != nil {
			g.metrics.RecordFailed(time.Since(start))
			logger.Error("failed to generate process", "index", i, "error", err)
			report.Failures = append(report.Failures, Failure{Index: i, Err: err})
			continue
		}
		g.metrics.RecordGenerated(result.CodeSize, result.DataSize, result.Bytes, time.Since(start))

		if g.catalog != nil {
			g.catalogResult(logger, result)
		}

		logger.Info("generated process",
			"index", i,
			"process_id", result.ProcessID,
			"code_size", result.CodeSize,
			"data_size", result.DataSize,
			"binary", result.BinaryPath,
			"text", result.TextPath,
		)
		report.Results = append(report.Results, *result)
	}

	logger.Info("generation finished",
		"generated", len(report.Results),
		"failed", len(report.Failures),
	)
	return report, nil
}

func (g *Generator) generateOne(index int) (*Result, error) {
	rec := g.NextRecord()

	base, mode := g.basePath(index)
	w, err := store.NewPairWriter(store.PairWriterConfig{
		Fs:          g.fs,
		BasePath:    base,
		Mode:        mode,
		SyncOnClose: g.config.SyncOnClose,
	})
	if err != nil {
		return nil, err
	}

	offset, writeErr := w.Write(rec)
	if err := errors.Join(writeErr, w.Close()); err != nil {
		return nil, err
	}

	return &Result{
		Index:      index,
		ProcessID:  rec.ID,
		CodeSize:   len(rec.Code),
		DataSize:   len(rec.Data),
		Offset:     offset,
		Bytes:      int64(rec.Size()),
		BinaryPath: store.BinaryPath(base),
		TextPath:   store.TextPath(base),
	}, nil
}

func (g *Generator) catalogResult(logger *slog.Logger, r *Result) {
	key, err := g.catalog.Put(&catalog.Entry{
		RunID:      g.runID.String(),
		Index:      r.Index,
		ProcessID:  r.ProcessID,
		CodeSize:   r.CodeSize,
		DataSize:   r.DataSize,
		Offset:     r.Offset,
		Bytes:      r.Bytes,
		BinaryPath: r.BinaryPath,
		TextPath:   r.TextPath,
	})
	if err != nil {
		g.metrics.RecordCatalogError()
		logger.Warn("failed to catalog process", "index", r.Index, "error", err)
		return
	}
	r.CatalogKey = key
}

func (g *Generator) basePath(index int) (string, store.Mode) {
	if g.config.Layout == LayoutStream {
		return filepath.Join(g.config.OutputDir, StreamBaseName), store.ModeAppend
	}
	return filepath.Join(g.config.OutputDir, fmt.Sprintf("p%d", index)), store.ModeTruncate
}

func (g *Generator) randomBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(g.rng.UintN(256))
	}
	return b
}
