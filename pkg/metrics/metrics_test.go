package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordGenerated(t *testing.T) {
	m := NewMetrics(nil)

	m.RecordGenerated(16, 64, 86, 2*time.Millisecond)
	m.RecordGenerated(80, 192, 278, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues(statusError)))
	assert.Equal(t, 364.0, testutil.ToFloat64(m.bytesWritten.WithLabelValues(formatBinary)))
	assert.Equal(t, 1092.0, testutil.ToFloat64(m.bytesWritten.WithLabelValues(formatText)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.segmentSize))
}

func TestMetrics_RecordFailed(t *testing.T) {
	m := NewMetrics(nil)

	m.RecordFailed(time.Millisecond)
	m.RecordCatalogError()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues(statusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogErrors))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGenerated(1, 1, 8, time.Millisecond)
		m.RecordFailed(time.Millisecond)
		m.RecordCatalogError()
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "procgen.prom")

	m := NewMetrics(nil)
	m.RecordGenerated(16, 64, 86, time.Millisecond)

	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), `procgen_records_total{status="success"} 1`))
	assert.True(t, strings.Contains(string(content), "procgen_bytes_written_total"))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := NewMetrics(nil)
	b := NewMetrics(nil)

	a.RecordFailed(time.Millisecond)

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, 0.0, testutil.ToFloat64(b.recordsTotal.WithLabelValues(statusError)))
}
