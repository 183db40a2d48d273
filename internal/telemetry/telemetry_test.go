package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics()
	m.ObserveOperation("encrypt", time.Now(), nil)
	m.ObserveOperation("encrypt", time.Now(), nil)
	m.ObserveOperation("encrypt", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("encrypt", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("encrypt", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.operationDuration))
}

func TestGauges(t *testing.T) {
	m := NewMetrics()
	m.AddBytes("encrypt", 768)
	m.AddBytes("encrypt", 32)
	m.SetExponent("chen", "1", 0.84)
	m.SetBitBalance("lorenz", 0.49)
	m.SetScreenAttempts("rossler", 2)

	assert.Equal(t, 800.0, testutil.ToFloat64(m.bytesProcessed.WithLabelValues("encrypt")))
	assert.Equal(t, 0.84, testutil.ToFloat64(m.lyapunovExponent.WithLabelValues("chen", "1")))
	assert.Equal(t, 0.49, testutil.ToFloat64(m.bitBalance.WithLabelValues("lorenz")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.screenAttempts.WithLabelValues("rossler")))

	expected := `
# HELP chaoscrypt_bitstream_balance Fraction of ones in the most recent bitstream by system
# TYPE chaoscrypt_bitstream_balance gauge
chaoscrypt_bitstream_balance{system="lorenz"} 0.49
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "chaoscrypt_bitstream_balance"))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.AddBytes("decrypt", 10)

	path := filepath.Join(t.TempDir(), "chaoscrypt.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `chaoscrypt_bytes_processed_total{direction="decrypt"} 10`)
}
