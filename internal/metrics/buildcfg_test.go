package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCount(t *testing.T, r *Recorder, result string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, r.loadTotal.WithLabelValues(result).Write(&m))
	return m.GetCounter().GetValue()
}

func TestResult(t *testing.T) {
	assert.Equal(t, ResultOK, Result(nil))
	assert.Equal(t, ResultInvalid, Result(fmt.Errorf("load: %w", buildcfg.ErrInvalidConfigurationValue)))
	assert.Equal(t, ResultUnknownKey, Result(fmt.Errorf("load: %w", buildcfg.ErrUnknownConfigField)))
	assert.Equal(t, ResultMalformed, Result(fmt.Errorf("load: %w", buildcfg.ErrMalformedConfig)))
	assert.Equal(t, ResultError, Result(errors.New("disk on fire")))
}

func TestRecorder_ObserveLoad(t *testing.T) {
	r := NewRecorder()

	r.ObserveLoad(nil, 2*time.Millisecond)
	r.ObserveLoad(nil, time.Millisecond)
	_, err := buildcfg.Parse([]byte("build_target = 'fast'"), buildcfg.FormatKeyValue)
	r.ObserveLoad(err, time.Millisecond)

	assert.Equal(t, float64(2), loadCount(t, r, ResultOK))
	assert.Equal(t, float64(1), loadCount(t, r, ResultInvalid))
	assert.Equal(t, float64(0), loadCount(t, r, ResultMalformed))
	assert.Equal(t, 1, testutil.CollectAndCount(r.loadDuration))
}

func TestRecorder_SetConfigReplacesInfo(t *testing.T) {
	r := NewRecorder()

	r.SetConfig(buildcfg.Defaults())
	cfg := buildcfg.Defaults()
	cfg.BuildTarget = buildcfg.TargetSpeed
	cfg.UseDouble = true
	r.SetConfig(cfg)

	expected := `
# HELP buildcfg_info Effective build configuration (value is always 1).
# TYPE buildcfg_info gauge
buildcfg_info{precision="double",sse="true",target="speed",toolchain="default"} 1
`
	require.NoError(t, testutil.CollectAndCompare(r.info, strings.NewReader(expected), "buildcfg_info"))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveLoad(nil, time.Millisecond)
	r.SetConfig(buildcfg.Defaults())

	path := filepath.Join(t.TempDir(), "textfile", "buildcfg.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `buildcfg_load_total{result="ok"} 1`)
	assert.Contains(t, out, "buildcfg_load_duration_seconds_count 1")
	assert.Contains(t, out, `target="release"`)
}
