package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger returns a logger writing to a buffer with colors disabled.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_InfoWarn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("cache hit 64-32-1")
	goldie.New(t).Assert(t, "info_basic", buf.Bytes())

	buf.Reset()
	lg.Warn("lease held elsewhere, waiting")
	goldie.New(t).Assert(t, "warn_basic", buf.Bytes())
}

func TestLogger_Error(t *testing.T) {
	sentinel := zerr.New("cache miss")

	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "stdlib error",
			err:        os.ErrPermission,
			goldenName: "error_simple",
		},
		{
			name:       "multiline error",
			err:        errors.New("yaml: unmarshal errors:\n  line 3: cannot unmarshal"),
			goldenName: "error_multiline",
		},
		{
			name: "zerr chain",
			err: zerr.Wrap(
				zerr.Wrap(errors.New("connection refused"), "lease acquisition failed"),
				"precompute failed",
			),
			goldenName: "error_chain",
		},
		{
			name:       "metadata on wrapped sentinel",
			err:        zerr.With(zerr.Wrap(sentinel, "operators not found"), "key", "64-32-1"),
			goldenName: "error_metadata",
		},
		{
			name: "sorted metadata",
			err: func() error {
				err := zerr.Wrap(sentinel, "fetch failed")
				err = zerr.With(err, "store", "fs")
				err = zerr.With(err, "key", "64-32-1")
				return err
			}(),
			goldenName: "error_metadata_sorted",
		},
		{
			name:       "metadata on bare error",
			err:        zerr.With(errors.New("disk full"), "path", "/var/cache"),
			goldenName: "error_metadata_bare",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			goldie.New(t).Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_StdlibChainIsOneLine(t *testing.T) {
	inner := errors.New("connection refused")
	outer := fmt.Errorf("dial redis: %w", inner)

	lg, buf := newTestLogger(t)
	lg.Error(outer)

	assert.Equal(t, "✗ Error: dial redis: connection refused\n", buf.String())
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	err := zerr.With(zerr.Wrap(errors.New("connection refused"), "lease acquisition failed"), "key", "64-32-1")
	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"error"`)
	assert.Contains(t, out, "lease acquisition failed")
	assert.Contains(t, out, "64-32-1")
	assert.NotContains(t, out, "✗")
}

func TestLogger_FormatSwitching(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(errors.New("pretty"))
	pretty := buf.String()
	buf.Reset()

	lg.SetJSON(true)
	lg.Error(errors.New("json"))
	jsonOut := buf.String()
	buf.Reset()

	lg.SetJSON(false)
	lg.Error(errors.New("pretty again"))
	prettyAgain := buf.String()

	assert.Contains(t, pretty, "✗")
	assert.Contains(t, jsonOut, `"error"`)
	assert.NotContains(t, jsonOut, "✗")
	assert.Contains(t, prettyAgain, "✗")
}

func TestLogger_SetOutput_Nil(t *testing.T) {
	require.NotPanics(t, func() {
		lg := logger.New().(*logger.Logger)
		lg.SetOutput(nil)
	})
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch i % 4 {
			case 0:
				lg.Info("info")
			case 1:
				lg.Warn("warn")
			case 2:
				lg.Error(errors.New("error"))
			default:
				lg.SetJSON(i%2 == 0)
			}
		}()
	}
	wg.Wait()
}
