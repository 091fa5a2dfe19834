package report_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/ui/report"
)

var benchGeometry = domain.Geometry{Width: 64, NumProjections: 32, NumSlices: 1}

func TestBench(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name       string
		report     domain.Report
		goldenName string
	}{
		{
			name: "lprec execute",
			report: domain.Report{
				Backend:  domain.BackendLprec,
				Geometry: benchGeometry,
				Key:      "64-32-1",
				Mode:     domain.ModeExecute,
				CacheHit: true,
				Center:   28,
				Timing: domain.Timing{
					Fetch:      1500 * time.Microsecond,
					Initialize: 2 * time.Millisecond,
					Adjoint:    10250 * time.Microsecond,
				},
				Output: domain.Shape{1, 64, 64},
			},
			goldenName: "bench_lprec_execute",
		},
		{
			name: "lprec prepare",
			report: domain.Report{
				Backend:  domain.BackendLprec,
				Geometry: benchGeometry,
				Key:      "64-32-1",
				Mode:     domain.ModePrepare,
				Elapsed:  1200 * time.Millisecond,
			},
			goldenName: "bench_lprec_prepare",
		},
		{
			name: "lprec prepare cached",
			report: domain.Report{
				Backend:  domain.BackendLprec,
				Geometry: benchGeometry,
				Key:      "64-32-1",
				Mode:     domain.ModePrepare,
				CacheHit: true,
				Elapsed:  300 * time.Microsecond,
			},
			goldenName: "bench_lprec_prepare_cached",
		},
		{
			name: "tomopy execute",
			report: domain.Report{
				Backend:   domain.BackendTomopy,
				Algorithm: domain.AlgorithmGridrec,
				Geometry:  benchGeometry,
				Mode:      domain.ModeExecute,
				Center:    32,
				Timing: domain.Timing{
					Initialize: time.Millisecond,
					Adjoint:    3 * time.Millisecond,
				},
				Output: domain.Shape{1, 64, 64},
			},
			goldenName: "bench_tomopy_execute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, report.Bench(&buf, &tt.report))

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestCacheList(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	entries := []domain.CacheEntry{
		newEntry(domain.Geometry{Width: 64, NumProjections: 32, NumSlices: 1}, now.Add(-2*time.Hour), 17, 17, 16),
		newEntry(domain.Geometry{Width: 512, NumProjections: 360, NumSlices: 4}, now.Add(-72*time.Hour), 1_000_000, 1_000_000, 500_000),
	}

	t.Run("entries", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.CacheList(&buf, entries, now))

		g := goldie.New(t)
		g.Assert(t, "cache_list", buf.Bytes())
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, report.CacheList(&buf, nil, now))

		g := goldie.New(t)
		g.Assert(t, "cache_list_empty", buf.Bytes())
	})
}

func TestJSON(t *testing.T) {
	entries := []domain.CacheEntry{
		newEntry(benchGeometry, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), 17, 17, 16),
	}

	var buf bytes.Buffer
	require.NoError(t, report.JSON(&buf, report.Rows(entries)))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "64-32-1", decoded[0]["key"])
	assert.InDelta(t, 50, decoded[0]["size"], 0)
	assert.Equal(t, "/cache/64-32-1", decoded[0]["location"])
}

func newEntry(g domain.Geometry, created time.Time, sizes ...int64) domain.CacheEntry {
	key := domain.DeriveKey(g)
	e := domain.CacheEntry{
		Version:   domain.ManifestVersion,
		Key:       key,
		Geometry:  g,
		CreatedAt: created,
		Location:  "/cache/" + key.String(),
	}
	for i, kind := range domain.ArtifactKinds {
		e.Artifacts = append(e.Artifacts, domain.ArtifactRecord{
			Kind: kind, File: kind.FileName(), Size: sizes[i], Checksum: "00ff",
		})
	}
	return e
}
