// Package report renders benchmark reports and cache listings for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.trai.ch/tomobench/internal/core/domain"
	"go.trai.ch/tomobench/internal/ui/output"
	"go.trai.ch/tomobench/internal/ui/style"
)

const labelWidth = 12

type renderer struct {
	heading lipgloss.Style
	label   lipgloss.Style
	hit     lipgloss.Style
	miss    lipgloss.Style
}

func newRenderer(w io.Writer) renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile())
	return renderer{
		heading: style.Heading.Renderer(r),
		label:   style.Label.Renderer(r).Width(labelWidth),
		hit:     style.Hit.Renderer(r),
		miss:    style.Miss.Renderer(r),
	}
}

func (r renderer) row(b *strings.Builder, label, value string) {
	b.WriteString("  ")
	b.WriteString(r.label.Render(label))
	b.WriteString(value)
	b.WriteByte('\n')
}

// Bench writes a human-readable summary of one benchmark run.
func Bench(w io.Writer, rep *domain.Report) error {
	r := newRenderer(w)
	var b strings.Builder

	title := rep.Backend.String() + " " + rep.Mode
	if rep.Key != "" {
		title += " " + rep.Key.String()
	}
	b.WriteString(r.heading.Render(title))
	b.WriteByte('\n')

	g := rep.Geometry
	r.row(&b, "geometry", fmt.Sprintf("width=%d projections=%d slices=%d", g.Width, g.NumProjections, g.NumSlices))
	if rep.Algorithm != "" {
		r.row(&b, "algorithm", string(rep.Algorithm))
	}

	if rep.Mode == domain.ModePrepare {
		if rep.CacheHit {
			r.row(&b, "operators", r.hit.Render(style.Check+" already cached"))
		} else {
			r.row(&b, "operators", r.miss.Render(style.Dot+" precomputed and committed"))
		}
		r.row(&b, "elapsed", formatDuration(rep.Elapsed))
		_, err := io.WriteString(w, b.String())
		return err
	}

	r.row(&b, "center", strconv.FormatFloat(rep.Center, 'g', -1, 64))
	if rep.Backend.UsesOperatorCache() {
		r.row(&b, "fetch", formatDuration(rep.Timing.Fetch))
	}
	r.row(&b, "initialize", formatDuration(rep.Timing.Initialize))
	r.row(&b, "adjoint", formatDuration(rep.Timing.Adjoint))
	r.row(&b, "benchmark", r.heading.Render(formatDuration(rep.Timing.Benchmark())))
	r.row(&b, "output", rep.Output.String())

	_, err := io.WriteString(w, b.String())
	return err
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CacheRow is the listing form of a cache entry.
type CacheRow struct {
	Key       domain.CacheKey `json:"key"`
	Geometry  domain.Geometry `json:"geometry"`
	Size      int64           `json:"size"`
	CreatedAt time.Time       `json:"created_at"`
	Location  string          `json:"location"`
}

// Rows converts entries to their listing form.
func Rows(entries []domain.CacheEntry) []CacheRow {
	rows := make([]CacheRow, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		rows = append(rows, CacheRow{
			Key:       e.Key,
			Geometry:  e.Geometry,
			Size:      e.Size(),
			CreatedAt: e.CreatedAt,
			Location:  e.Location,
		})
	}
	return rows
}

// CacheList writes a table of entries with sizes and ages relative to now.
func CacheList(w io.Writer, entries []domain.CacheEntry, now time.Time) error {
	r := newRenderer(w)

	if len(entries) == 0 {
		_, err := io.WriteString(w, r.label.UnsetWidth().Render("no operators cached")+"\n")
		return err
	}

	header := []string{"KEY", "GEOMETRY", "SIZE", "AGE", "LOCATION"}
	cells := make([][]string, 0, len(entries))
	var total int64
	for _, row := range Rows(entries) {
		total += row.Size
		cells = append(cells, []string{
			row.Key.String(),
			fmt.Sprintf("%d×%d×%d", row.Geometry.Width, row.Geometry.NumProjections, row.Geometry.NumSlices),
			humanize.Bytes(uint64(row.Size)), //nolint:gosec // sizes are never negative
			humanize.RelTime(row.CreatedAt, now, "ago", "from now"),
			row.Location,
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, c := range cells {
		for i, v := range c {
			widths[i] = max(widths[i], lipgloss.Width(v))
		}
	}

	var b strings.Builder
	writeRow := func(cols []string, st lipgloss.Style) {
		for i, v := range cols {
			if i == len(cols)-1 {
				b.WriteString(st.Render(v))
				break
			}
			b.WriteString(st.Width(widths[i] + 2).Render(v))
		}
		b.WriteByte('\n')
	}

	writeRow(header, r.heading)
	plain := lipgloss.NewStyle()
	for _, c := range cells {
		writeRow(c, plain)
	}
	fmt.Fprintf(&b, "%s\n", r.label.UnsetWidth().Render(
		fmt.Sprintf("%d %s, %s", len(entries), plural(len(entries), "entry", "entries"), humanize.Bytes(uint64(total))))) //nolint:gosec // sizes are never negative

	_, err := io.WriteString(w, b.String())
	return err
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
