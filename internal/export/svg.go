// Package export renders stored trajectories as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/biosim/internal/engine"
)

// Palette cycles through species in TrajectoriesSVG.
var Palette = []string{"#00d7ff", "#d75fd7", "#ffd700", "#5fff5f", "#ff5f5f", "#5f87ff"}

const background = "#0a0a0a"

type span struct{ lo, hi float64 }

func spanOf(series ...[]float64) span {
	s := span{math.Inf(1), math.Inf(-1)}
	for _, xs := range series {
		for _, v := range xs {
			s.lo = math.Min(s.lo, v)
			s.hi = math.Max(s.hi, v)
		}
	}
	if s.hi <= s.lo {
		s.hi = s.lo + 1
	}
	return s
}

// padded widens s by 10% on both sides.
func (s span) padded() span {
	d := (s.hi - s.lo) * 0.1
	return span{s.lo - d, s.hi + d}
}

func (s span) scale(v, size float64) float64 {
	return (v - s.lo) / (s.hi - s.lo) * size
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func path(sb *strings.Builder, xs, ys []float64, sx, sy span, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i := range xs {
		x := sx.scale(xs[i], float64(width))
		y := float64(height) - sy.scale(ys[i], float64(height))
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// PhaseSVG draws ys against xs as one path. Fewer than two points give "".
func PhaseSVG(xs, ys []float64, width, height int, stroke string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}
	xs, ys = xs[:n], ys[:n]

	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, xs, ys, spanOf(xs).padded(), spanOf(ys).padded(), width, height, stroke)
	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesSVG draws the selected species against time on shared axes,
// all species when indices is empty, with a legend in the top left corner.
func TrajectoriesSVG(res *engine.Results, indices []int, width, height int) (string, error) {
	if res == nil || res.Len() < 2 {
		return "", fmt.Errorf("need at least two time points")
	}
	if len(indices) == 0 {
		indices = make([]int, res.NumSpecies)
		for i := range indices {
			indices[i] = i
		}
	}

	series := make([][]float64, len(indices))
	for k, i := range indices {
		if series[k] = res.Trajectory(i); series[k] == nil {
			return "", fmt.Errorf("species index %d out of range", i)
		}
	}
	st := spanOf(res.Time)
	sy := spanOf(series...).padded()

	var sb strings.Builder
	header(&sb, width, height)
	for k, i := range indices {
		color := Palette[k%len(Palette)]
		path(&sb, res.Time, series[k], st, sy, width, height, color)
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(k+1), color, res.SpeciesNames[i])
	}
	sb.WriteString("</svg>")
	return sb.String(), nil
}
