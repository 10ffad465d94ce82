package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/biosim/internal/engine"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Red,
	asciigraph.Blue,
}

var legendColors = []lipgloss.Color{"6", "5", "3", "2", "1", "4"}

// PlotSpecies draws the selected species (all when indices is empty) on one
// chart, followed by a colour legend.
func PlotSpecies(res *engine.Results, indices []int, width, height int) (string, error) {
	if res == nil || res.Len() == 0 {
		return "", fmt.Errorf("nothing to plot")
	}
	if res.NumSpecies == 0 {
		return "", fmt.Errorf("model has no species")
	}
	if len(indices) == 0 {
		indices = make([]int, res.NumSpecies)
		for i := range indices {
			indices[i] = i
		}
	}

	series := make([][]float64, 0, len(indices))
	colors := make([]asciigraph.AnsiColor, 0, len(indices))
	legend := make([]string, 0, len(indices))
	for k, i := range indices {
		traj := res.Trajectory(i)
		if traj == nil {
			return "", fmt.Errorf("species index %d out of range", i)
		}
		series = append(series, traj)
		colors = append(colors, seriesColors[k%len(seriesColors)])
		style := lipgloss.NewStyle().Foreground(legendColors[k%len(legendColors)])
		legend = append(legend, style.Render("■ "+res.SpeciesNames[i]))
	}
	caption := fmt.Sprintf("t = %g .. %g", res.Time[0], res.Time[res.Len()-1])
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
	return graph + "\n" + strings.Join(legend, "  "), nil
}

// IndicesOf resolves species names to indices.
func IndicesOf(res *engine.Results, names []string) ([]int, error) {
	out := make([]int, 0, len(names))
	for _, name := range names {
		found := -1
		for i, n := range res.SpeciesNames {
			if n == name {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("species %q not in results", name)
		}
		out = append(out, found)
	}
	return out, nil
}
