package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/biosim/internal/scan"
)

// BifurcationPoint holds the distinct long-run values of one species at one
// scan value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// Bifurcation drops the first transient fraction of every scan trajectory and
// keeps the distinct local extrema of species in what remains, quantised to
// 1e-3. A run that settles contributes its final value only.
func Bifurcation(points []scan.Point, species int, transient float64) []BifurcationPoint {
	transient = math.Min(math.Max(transient, 0), 1)
	out := make([]BifurcationPoint, 0, len(points))
	for _, p := range points {
		res := p.Results
		if res == nil || species < 0 || species >= res.NumSpecies || res.Len() == 0 {
			continue
		}
		traj := res.Trajectory(species)
		tail := traj[int(transient*float64(len(traj)-1)):]

		values := make([]float64, 0, 8)
		seen := make(map[int64]bool)
		add := func(v float64) {
			key := int64(math.Round(v * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}
		for i := 1; i+1 < len(tail); i++ {
			a, b, c := tail[i-1], tail[i], tail[i+1]
			if (b > a && b >= c) || (b < a && b <= c) {
				add(b)
			}
		}
		if len(values) == 0 {
			add(tail[len(tail)-1])
		}
		out = append(out, BifurcationPoint{Param: p.Value, Values: values})
	}
	return out
}

// BifurcationToASCII plots one column per scan value.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			minVal, maxVal = math.Min(minVal, v), math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
