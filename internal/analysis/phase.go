package analysis

import (
	"strings"

	"github.com/san-kum/biosim/internal/engine"
)

type Point2D struct{ X, Y float64 }

// PhasePortrait2D holds one species plotted against another.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point2D
}

// PhasePortrait pairs species xIdx and yIdx at every recorded time point.
func PhasePortrait(res *engine.Results, xIdx, yIdx int) *PhasePortrait2D {
	if res == nil || xIdx < 0 || yIdx < 0 || xIdx >= res.NumSpecies || yIdx >= res.NumSpecies {
		return nil
	}
	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point2D, res.Len()),
	}
	for n := range portrait.Points {
		portrait.Points[n] = Point2D{X: res.At(n, xIdx), Y: res.At(n, yIdx)}
	}
	return portrait
}

// PhasePortraitToASCII draws the portrait on a width x height grid.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	return plotPoints(portrait.Points, width, height)
}

func plotPoints(points []Point2D, width, height int) string {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// concentrations are non-negative, so the axes sit on the lower left
	// edge whenever zero is in view
	if minX <= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := 0; row < height && col < width; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := 0; col < width && row >= 0; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
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

// PoincareSection holds (recordX, recordY) each time species crossIdx
// rises through threshold, interpolated to the crossing time.
type PoincareSection struct {
	Times  []float64
	Points []Point2D
}

func GeneratePoincareSection(res *engine.Results, crossIdx int, threshold float64, recordX, recordY int) *PoincareSection {
	if res == nil {
		return nil
	}
	for _, idx := range []int{crossIdx, recordX, recordY} {
		if idx < 0 || idx >= res.NumSpecies {
			return nil
		}
	}

	section := &PoincareSection{}
	for n := 1; n < res.Len(); n++ {
		prev, curr := res.At(n-1, crossIdx), res.At(n, crossIdx)
		if prev >= threshold || curr < threshold {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		lerp := func(i int) float64 {
			a := res.At(n-1, i)
			return a + frac*(res.At(n, i)-a)
		}
		t0 := res.Time[n-1]
		section.Times = append(section.Times, t0+frac*(res.Time[n]-t0))
		section.Points = append(section.Points, Point2D{X: lerp(recordX), Y: lerp(recordY)})
	}
	return section
}

func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}
