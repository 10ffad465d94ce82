package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/biosim/internal/analysis"
)

// RenderTable draws a bordered table with a bold header row.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cccc")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}

// Num formats a value for table cells.
func Num(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

// SummaryTable renders per-species summaries with a sparkline of each
// trajectory taken from traj.
func SummaryTable(summaries []analysis.SpeciesSummary, traj func(i int) []float64) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{s.Name, Num(s.Initial), Num(s.Final), Num(s.Min), Num(s.Max), Num(s.PeakTime), Sparkline(traj(i), 24)}
	}
	return RenderTable([]string{"species", "initial", "final", "min", "max", "peak t", "trend"}, rows)
}

// MatrixTable renders a species-by-reaction matrix.
func MatrixTable(rowNames, colNames []string, m [][]float64) string {
	headers := append([]string{""}, colNames...)
	rows := make([][]string, len(m))
	for i, row := range m {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, rowNames[i])
		for _, v := range row {
			switch {
			case v == 0:
				cells = append(cells, Subtle.Render("·"))
			default:
				cells = append(cells, fmt.Sprintf("%+g", v))
			}
		}
		rows[i] = cells
	}
	return RenderTable(headers, rows)
}

// KeyValues renders label/value lines aligned on the label column.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-*s", width+2, p[0])))
		b.WriteString(MetricValue.Render(p[1]))
		b.WriteByte('\n')
	}
	return b.String()
}
