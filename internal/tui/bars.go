package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/algoviz/internal/trace"
)

const maxColWidth = 6

// renderBars draws s as vertical bars height rows tall. A bar is
// proportional to value over the step maximum and never shorter than one
// row. The value row underneath is shown only when every value fits its
// column.
func renderBars(s trace.Step, width, height int, th Theme) string {
	n := len(s.Array)
	if n == 0 {
		return lipgloss.NewStyle().Foreground(th.Muted).Render("(empty input)")
	}
	height = max(height, 1)
	col := max(1, min(maxColWidth, (width-n)/n))

	maxVal := float64(s.Max())
	levels := make([]int, n)
	styles := make([]lipgloss.Style, n)
	for i, v := range s.Array {
		levels[i] = max(1, int(float64(v)/maxVal*float64(height)+0.5))
		styles[i] = lipgloss.NewStyle().Foreground(barColor(s, i, th))
	}

	block := strings.Repeat("█", col)
	blank := strings.Repeat(" ", col)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		for i := range s.Array {
			if levels[i] >= row {
				b.WriteString(styles[i].Render(block))
			} else {
				b.WriteString(blank)
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}

	labels, ok := valueRow(s.Array, col)
	if ok {
		b.WriteString(lipgloss.NewStyle().Foreground(th.Muted).Render(labels))
		b.WriteByte('\n')
	}
	return b.String()
}

func barColor(s trace.Step, i int, th Theme) lipgloss.Color {
	switch {
	case s.IsSwapped(i):
		return th.Swapped
	case s.IsComparing(i):
		return th.Comparing
	}
	return th.Bar
}

func valueRow(xs []int, col int) (string, bool) {
	var b strings.Builder
	for _, v := range xs {
		txt := strconv.Itoa(v)
		if len(txt) > col {
			return "", false
		}
		pad := col - len(txt)
		b.WriteString(strings.Repeat(" ", pad/2))
		b.WriteString(txt)
		b.WriteString(strings.Repeat(" ", pad-pad/2))
		b.WriteByte(' ')
	}
	return b.String(), true
}
