package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/algoviz/internal/trace"
)

const (
	barGap   = 2.0
	minBarPx = 1.0
)

// StepSVG draws one step as a bar chart. Bar heights are proportional to
// value over the step maximum with a one-pixel floor.
func StepSVG(s trace.Step, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, ColorBack))

	for _, b := range layoutBars(s, float64(width), float64(height)) {
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%d</title></rect>
`, b.x, b.y, b.w, b.h, b.color, b.value))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

type bar struct {
	x, y, w, h float64
	color      string
	value      int
}

func layoutBars(s trace.Step, width, height float64) []bar {
	n := len(s.Array)
	if n == 0 {
		return nil
	}
	maxVal := float64(s.Max())
	slot := width / float64(n)
	w := max(slot-barGap, minBarPx)

	bars := make([]bar, n)
	for i, v := range s.Array {
		h := max(float64(v)/maxVal*height, minBarPx)
		bars[i] = bar{
			x:     float64(i)*slot + barGap/2,
			y:     height - h,
			w:     w,
			h:     h,
			color: BarColor(s, i),
			value: v,
		}
	}
	return bars
}
