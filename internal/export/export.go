// Package export renders runs for use outside the player: JSON and CSV for
// data, SVG and GIF for pictures, and an HTML page with interactive charts.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/algoviz/internal/storage"
	"github.com/san-kum/algoviz/internal/trace"
)

var ErrUnknownFormat = errors.New("export: unknown format")

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatSVG  Format = "svg"
	FormatGIF  Format = "gif"
	FormatHTML Format = "html"
)

var Formats = []Format{FormatJSON, FormatCSV, FormatSVG, FormatGIF, FormatHTML}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension, dot included.
func (f Format) Ext() string { return "." + string(f) }

// Bar colours, shared by the SVG, GIF and HTML renderers.
const (
	ColorBar       = "#0099ff"
	ColorComparing = "#eab308"
	ColorSwapped   = "#ef4444"
	ColorBack      = "#0f172a"
)

// BarColor picks the colour of bar i. A swap marker wins over a comparison.
func BarColor(s trace.Step, i int) string {
	switch {
	case s.IsSwapped(i):
		return ColorSwapped
	case s.IsComparing(i):
		return ColorComparing
	}
	return ColorBar
}

// Options tunes the picture formats. Zero values fall back to defaults.
type Options struct {
	Width  int
	Height int
	// Step selects the step drawn by SVG. Negative counts from the end.
	Step int
	// FrameDelay is the GIF delay per frame in hundredths of a second.
	FrameDelay int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 320
	}
	if o.FrameDelay <= 0 {
		o.FrameDelay = 30
	}
	return o
}

// Write renders run in format f.
func Write(w io.Writer, f Format, run *storage.Run, o Options) error {
	o = o.withDefaults()
	switch f {
	case FormatJSON:
		return JSON(w, run)
	case FormatCSV:
		return CSV(w, run.Steps)
	case FormatSVG:
		idx := o.Step
		if idx < 0 {
			idx = len(run.Steps) + idx
		}
		_, err := io.WriteString(w, StepSVG(run.Steps.At(idx), o.Width, o.Height))
		return err
	case FormatGIF:
		return GIF(w, run.Steps, o)
	case FormatHTML:
		return HTML(w, run, o)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
