package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/fogleman/gg"

	"github.com/san-kum/algoviz/internal/trace"
)

// gifPalette holds ColorBack, ColorBar, ColorComparing and ColorSwapped.
var gifPalette = color.Palette{
	color.RGBA{0x0f, 0x17, 0x2a, 0xff},
	color.RGBA{0x00, 0x99, 0xff, 0xff},
	color.RGBA{0xea, 0xb3, 0x08, 0xff},
	color.RGBA{0xef, 0x44, 0x44, 0xff},
}

// GIF animates every step of t, one frame per step, looping forever.
func GIF(w io.Writer, t trace.Trace, o Options) error {
	o = o.withDefaults()
	anim := gif.GIF{LoopCount: 0}
	bounds := image.Rect(0, 0, o.Width, o.Height)

	for _, st := range t {
		frame := image.NewPaletted(bounds, gifPalette)
		draw.Draw(frame, bounds, StepImage(st, o.Width, o.Height), image.Point{}, draw.Src)
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, o.FrameDelay)
	}
	if len(anim.Image) == 0 {
		anim.Image = append(anim.Image, image.NewPaletted(bounds, gifPalette))
		anim.Delay = append(anim.Delay, o.FrameDelay)
	}
	return gif.EncodeAll(w, &anim)
}

// StepImage rasterises one step with the same layout as StepSVG.
func StepImage(s trace.Step, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetHexColor(ColorBack)
	dc.Clear()
	for _, b := range layoutBars(s, float64(width), float64(height)) {
		dc.SetHexColor(b.color)
		dc.DrawRectangle(b.x, b.y, b.w, b.h)
		dc.Fill()
	}
	return dc.Image()
}
