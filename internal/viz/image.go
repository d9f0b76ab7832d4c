package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"
	"strings"
)

const (
	cellW = 8
	cellH = 16

	// palette indices reserved ahead of the field ramp
	bgIndex      = 0
	overlayIndex = 1
	rampSize     = 254
)

func gifPalette(theme Theme) color.Palette {
	p := make(color.Palette, 2, 2+rampSize)
	p[bgIndex] = Palette{theme.Background}.RGBA(0)
	p[overlayIndex] = Palette{theme.Accent}.RGBA(0)
	for i := 0; i < rampSize; i++ {
		p = append(p, theme.Palette.RGBA(float64(i)/float64(rampSize-1)))
	}
	return p
}

// Image paints the frame, one cellW x cellH block per cell, with overlay dots
// drawn on top.
func (f *Frame) Image(theme Theme) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, f.Width*cellW, f.Height*cellH), gifPalette(theme))
	dotW, dotH := cellW/2, cellH/4

	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			idx := uint8(bgIndex)
			if v := f.Value(col, row); !math.IsNaN(v) {
				idx = uint8(2 + int(math.Round(v*(rampSize-1))))
			}
			baseX, baseY := col*cellW, row*cellH
			fill(img, baseX, baseY, cellW, cellH, idx)

			pattern := int(f.Overlay.Grid[row][col] - brailleBase)
			if pattern == 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						fill(img, baseX+dx*dotW, baseY+dy*dotH, dotW, dotH, overlayIndex)
					}
				}
			}
		}
	}
	return img
}

func fill(img *image.Paletted, x0, y0, w, h int, idx uint8) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			img.SetColorIndex(x, y, idx)
		}
	}
}

// WriteGIF encodes frames as a looping animation. delay is in 1/100 s.
func WriteGIF(w io.Writer, frames []*Frame, theme Theme, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("viz: no frames to encode")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame.Image(theme))
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

// SVG renders the frame as cell rectangles plus one circle per overlay dot.
// scale is the size of one sub-pixel in SVG units.
func (f *Frame) SVG(theme Theme, scale float64) string {
	width := float64(f.Width) * scale * 2
	height := float64(f.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g shape-rendering="crispEdges">
`, width, height, width, height, theme.Background)

	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			v := f.Value(col, row)
			if math.IsNaN(v) {
				continue
			}
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(col)*scale*2, float64(row)*scale*4, scale*2, scale*4, theme.Palette.At(v))
		}
	}
	fmt.Fprintf(&sb, "</g>\n<g fill=\"%s\">\n", theme.Accent)

	dotRadius := scale * 0.4
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			pattern := int(f.Overlay.Grid[row][col] - brailleBase)
			if pattern == 0 {
				continue
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
