package export

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/viewport"
	"gonum.org/v1/gonum/spatial/r2"
)

const background = "#0a0a0a"

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// writePath emits a polyline through points already in screen space.
func writePath(sb *strings.Builder, points []r2.Vec, stroke string) {
	sb.WriteString(`<path fill="none" stroke="` + stroke + `" stroke-width="1.5" d="`)
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", p.X, p.Y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", p.X, p.Y)
		}
	}
	sb.WriteString("\"/>\n")
}

// FrameToSVG draws every trail with more than two points, then each body
// as a filled circle, the way the window renderers do.
func FrameToSVG(f sim.Frame, v viewport.Viewport) string {
	var sb strings.Builder
	header(&sb, v.Width, v.Height)

	for _, b := range f.Bodies {
		if len(b.Trail) > 2 {
			writePath(&sb, v.Path(b.Trail), hex(b.Color))
		}
	}
	for _, b := range f.Bodies {
		p := v.ToScreen(b.Position)
		r := b.Radius
		if r <= 0 {
			r = 2
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>`+"\n",
			p.X, p.Y, r, hex(b.Color), b.Name)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// Track is one body's recorded path in world coordinates.
type Track struct {
	Name   string
	Color  color.RGBA
	Points []r2.Vec
}

// TracksToSVG fits all tracks into a width x height image.
func TracksToSVG(tracks []Track, width, height int) string {
	var all []r2.Vec
	for _, t := range tracks {
		all = append(all, t.Points...)
	}
	v := viewport.New(width, height, viewport.DefaultPixelsPerAU).Fit(all, 0.05*float64(min(width, height)))

	var sb strings.Builder
	header(&sb, width, height)
	for _, t := range tracks {
		if len(t.Points) < 2 {
			continue
		}
		writePath(&sb, v.Path(t.Points), hex(t.Color))
		last := v.ToScreen(t.Points[len(t.Points)-1])
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s</title></circle>`+"\n",
			last.X, last.Y, hex(t.Color), t.Name)
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// Braille dot bits per sub-pixel, row by row.
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// BrailleToSVG renders a grid of braille runes as dots, cell pixels per
// sub-pixel.
func BrailleToSVG(grid [][]rune, cell float64, fill string) string {
	if len(grid) == 0 {
		return ""
	}
	w := int(float64(len(grid[0])) * cell * 2)
	h := int(float64(len(grid)) * cell * 4)

	var sb strings.Builder
	header(&sb, w, h)
	sb.WriteString(`<g fill="` + fill + "\">\n")
	for row, line := range grid {
		for col, r := range line {
			if r < 0x2800 {
				continue
			}
			pattern := r - 0x2800
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&brailleBits[dy][dx] == 0 {
						continue
					}
					cx := float64(col*2+dx)*cell + cell/2
					cy := float64(row*4+dy)*cell + cell/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, cell*0.4)
				}
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
