package config

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"white":     "#ffffff",
	"yellow":    "#ffff00",
	"blue":      "#6495ed",
	"red":       "#bc2732",
	"grey":      "#504e51",
	"gray":      "#504e51",
	"dark_grey": "#504e51",
	"orange":    "#d8a25e",
	"green":     "#4caf50",
	"cyan":      "#00bcd4",
}

// ParseColor accepts a name from the palette or a #rgb / #rrggbb hex string.
func ParseColor(s string) (color.RGBA, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[key]; ok {
		key = hex
	}
	if !strings.HasPrefix(key, "#") {
		key = "#" + key
	}
	c, err := colorful.Hex(key)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// AutoColor spreads n colours evenly around the HCL hue circle.
func AutoColor(i, n int) color.RGBA {
	if n < 1 {
		n = 1
	}
	hue := 360 * float64(i%n) / float64(n)
	r, g, b := colorful.Hcl(hue, 0.5, 0.75).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// FormatColor renders c as #rrggbb.
func FormatColor(c color.RGBA) string {
	cf, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return cf.Hex()
}
