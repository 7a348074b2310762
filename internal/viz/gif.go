package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	dotSize  = 4
	gifDelay = 2
)

// GIFRecorder rasterises canvas frames into an animation.
type GIFRecorder struct {
	frames  []*image.Paletted
	palette color.Palette
}

func NewGIFRecorder(fg color.Color) *GIFRecorder {
	return &GIFRecorder{palette: color.Palette{color.Black, fg}}
}

func (r *GIFRecorder) Capture(c *Canvas) {
	pw, ph := c.PixelSize()
	img := image.NewPaletted(image.Rect(0, 0, pw*dotSize, ph*dotSize), r.palette)
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for dy := 0; dy < dotSize; dy++ {
				for dx := 0; dx < dotSize; dx++ {
					img.SetColorIndex(x*dotSize+dx, y*dotSize+dy, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *GIFRecorder) Len() int { return len(r.frames) }

func (r *GIFRecorder) Save(path string) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, gifDelay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
