// Package snapshot renders a CHIP-8 framebuffer to a PNG image, for the
// non-protocol /debug/frame.png route and the `chippy debug-frame` CLI
// command. It replaces the teacher's on-screen pixelgl rendering
// (bradford-hamilton-chippy/internal/pixel/pixel.go) with a headless
// equivalent that serves the same concern - turning the 64x32 monochrome
// plane into pixels a person can look at.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	xdraw "golang.org/x/image/draw"
)

const (
	screenW = 64
	screenH = 32

	// scale is the nearest-neighbor upscale factor applied to the 64x32
	// plane before a status line is overlaid.
	scale = 8

	statusBarHeight = 16
	margin          = 4
)

var (
	bgColor  = color.Gray{Y: 0x10}
	fgColor  = color.Gray{Y: 0xF0}
	barColor = color.Gray{Y: 0x00}
)

// Status is the one-line overlay drawn above the framebuffer.
type Status struct {
	TPS     int
	DT      uint8
	ST      uint8
	Sound   bool
	Message string // overrides the default tps/dt/st/sound line when set
}

func (s Status) line() string {
	if s.Message != "" {
		return s.Message
	}
	soundState := "off"
	if s.Sound {
		soundState = "on"
	}
	return fmt.Sprintf("tps=%d dt=%d st=%d sound=%s", s.TPS, s.DT, s.ST, soundState)
}

// Encode renders pixels (2048 bytes of 0/1, row-major 64x32) plus a status
// line into a PNG written to w.
func Encode(w io.Writer, pixels []byte, status Status) error {
	if len(pixels) != screenW*screenH {
		return fmt.Errorf("snapshot: expected %d pixels, got %d", screenW*screenH, len(pixels))
	}

	src := image.NewGray(image.Rect(0, 0, screenW, screenH))
	for y := 0; y < screenH; y++ {
		for x := 0; x < screenW; x++ {
			c := bgColor
			if pixels[y*screenW+x] != 0 {
				c = fgColor
			}
			src.SetGray(x, y, c)
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, screenW*scale, screenH*scale))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	out := image.NewRGBA(image.Rect(0, 0, screenW*scale, screenH*scale+statusBarHeight))
	draw.Draw(out, image.Rect(0, 0, out.Bounds().Dx(), statusBarHeight), &image.Uniform{C: barColor}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, statusBarHeight, out.Bounds().Dx(), out.Bounds().Dy()), scaled, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(fgColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(margin, statusBarHeight-5),
	}
	drawer.DrawString(status.line())

	return png.Encode(w, out)
}
