package steg

import (
	"fmt"
	"image"
	"image/draw"
)

// Pixel is one RGB triple. Alpha is not carried.
type Pixel struct {
	R, G, B uint8
}

// ToRGBA returns src as an *image.RGBA whose bounds start at the origin.
// An *image.RGBA already at the origin is returned as is; anything else is
// copied.
func ToRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return rgba
}

func checkBounds(img *image.RGBA, a Area) error {
	b := img.Bounds()
	if a.Top < 0 || a.Left < 0 || a.Width <= 0 || a.Height <= 0 ||
		a.Left+a.Width > b.Dx() || a.Top+a.Height > b.Dy() {
		return &ConfigError{Reason: fmt.Sprintf("area %s outside %dx%d buffer", a, b.Dx(), b.Dy())}
	}
	return nil
}

// ReadPixels returns the pixels of a in row-major order, dropping alpha.
func ReadPixels(img *image.RGBA, a Area) ([]Pixel, error) {
	if err := checkBounds(img, a); err != nil {
		return nil, err
	}
	origin := img.Rect.Min
	out := make([]Pixel, 0, a.Pixels())
	for y := a.Top; y < a.Top+a.Height; y++ {
		off := img.PixOffset(origin.X+a.Left, origin.Y+y)
		for x := 0; x < a.Width; x++ {
			out = append(out, Pixel{R: img.Pix[off], G: img.Pix[off+1], B: img.Pix[off+2]})
			off += 4
		}
	}
	return out, nil
}

// WritePixels writes px into a in row-major order with full opacity. Nothing
// outside a is modified.
func WritePixels(img *image.RGBA, a Area, px []Pixel) error {
	if err := checkBounds(img, a); err != nil {
		return err
	}
	if len(px) != a.Pixels() {
		return fmt.Errorf("steg: %d pixels do not fill area %s", len(px), a)
	}
	origin := img.Rect.Min
	i := 0
	for y := a.Top; y < a.Top+a.Height; y++ {
		off := img.PixOffset(origin.X+a.Left, origin.Y+y)
		for x := 0; x < a.Width; x++ {
			p := px[i]
			img.Pix[off] = p.R
			img.Pix[off+1] = p.G
			img.Pix[off+2] = p.B
			img.Pix[off+3] = 0xff
			off += 4
			i++
		}
	}
	return nil
}
