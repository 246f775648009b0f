package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/aswearingen91/skillcheck/internal/steg"
)

// decodeImage reads any registered format into an RGBA buffer at the
// origin. JPEG is not registered: lossy carriers cannot hold a payload.
func decodeImage(r io.Reader) (*image.RGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return steg.ToRGBA(img), format, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
