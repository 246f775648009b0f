package steg

import (
	"fmt"
	"image"
)

// Noise is the fixed-width variant's density setting. Each level stores a
// fixed number of bits in the low bits of every channel, with no reference
// image needed to read them back.
type Noise string

const (
	NoiseLow    Noise = "low"
	NoiseMedium Noise = "medium"
	NoiseHigh   Noise = "high"
)

// Bits is the number of bits stored per channel, or 0 for an unknown level.
func (n Noise) Bits() int {
	switch n {
	case NoiseLow:
		return 1
	case NoiseMedium:
		return 2
	case NoiseHigh:
		return 4
	}
	return 0
}

// ParseNoise validates s.
func ParseNoise(s string) (Noise, error) {
	n := Noise(s)
	if n.Bits() == 0 {
		return "", fmt.Errorf("noise %q: want low, medium or high", s)
	}
	return n, nil
}

func (n *Noise) UnmarshalText(b []byte) error {
	v, err := ParseNoise(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// The header pixel flags the level in the least significant bit of one
// channel: red for low, green for medium, blue for high.
var noiseCodes = map[Noise]Pixel{
	NoiseLow:    {R: 1},
	NoiseMedium: {G: 1},
	NoiseHigh:   {B: 1},
}

func noiseFromHeader(p Pixel) (Noise, bool) {
	code := Pixel{R: p.R & 1, G: p.G & 1, B: p.B & 1}
	for n, c := range noiseCodes {
		if c == code {
			return n, true
		}
	}
	return "", false
}

func replaceLow(p, v Pixel, bits int) Pixel {
	mask := uint8(1)<<bits - 1
	return Pixel{
		R: p.R&^mask | v.R&mask,
		G: p.G&^mask | v.G&mask,
		B: p.B&^mask | v.B&mask,
	}
}

func lowBits(p Pixel, bits int) Pixel {
	mask := uint8(1)<<bits - 1
	return Pixel{R: p.R & mask, G: p.G & mask, B: p.B & mask}
}

// EmbedNoise writes data, an envelope built by Marshal, into the low bits
// of a at the given level. The first pixel carries the level; pixels after
// the data are left untouched.
func EmbedNoise(img *image.RGBA, a Area, data []byte, n Noise) (Stats, error) {
	bppc := n.Bits()
	if bppc == 0 {
		return Stats{}, &ConfigError{Field: "noise", Reason: fmt.Sprintf("unknown level %q", string(n))}
	}
	px, err := ReadPixels(img, a)
	if err != nil {
		return Stats{}, err
	}
	need, have := len(data)*8, 3*bppc*(len(px)-1)
	if len(px) < 2 || need > have {
		return Stats{}, &CapacityError{NeedBits: need, HaveBits: max(have, 0)}
	}

	values := PackUniform(data, bppc)
	out := make([]Pixel, len(px))
	copy(out, px)
	out[0] = replaceLow(px[0], noiseCodes[n], 1)
	for i, v := range values {
		out[i+1] = replaceLow(px[i+1], v, bppc)
	}
	if err := WritePixels(img, a, out); err != nil {
		return Stats{}, err
	}

	st := Stats{Area: a, Layout: uniform(bppc), Noise: n, PayloadBytes: len(data), PixelsUsed: len(values) + 1}
	Logger().Debug("steg: embedded fixed-width payload",
		"area", a.String(), "noise", string(n), "bytes", len(data), "pixels", st.PixelsUsed)
	return st, nil
}

// ExtractNoise reads back the envelope written by EmbedNoise together with
// the level found in the header pixel.
func ExtractNoise(img *image.RGBA, a Area) ([]byte, Noise, error) {
	px, err := ReadPixels(img, a)
	if err != nil {
		return nil, "", err
	}
	if len(px) < 2 {
		return nil, "", corrupt("header", ErrNoData)
	}
	n, ok := noiseFromHeader(px[0])
	if !ok {
		return nil, "", corrupt("header", ErrBadHeaderPixel)
	}
	bppc := n.Bits()
	values := make([]Pixel, len(px)-1)
	for i, p := range px[1:] {
		values[i] = lowBits(p, bppc)
	}
	data, err := unpackSealed(values, uniform(bppc))
	if err != nil {
		return nil, "", corrupt("unpack", err)
	}
	return data, n, nil
}
