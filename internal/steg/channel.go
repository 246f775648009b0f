package steg

// EncodeChannel merges value into an original channel. The +1 keeps the
// delta non-zero even for a zero value, so a reference diff can tell a
// written pixel from an untouched one.
func EncodeChannel(orig, value uint8) uint8 {
	return orig ^ (value + 1)
}

// mergePixels encodes values onto the leading pixels of orig and returns a
// new slice; pixels past len(values) are copied unchanged.
func mergePixels(orig, values []Pixel) []Pixel {
	out := make([]Pixel, len(orig))
	copy(out, orig)
	for i, v := range values {
		p := orig[i]
		out[i] = Pixel{
			R: EncodeChannel(p.R, v.R),
			G: EncodeChannel(p.G, v.G),
			B: EncodeChannel(p.B, v.B),
		}
	}
	return out
}

// DiffPixels XORs carrier against reference, drops pixels whose diff is
// zero on every channel, and returns the remaining values (diff-1). The two
// slices must have the same length.
func DiffPixels(carrier, reference []Pixel) []Pixel {
	out := make([]Pixel, 0, len(carrier))
	for i, c := range carrier {
		ref := reference[i]
		d := Pixel{R: c.R ^ ref.R, G: c.G ^ ref.G, B: c.B ^ ref.B}
		if d == (Pixel{}) {
			continue
		}
		out = append(out, Pixel{R: d.R - 1, G: d.G - 1, B: d.B - 1})
	}
	return out
}
