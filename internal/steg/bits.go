package steg

// MaxChannelBits is the widest value a single channel can carry. A channel
// is encoded as orig XOR (value+1), so value+1 has to fit in a byte.
const MaxChannelBits = 7

// MaxBitsPerPixel is the widest adaptive layout.
const MaxBitsPerPixel = 3 * MaxChannelBits

// ChannelBits is how many payload bits each channel of a pixel carries.
type ChannelBits struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Total is the number of payload bits per pixel.
func (c ChannelBits) Total() int { return c.R + c.G + c.B }

// SplitBits spreads bpp bits over the channels: red first, then green, the
// remainder to blue.
func SplitBits(bpp int) ChannelBits {
	r := (bpp + 2) / 3
	g := (bpp - r + 1) / 2
	return ChannelBits{R: r, G: g, B: bpp - r - g}
}

// valid reports whether c is a layout SplitBits could have produced.
func (c ChannelBits) valid() bool {
	bpp := c.Total()
	return bpp >= 1 && bpp <= MaxBitsPerPixel && SplitBits(bpp) == c
}

// uniform is the fixed-width layout: the same width on every channel.
func uniform(bppc int) ChannelBits { return ChannelBits{R: bppc, G: bppc, B: bppc} }

// bitsPerPixel picks the smallest adaptive width that fits n bytes into
// the given number of payload pixels.
func bitsPerPixel(n, pixels int) (int, error) {
	need := n * 8
	if pixels <= 0 {
		return 0, &CapacityError{NeedBits: need}
	}
	bpp := (need + pixels - 1) / pixels
	if bpp > MaxBitsPerPixel {
		return 0, &CapacityError{NeedBits: need, HaveBits: pixels * MaxBitsPerPixel}
	}
	if bpp == 0 {
		bpp = 1
	}
	return bpp, nil
}

// PackPixels splits data, most significant bit first, into one value per
// channel using the widths in cb. The last pixel is zero padded.
func PackPixels(data []byte, cb ChannelBits) []Pixel {
	bpp := cb.Total()
	if bpp == 0 {
		return nil
	}
	n := (len(data)*8 + bpp - 1) / bpp
	br := bitReader{data: data}
	out := make([]Pixel, n)
	for i := range out {
		out[i] = Pixel{
			R: br.read(cb.R),
			G: br.read(cb.G),
			B: br.read(cb.B),
		}
	}
	return out
}

// UnpackPixels is the inverse of PackPixels for n bytes of data. The zero
// padding on the last pixel can be wider than a byte, so the byte count has
// to come from the caller. Values holding fewer than n bytes yield
// ErrShortData.
func UnpackPixels(values []Pixel, cb ChannelBits, n int) ([]byte, error) {
	if n < 0 || n*8 > len(values)*cb.Total() {
		return nil, ErrShortData
	}
	var bw bitWriter
	bw.grow(n + 3)
	for _, v := range values {
		if len(bw.out) >= n {
			break
		}
		if v.R>>cb.R != 0 || v.G>>cb.G != 0 || v.B>>cb.B != 0 {
			return nil, ErrChannelOverflow
		}
		bw.write(v.R, cb.R)
		bw.write(v.G, cb.G)
		bw.write(v.B, cb.B)
	}
	return bw.out[:n], nil
}

// PackUniform packs data with bppc bits on every channel.
func PackUniform(data []byte, bppc int) []Pixel {
	return PackPixels(data, uniform(bppc))
}

// UnpackUniform is the inverse of PackUniform for n bytes of data.
func UnpackUniform(values []Pixel, bppc, n int) ([]byte, error) {
	return UnpackPixels(values, uniform(bppc), n)
}

type bitReader struct {
	data []byte
	pos  int
}

// read returns the next n bits (n <= 8). Reads past the end yield zeros.
func (r *bitReader) read(n int) uint8 {
	var v uint8
	for i := 0; i < n; i++ {
		v <<= 1
		if r.pos < len(r.data)*8 {
			v |= (r.data[r.pos>>3] >> (7 - (r.pos & 7))) & 1
		}
		r.pos++
	}
	return v
}

type bitWriter struct {
	out  []byte
	cur  byte
	nbit int
}

func (w *bitWriter) grow(n int) {
	if cap(w.out) < n {
		w.out = make([]byte, 0, n)
	}
}

// write appends the low n bits of v, most significant first.
func (w *bitWriter) write(v uint8, n int) {
	for i := n - 1; i >= 0; i-- {
		w.cur = w.cur<<1 | (v>>i)&1
		w.nbit++
		if w.nbit == 8 {
			w.out = append(w.out, w.cur)
			w.cur, w.nbit = 0, 0
		}
	}
}
