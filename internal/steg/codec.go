// Package steg hides structured data inside a rectangle of an image's
// pixels and recovers it again.
//
// The adaptive codec (Embed, Extract, Codec.Encode, Codec.Decode) spreads
// the payload over as few bits per pixel as the region allows and XORs
// each channel with value+1, so decoding needs an unmodified reference
// image to diff against. The fixed-width variant (EmbedNoise, ExtractNoise)
// overwrites a fixed number of low bits per channel and needs no reference.
//
// Both write the first pixel of the region as a header describing the bit
// layout, and both carry the payload inside a length-prefixed, checksummed
// envelope produced by Marshal.
package steg

import (
	"image"
)

// Stats describes a completed embed.
type Stats struct {
	Area         Area        `json:"area"`
	Layout       ChannelBits `json:"layout"`
	Noise        Noise       `json:"noise,omitempty"`
	PayloadBytes int         `json:"payload_bytes"`
	PixelsUsed   int         `json:"pixels_used"` // header included
}

// Embed writes data, an envelope built by Marshal, into area a of img
// using the adaptive layout. The header pixel and the packed values are
// merged onto the existing pixels and written back in one call; on error
// img is left untouched.
func Embed(img *image.RGBA, a Area, data []byte) (Stats, error) {
	px, err := ReadPixels(img, a)
	if err != nil {
		return Stats{}, err
	}
	bpp, err := bitsPerPixel(len(data), len(px)-1)
	if err != nil {
		return Stats{}, err
	}
	cb := SplitBits(bpp)

	values := make([]Pixel, 0, len(px))
	values = append(values, Pixel{R: uint8(cb.R), G: uint8(cb.G), B: uint8(cb.B)})
	values = append(values, PackPixels(data, cb)...)
	if err := WritePixels(img, a, mergePixels(px, values)); err != nil {
		return Stats{}, err
	}

	st := Stats{Area: a, Layout: cb, PayloadBytes: len(data), PixelsUsed: len(values)}
	Logger().Debug("steg: embedded payload",
		"area", a.String(), "bpp", bpp, "r", cb.R, "g", cb.G, "b", cb.B,
		"bytes", len(data), "pixels", st.PixelsUsed)
	return st, nil
}

// Extract recovers the envelope written by Embed by diffing area ca of the
// carrier against area ra of the reference. Reading stops at the length in
// the envelope header, so padding never comes back. Any drift between the
// two images outside the written pixels breaks decoding.
func Extract(carrier *image.RGBA, ca Area, reference *image.RGBA, ra Area) ([]byte, ChannelBits, error) {
	cp, err := ReadPixels(carrier, ca)
	if err != nil {
		return nil, ChannelBits{}, err
	}
	rp, err := ReadPixels(reference, ra)
	if err != nil {
		return nil, ChannelBits{}, err
	}
	if len(cp) != len(rp) {
		return nil, ChannelBits{}, &SizeMismatchError{Carrier: len(cp), Reference: len(rp)}
	}

	diffs := DiffPixels(cp, rp)
	if len(diffs) == 0 {
		return nil, ChannelBits{}, corrupt("header", ErrNoData)
	}
	h := diffs[0]
	cb := ChannelBits{R: int(h.R), G: int(h.G), B: int(h.B)}
	if !cb.valid() {
		return nil, ChannelBits{}, corrupt("header", ErrBadHeaderPixel)
	}
	data, err := unpackSealed(diffs[1:], cb)
	if err != nil {
		return nil, ChannelBits{}, corrupt("unpack", err)
	}
	Logger().Debug("steg: extracted payload",
		"area", ca.String(), "bpp", cb.Total(), "pixels", len(diffs), "bytes", len(data))
	return data, cb, nil
}

// Codec encodes values into images and back.
type Codec struct {
	compression Compression
}

// Option configures a Codec.
type Option func(*Codec)

// WithCompression sets the stream filter used by Encode. Decoding reads the
// filter from the envelope, so it is not affected.
func WithCompression(c Compression) Option {
	return func(cd *Codec) { cd.compression = c }
}

// New returns a Codec that gzips payloads unless told otherwise.
func New(opts ...Option) *Codec {
	c := &Codec{compression: CompressGzip}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compression reports the filter used by Encode.
func (c *Codec) Compression() Compression { return c.compression }

// Encode serializes v and hides it in the region r of img.
func (c *Codec) Encode(img *image.RGBA, v any, r Region) (Stats, error) {
	a, err := resolveFor(img, r)
	if err != nil {
		return Stats{}, err
	}
	data, err := Marshal(v, c.compression)
	if err != nil {
		return Stats{}, err
	}
	return Embed(img, a, data)
}

// Decode reads a value hidden by Encode, diffing against reference. The
// same region specification is resolved independently on both images.
func (c *Codec) Decode(carrier, reference *image.RGBA, r Region, v any) error {
	return c.DecodeRegions(carrier, r, reference, r, v)
}

// DecodeRegions is Decode with separate region specifications for the
// carrier and the reference.
func (c *Codec) DecodeRegions(carrier *image.RGBA, cr Region, reference *image.RGBA, rr Region, v any) error {
	ca, err := resolveFor(carrier, cr)
	if err != nil {
		return err
	}
	ra, err := resolveFor(reference, rr)
	if err != nil {
		return err
	}
	data, _, err := Extract(carrier, ca, reference, ra)
	if err != nil {
		return err
	}
	return Unmarshal(data, v)
}

// EncodeNoise hides v with the fixed-width variant at the level r.Noise.
func (c *Codec) EncodeNoise(img *image.RGBA, v any, r Region) (Stats, error) {
	a, err := resolveFor(img, r)
	if err != nil {
		return Stats{}, err
	}
	if r.Noise.Bits() == 0 {
		return Stats{}, &ConfigError{Field: "noise", Reason: "must be low, medium or high"}
	}
	data, err := Marshal(v, c.compression)
	if err != nil {
		return Stats{}, err
	}
	return EmbedNoise(img, a, data, r.Noise)
}

// DecodeNoise reads a value hidden by EncodeNoise. The level comes from
// the header pixel; r.Noise is ignored.
func (c *Codec) DecodeNoise(img *image.RGBA, r Region, v any) error {
	a, err := resolveFor(img, r)
	if err != nil {
		return err
	}
	data, _, err := ExtractNoise(img, a)
	if err != nil {
		return err
	}
	return Unmarshal(data, v)
}

func resolveFor(img *image.RGBA, r Region) (Area, error) {
	b := img.Bounds()
	return ResolveArea(b.Dx(), b.Dy(), r)
}
