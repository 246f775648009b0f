package steg

import (
	"bytes"
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestNoise_RoundTrip(t *testing.T) {
	for _, n := range []Noise{NoiseLow, NoiseMedium, NoiseHigh} {
		t.Run(string(n), func(t *testing.T) {
			img := makeTestImage(300, 40)
			region := exportRegion
			region.Noise = n

			st, err := New().EncodeNoise(img, samplePayload(), region)
			if err != nil {
				t.Fatalf("EncodeNoise: %v", err)
			}
			if st.Layout != uniform(n.Bits()) || st.Noise != n {
				t.Fatalf("stats %+v", st)
			}

			// Decoding needs no reference and no level from the caller.
			var got []sample
			if err := New().DecodeNoise(img, exportRegion, &got); err != nil {
				t.Fatalf("DecodeNoise: %v", err)
			}
			if !reflect.DeepEqual(got, samplePayload()) {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestEmbedNoise_HeaderRecoverable(t *testing.T) {
	for _, n := range []Noise{NoiseLow, NoiseMedium, NoiseHigh} {
		img := makeTestImage(32, 2)
		a := Area{Width: 32, Height: 2}
		data := seal([]byte{0xde, 0xad, 0xbe, 0xef}, CompressNone)
		if _, err := EmbedNoise(img, a, data, n); err != nil {
			t.Fatalf("%s: %v", n, err)
		}
		back, got, err := ExtractNoise(img, a)
		if err != nil {
			t.Fatalf("%s: %v", n, err)
		}
		if got != n {
			t.Fatalf("header gave %q, encoded %q", got, n)
		}
		if !bytes.Equal(back, data) {
			t.Fatalf("%s: got %x, want %x", n, back, data)
		}
	}
}

func TestEmbedNoise_Capacity(t *testing.T) {
	data := make([]byte, 10000)
	rand.New(rand.NewSource(4)).Read(data)
	for _, n := range []Noise{NoiseLow, NoiseMedium, NoiseHigh} {
		img := makeTestImage(4, 4)
		before := cloneRGBA(img)
		_, err := EmbedNoise(img, Area{Width: 4, Height: 4}, data, n)
		var ce *CapacityError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: want *CapacityError, got %v", n, err)
		}
		if ce.HaveBits != 3*n.Bits()*15 {
			t.Fatalf("%s: HaveBits = %d", n, ce.HaveBits)
		}
		if !bytes.Equal(img.Pix, before.Pix) {
			t.Fatalf("%s: image modified", n)
		}
	}

	// Exactly full is fine, one more byte is not.
	img := makeTestImage(9, 1)
	if _, err := EmbedNoise(img, Area{Width: 9, Height: 1}, make([]byte, 3), NoiseLow); err != nil {
		t.Fatalf("24 bits in 8 low-noise pixels: %v", err)
	}
	if _, err := EmbedNoise(img, Area{Width: 9, Height: 1}, make([]byte, 4), NoiseLow); err == nil {
		t.Fatal("32 bits in 8 low-noise pixels accepted")
	}
}

func TestEmbedNoise_Isolation(t *testing.T) {
	img := makeTestImage(20, 20)
	before := cloneRGBA(img)
	a := Area{Top: 4, Left: 4, Width: 8, Height: 8}
	if _, err := EmbedNoise(img, a, []byte("hi"), NoiseHigh); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			inside := x >= 4 && x < 12 && y >= 4 && y < 12
			if !inside && img.RGBAAt(x, y) != before.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
			// Only the low 4 bits may move.
			if inside && img.RGBAAt(x, y).R&0xf0 != before.RGBAAt(x, y).R&0xf0 {
				t.Fatalf("pixel (%d,%d) high bits changed", x, y)
			}
		}
	}
}

func TestExtractNoise_BadHeader(t *testing.T) {
	img := makeTestImage(10, 1)
	p := img.Pix
	p[0], p[1], p[2] = 0xff, 0xff, 0x00 // two flags set
	_, _, err := ExtractNoise(img, Area{Width: 10, Height: 1})
	if !errors.Is(err, ErrBadHeaderPixel) {
		t.Fatalf("got %v", err)
	}
}

func TestEncodeNoise_RequiresLevel(t *testing.T) {
	img := makeTestImage(50, 20)
	_, err := New().EncodeNoise(img, "x", exportRegion)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "noise" {
		t.Fatalf("got %v", err)
	}
}
