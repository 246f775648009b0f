package steg

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// Compression selects the stream filter applied to the JSON text.
type Compression uint8

const (
	CompressNone Compression = iota
	CompressGzip
	CompressZstd
	CompressFlate
)

var compressionNames = [...]string{"none", "gzip", "zstd", "flate"}

func (c Compression) String() string {
	if int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression accepts the names printed by String.
func ParseCompression(s string) (Compression, error) {
	for i, n := range compressionNames {
		if strings.EqualFold(s, n) {
			return Compression(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compression %q", s)
}

// MaxPayloadSize bounds the decompressed JSON accepted by Unmarshal.
const MaxPayloadSize = 16 << 20

const (
	envelopeVersion = 1
	headerLen       = 6 // version, compression, uint32 body length
	digestLen       = 8
)

// Marshal serializes v as JSON, runs it through c and wraps the result in a
// length-prefixed, checksummed envelope.
func Marshal(v any, c Compression) ([]byte, error) {
	text, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("steg: marshal payload: %w", err)
	}
	body, err := compress(text, c)
	if err != nil {
		return nil, fmt.Errorf("steg: compress payload: %w", err)
	}
	return seal(body, c), nil
}

// Unmarshal reverses Marshal. Bytes after the envelope (bit padding) are
// ignored. Every failure is a *CorruptPayloadError.
func Unmarshal(data []byte, v any) error {
	body, c, err := open(data)
	if err != nil {
		return err
	}
	text, err := decompress(body, c)
	if err != nil {
		return corrupt(c.String(), err)
	}
	if err := json.Unmarshal(text, v); err != nil {
		return corrupt("json", err)
	}
	return nil
}

func seal(body []byte, c Compression) []byte {
	out := make([]byte, headerLen, headerLen+len(body)+digestLen)
	out[0] = envelopeVersion
	out[1] = byte(c)
	binary.BigEndian.PutUint32(out[2:], uint32(len(body)))
	out = append(out, body...)
	return append(out, digest(out)...)
}

func open(data []byte) ([]byte, Compression, error) {
	if len(data) < headerLen+digestLen {
		return nil, 0, corrupt("envelope", ErrShortEnvelope)
	}
	if data[0] != envelopeVersion {
		return nil, 0, corrupt("envelope", ErrUnknownVersion)
	}
	c := Compression(data[1])
	if int(c) >= len(compressionNames) {
		return nil, 0, corrupt("envelope", fmt.Errorf("unknown compression %d", data[1]))
	}
	n := binary.BigEndian.Uint32(data[2:headerLen])
	end := uint64(headerLen) + uint64(n)
	if end+digestLen > uint64(len(data)) {
		return nil, 0, corrupt("envelope", ErrShortEnvelope)
	}
	if !bytes.Equal(digest(data[:end]), data[end:end+digestLen]) {
		return nil, 0, corrupt("envelope", ErrChecksum)
	}
	return data[headerLen:end], c, nil
}

func digest(b []byte) []byte {
	h, err := blake2b.New(digestLen, nil)
	if err != nil {
		// Only fails for sizes outside 1..64.
		panic(err)
	}
	h.Write(b)
	return h.Sum(nil)
}

// unpackSealed reads exactly one envelope out of packed values, using the
// length in its header to stop before the padding.
func unpackSealed(values []Pixel, cb ChannelBits) ([]byte, error) {
	avail := len(values) * cb.Total() / 8
	if avail < headerLen {
		return nil, ErrShortEnvelope
	}
	head, err := UnpackPixels(values, cb, headerLen)
	if err != nil {
		return nil, err
	}
	size := uint64(EnvelopeSize(0)) + uint64(binary.BigEndian.Uint32(head[2:headerLen]))
	if size > uint64(avail) {
		return nil, ErrShortEnvelope
	}
	return UnpackPixels(values, cb, int(size))
}

// EnvelopeSize is the number of bytes Marshal adds around a compressed body.
func EnvelopeSize(bodyLen int) int { return headerLen + bodyLen + digestLen }

func compress(data []byte, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	switch c {
	case CompressNone:
		return data, nil
	case CompressGzip:
		zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
	case CompressFlate:
		fw, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(data); err != nil {
			return nil, err
		}
		if err := fw.Close(); err != nil {
			return nil, err
		}
	case CompressZstd:
		enc := zstdEncPool.Get().(*zstd.Encoder)
		out := enc.EncodeAll(data, nil)
		zstdEncPool.Put(enc)
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %d", uint8(c))
	}
	return buf.Bytes(), nil
}

func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressNone:
		return data, nil
	case CompressGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readLimited(zr)
	case CompressFlate:
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		return readLimited(fr)
	case CompressZstd:
		dec := zstdDecPool.Get().(*zstd.Decoder)
		out, err := dec.DecodeAll(data, nil)
		zstdDecPool.Put(dec)
		return out, err
	}
	return nil, fmt.Errorf("unknown compression %d", uint8(c))
}

func readLimited(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxPayloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxPayloadSize {
		return nil, fmt.Errorf("payload larger than %d bytes", MaxPayloadSize)
	}
	return out, nil
}

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithLowerEncoderMem(true),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(MaxPayloadSize),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}
