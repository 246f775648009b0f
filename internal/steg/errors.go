package steg

import (
	"errors"
	"fmt"
)

// ConfigError is returned when a region specification cannot be resolved
// against a buffer. It is raised before any pixel is touched.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "steg: invalid region: " + e.Reason
	}
	return "steg: invalid region." + e.Field + ": " + e.Reason
}

// CapacityError is returned when the payload does not fit in the region.
type CapacityError struct {
	NeedBits int // payload size in bits
	HaveBits int // usable bits in the region
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("steg: payload needs %d bits, region holds %d", e.NeedBits, e.HaveBits)
}

// SizeMismatchError is returned when the carrier and reference regions
// hold a different number of pixels.
type SizeMismatchError struct {
	Carrier   int
	Reference int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("steg: carrier region has %d pixels, reference region has %d", e.Carrier, e.Reference)
}

// CorruptPayloadError is returned when the recovered bytes cannot be turned
// back into a value. No partial value is ever returned with it.
type CorruptPayloadError struct {
	Stage string
	Err   error
}

func (e *CorruptPayloadError) Error() string {
	if e.Err == nil {
		return "steg: corrupt payload (" + e.Stage + ")"
	}
	return "steg: corrupt payload (" + e.Stage + "): " + e.Err.Error()
}

func (e *CorruptPayloadError) Unwrap() error { return e.Err }

func corrupt(stage string, err error) error {
	return &CorruptPayloadError{Stage: stage, Err: err}
}

// Sentinel causes wrapped by CorruptPayloadError.
var (
	ErrShortEnvelope   = errors.New("envelope too short")
	ErrUnknownVersion  = errors.New("unknown envelope version")
	ErrChecksum        = errors.New("envelope checksum mismatch")
	ErrBadHeaderPixel  = errors.New("header pixel does not describe a valid bit layout")
	ErrChannelOverflow = errors.New("channel value exceeds its bit width")
	ErrNoData          = errors.New("region carries no data")
	ErrShortData       = errors.New("pixels hold fewer bytes than expected")
)

// IsCodecError reports whether err (or anything it wraps) is one of the
// codec's own error kinds, as opposed to an I/O or transport failure.
func IsCodecError(err error) bool {
	var (
		ce *ConfigError
		ca *CapacityError
		sm *SizeMismatchError
		cp *CorruptPayloadError
	)
	return errors.As(err, &ce) || errors.As(err, &ca) || errors.As(err, &sm) || errors.As(err, &cp)
}
