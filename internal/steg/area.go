package steg

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Length is a single distance along one axis, either absolute pixels or a
// percentage of the buffer dimension on that axis.
type Length struct {
	Value   float64
	Percent bool
}

// ParseLength parses "12px" or "12.5%".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "px"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "px"))
		if err != nil {
			return Length{}, fmt.Errorf("length %q: pixel value must be an integer", s)
		}
		return Length{Value: float64(n)}, nil
	case strings.HasSuffix(s, "%"):
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Length{}, fmt.Errorf("length %q: bad percentage", s)
		}
		return Length{Value: f, Percent: true}, nil
	}
	return Length{}, fmt.Errorf("length %q: unit must be px or %%", s)
}

func (l Length) String() string {
	if l.Percent {
		return strconv.FormatFloat(l.Value, 'f', -1, 64) + "%"
	}
	return strconv.Itoa(int(l.Value)) + "px"
}

// pixels converts l to whole pixels against total. A term larger than the
// dimension itself is rejected before it is converted to an int.
func (l Length) pixels(total int) (int, error) {
	v := l.Value
	if l.Percent {
		v = math.Round(v / 100 * float64(total))
	}
	if math.Abs(v) > float64(total) {
		unit := "px"
		if l.Percent {
			unit = "%"
		}
		return 0, fmt.Errorf("%g%s exceeds the %dpx buffer dimension", l.Value, unit, total)
	}
	return int(v), nil
}

// Lengths is one or more Length terms that are summed. In JSON it is either
// a single string or an array of strings. A nil or empty Lengths means the
// constraint is not given.
type Lengths []Length

// Px returns a single absolute term.
func Px(n int) Lengths { return Lengths{{Value: float64(n)}} }

// Pct returns a single percentage term.
func Pct(p float64) Lengths { return Lengths{{Value: p, Percent: true}} }

func (ls Lengths) set() bool { return len(ls) > 0 }

func (ls Lengths) pixels(total int) (int, error) {
	sum := 0
	for _, l := range ls {
		n, err := l.pixels(total)
		if err != nil {
			return 0, err
		}
		sum += n
	}
	return sum, nil
}

func (ls Lengths) MarshalJSON() ([]byte, error) {
	if len(ls) == 1 {
		return json.Marshal(ls[0].String())
	}
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.String()
	}
	return json.Marshal(out)
}

func (ls *Lengths) UnmarshalJSON(data []byte) error {
	var terms []string
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		terms = []string{s}
	} else if err := json.Unmarshal(data, &terms); err != nil {
		return fmt.Errorf("length must be a string or a list of strings: %w", err)
	}
	out := make(Lengths, 0, len(terms))
	for _, t := range terms {
		l, err := ParseLength(t)
		if err != nil {
			return err
		}
		out = append(out, l)
	}
	*ls = out
	return nil
}

// Region constrains a rectangle on two independent axes. Per axis exactly
// two of {edge, opposite edge, size} are needed; when both edges are given
// the size is derived from them.
type Region struct {
	Top    Lengths `json:"top,omitempty"`
	Bottom Lengths `json:"bottom,omitempty"`
	Left   Lengths `json:"left,omitempty"`
	Right  Lengths `json:"right,omitempty"`
	Height Lengths `json:"height,omitempty"`
	Width  Lengths `json:"width,omitempty"`

	// Noise selects the per-channel bit width of the fixed-width variant.
	// The adaptive codec ignores it.
	Noise Noise `json:"noise,omitempty"`
}

// ParseRegion decodes a JSON region specification. Malformed input is
// reported as a *ConfigError.
func ParseRegion(data []byte) (Region, error) {
	var r Region
	if err := json.Unmarshal(data, &r); err != nil {
		return Region{}, &ConfigError{Reason: err.Error()}
	}
	return r, nil
}

// Area is a resolved rectangle, relative to the buffer's origin.
type Area struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Pixels is the number of pixels inside a.
func (a Area) Pixels() int { return a.Width * a.Height }

func (a Area) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", a.Width, a.Height, a.Left, a.Top)
}

// ResolveArea turns r into a concrete rectangle inside a width x height
// buffer. Rectangles that would reach outside the buffer are rejected
// rather than clamped. An axis left entirely unconstrained covers the full
// buffer dimension.
func ResolveArea(width, height int, r Region) (Area, error) {
	if width <= 0 || height <= 0 {
		return Area{}, &ConfigError{Reason: fmt.Sprintf("buffer is %dx%d", width, height)}
	}

	top, err := edgeOffset(height, "top", r.Top, r.Bottom, r.Height)
	if err != nil {
		return Area{}, err
	}
	bottom, err := edgeOffset(height, "bottom", r.Bottom, r.Top, r.Height)
	if err != nil {
		return Area{}, err
	}
	left, err := edgeOffset(width, "left", r.Left, r.Right, r.Width)
	if err != nil {
		return Area{}, err
	}
	right, err := edgeOffset(width, "right", r.Right, r.Left, r.Width)
	if err != nil {
		return Area{}, err
	}

	a := Area{
		Top:    top,
		Left:   left,
		Width:  width - left - right,
		Height: height - top - bottom,
	}
	if err := checkAxis("height", a.Height, height, r.Top, r.Bottom, r.Height); err != nil {
		return Area{}, err
	}
	if err := checkAxis("width", a.Width, width, r.Left, r.Right, r.Width); err != nil {
		return Area{}, err
	}
	return a, nil
}

// edgeOffset resolves the distance of one edge from its side of the buffer.
func edgeOffset(total int, name string, edge, opposite, size Lengths) (int, error) {
	var off int
	switch {
	case !edge.set() && !opposite.set() && !size.set():
		// An axis with no constraints spans the whole buffer.
		return 0, nil
	case edge.set():
		n, err := edge.pixels(total)
		if err != nil {
			return 0, &ConfigError{Field: name, Reason: err.Error()}
		}
		off = n
	case opposite.set() && size.set():
		sz, err := size.pixels(total)
		if err != nil {
			return 0, &ConfigError{Field: name, Reason: err.Error()}
		}
		opp, err := opposite.pixels(total)
		if err != nil {
			return 0, &ConfigError{Field: name, Reason: err.Error()}
		}
		off = total - sz - opp
	default:
		return 0, &ConfigError{Field: name, Reason: "needs the opposite edge and a size"}
	}
	if off < 0 {
		return 0, &ConfigError{Field: name, Reason: fmt.Sprintf("resolves to %d", off)}
	}
	return off, nil
}

func checkAxis(name string, got, total int, near, far, size Lengths) error {
	if got <= 0 {
		return &ConfigError{Field: name, Reason: fmt.Sprintf("resolves to %d", got)}
	}
	if near.set() && far.set() && size.set() {
		want, err := size.pixels(total)
		if err != nil {
			return &ConfigError{Field: name, Reason: err.Error()}
		}
		if want != got {
			return &ConfigError{Field: name, Reason: fmt.Sprintf("given as %d but edges leave %d", want, got)}
		}
	}
	return nil
}
