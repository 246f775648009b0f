package steg

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestResolveArea(t *testing.T) {
	for _, tc := range []struct {
		name   string
		w, h   int
		region Region
		want   Area
	}{
		{
			name:   "top_and_height_full_width",
			w:      200,
			h:      100,
			region: Region{Top: Px(0), Height: Px(16)},
			want:   Area{Top: 0, Left: 0, Width: 200, Height: 16},
		},
		{
			name:   "bottom_percent",
			w:      200,
			h:      100,
			region: Region{Bottom: Pct(10), Left: Px(0), Right: Px(0), Height: Px(16)},
			want:   Area{Top: 74, Left: 0, Width: 200, Height: 16},
		},
		{
			name:   "export_strip",
			w:      1664,
			h:      500,
			region: Region{Bottom: Px(0), Left: Px(0), Width: Pct(100), Height: Px(16)},
			want:   Area{Top: 484, Left: 0, Width: 1664, Height: 16},
		},
		{
			name:   "both_edges",
			w:      50,
			h:      40,
			region: Region{Top: Px(5), Bottom: Px(5), Left: Px(10), Right: Pct(20)},
			want:   Area{Top: 5, Left: 10, Width: 30, Height: 30},
		},
		{
			name:   "summed_terms",
			w:      100,
			h:      100,
			region: Region{Top: Lengths{{Value: 10, Percent: true}, {Value: 3}}, Height: Px(4), Bottom: Px(83), Left: Px(1), Width: Px(2)},
			want:   Area{Top: 13, Left: 1, Width: 2, Height: 4},
		},
		{
			name:   "percent_rounds_per_term",
			w:      3,
			h:      3,
			region: Region{Left: Pct(50), Right: Px(0), Top: Px(0), Bottom: Pct(50)},
			want:   Area{Top: 0, Left: 2, Width: 1, Height: 1},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveArea(tc.w, tc.h, tc.region)
			if err != nil {
				t.Fatalf("ResolveArea: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestResolveArea_Errors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		region Region
		field  string
	}{
		{name: "size_only", region: Region{Height: Px(10)}, field: "top"},
		{name: "edge_only", region: Region{Left: Px(10)}, field: "right"},
		{name: "negative_height", region: Region{Top: Px(60), Bottom: Px(60)}, field: "height"},
		{name: "zero_width", region: Region{Left: Pct(50), Right: Pct(50)}, field: "width"},
		{name: "size_too_big", region: Region{Top: Px(0), Height: Px(101)}, field: "bottom"},
		{name: "over_constrained", region: Region{Top: Px(0), Bottom: Px(0), Height: Px(10)}, field: "height"},
		{name: "huge_percent", region: Region{Top: Pct(1e300), Height: Px(10)}, field: "top"},
		{name: "huge_px", region: Region{Bottom: Px(math.MaxInt), Height: Px(10)}, field: "top"},
		{name: "huge_size", region: Region{Top: Px(0), Bottom: Px(0), Height: Pct(-1e300)}, field: "height"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveArea(200, 100, tc.region)
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("want *ConfigError, got %v", err)
			}
			if ce.Field != tc.field {
				t.Fatalf("field = %q, want %q (%v)", ce.Field, tc.field, err)
			}
		})
	}
}

func TestResolveArea_OversizedTerm(t *testing.T) {
	_, err := ResolveArea(200, 100, Region{Top: Pct(1e300), Height: Px(10)})
	if err == nil || !strings.Contains(err.Error(), "exceeds the 100px buffer dimension") {
		t.Fatalf("got %v", err)
	}
	if strings.Contains(err.Error(), "resolves to") {
		t.Fatalf("overflowed offset leaked into the error: %v", err)
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion([]byte(`{"bottom":"10%","left":["2px","1%"],"right":"0px","height":"16px","noise":"medium"}`))
	if err != nil {
		t.Fatalf("ParseRegion: %v", err)
	}
	if r.Noise != NoiseMedium {
		t.Fatalf("noise = %q", r.Noise)
	}
	a, err := ResolveArea(200, 100, r)
	if err != nil {
		t.Fatalf("ResolveArea: %v", err)
	}
	if want := (Area{Top: 74, Left: 4, Width: 196, Height: 16}); a != want {
		t.Fatalf("got %+v, want %+v", a, want)
	}

	for _, bad := range []string{
		`{"top":"10"}`,
		`{"top":"1.5px"}`,
		`{"top":"x%"}`,
		`{"top":5}`,
		`{"noise":"loud"}`,
		`not json`,
	} {
		_, err := ParseRegion([]byte(bad))
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("ParseRegion(%s): want *ConfigError, got %v", bad, err)
		}
	}
}

func TestLengthsJSON(t *testing.T) {
	r := Region{Bottom: Px(0), Left: Lengths{{Value: 4}, {Value: 12.5, Percent: true}}, Width: Pct(100), Height: Px(16)}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"bottom":"0px","left":["4px","12.5%"],"height":"16px","width":"100%"}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
	back, err := ParseRegion(data)
	if err != nil {
		t.Fatal(err)
	}
	a1, _ := ResolveArea(64, 64, r)
	a2, _ := ResolveArea(64, 64, back)
	if a1 != a2 {
		t.Fatalf("areas differ after JSON: %+v vs %+v", a1, a2)
	}
}
