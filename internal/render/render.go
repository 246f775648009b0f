// Package render draws rated skills as a grid of cards.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/aswearingen91/skillcheck/internal/skills"
)

// Config controls the look of the grid. Sizes are in pixels, colours are
// "#rrggbb" strings.
type Config struct {
	Background  string
	Card        string
	Text        string
	SkillBorder string

	OuterPadding    int
	NumColumns      int
	ColumnWidth     int
	CategoryPadding int
	CategorySpacing int
	LevelSpacing    int
	SkillSpacing    int

	SkillFontSize    float64
	LevelFontSize    float64
	CategoryFontSize float64
}

// DefaultConfig matches the exported images of the web app.
func DefaultConfig() Config {
	return Config{
		Background:       "#0c4a6e",
		Card:             "#082f49",
		Text:             "#ffffff",
		SkillBorder:      "#ffffff",
		OuterPadding:     16,
		NumColumns:       4,
		ColumnWidth:      400,
		CategoryPadding:  16,
		CategorySpacing:  8,
		LevelSpacing:     8,
		SkillSpacing:     4,
		SkillFontSize:    12,
		LevelFontSize:    14,
		CategoryFontSize: 16,
	}
}

// ValidColor reports whether s is a "#rgb" or "#rrggbb" colour.
func ValidColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// Validate checks colours and sizes.
func (c Config) Validate() error {
	for name, v := range map[string]string{
		"background": c.Background, "card": c.Card, "text": c.Text, "skill border": c.SkillBorder,
	} {
		if !ValidColor(v) {
			return fmt.Errorf("render: %s colour %q is not #rgb or #rrggbb", name, v)
		}
	}
	if c.NumColumns < 1 || c.ColumnWidth <= 2*c.CategoryPadding {
		return fmt.Errorf("render: %d columns of width %d do not fit padding %d",
			c.NumColumns, c.ColumnWidth, c.CategoryPadding)
	}
	if c.OuterPadding < 0 || c.CategorySpacing < 0 || c.LevelSpacing < 0 || c.SkillSpacing < 0 {
		return fmt.Errorf("render: negative spacing")
	}
	if c.SkillFontSize <= 0 || c.LevelFontSize <= 0 || c.CategoryFontSize <= 0 {
		return fmt.Errorf("render: font sizes must be positive")
	}
	return nil
}

var (
	regularSource = sync.OnceValues(func() (*text.FontSource, error) { return text.NewFontSource(goregular.TTF) })
	boldSource    = sync.OnceValues(func() (*text.FontSource, error) { return text.NewFontSource(gobold.TTF) })
)

type faces struct {
	skill, level, category text.Face
}

func loadFaces(cfg Config) (faces, error) {
	regular, err := regularSource()
	if err != nil {
		return faces{}, fmt.Errorf("render: load regular font: %w", err)
	}
	bold, err := boldSource()
	if err != nil {
		return faces{}, fmt.Errorf("render: load bold font: %w", err)
	}
	return faces{
		skill:    regular.Face(cfg.SkillFontSize),
		level:    bold.Face(cfg.LevelFontSize),
		category: bold.Face(cfg.CategoryFontSize),
	}, nil
}

func lineHeight(f text.Face) float64 {
	m := f.Metrics()
	return m.Ascent + m.Descent
}

type chip struct {
	name       string
	x, y, w, h int
}

type levelBox struct {
	title  string
	y      int // relative to the card
	height int
	chips  []chip
}

type card struct {
	title  string
	height int
	levels []levelBox
}

func layoutLevel(level skills.ResultLevel, cfg Config, fs faces) levelBox {
	maxX := cfg.ColumnWidth - 2*cfg.CategoryPadding
	skillH := int(math.Ceil(lineHeight(fs.skill) + 4))

	lb := levelBox{title: string(level.Level)}
	x, y, rowH := 0, int(math.Ceil(lineHeight(fs.level)))+2, 0
	for _, name := range level.Skills {
		w := int(math.Ceil(fs.skill.Advance(name) + 12))
		if x > 0 && x+w > maxX {
			x = 0
			y += rowH + cfg.SkillSpacing
			rowH = 0
		}
		lb.chips = append(lb.chips, chip{name: name, x: x, y: y, w: w, h: skillH})
		x += w + cfg.SkillSpacing
		rowH = max(rowH, skillH)
	}
	lb.height = y + rowH
	return lb
}

func layoutCard(rc skills.ResultCategory, cfg Config, fs faces) card {
	c := card{title: rc.Category}
	y := cfg.CategoryPadding + int(math.Ceil(lineHeight(fs.category))) + 8
	for _, l := range rc.Levels {
		lb := layoutLevel(l, cfg, fs)
		lb.y = y
		c.levels = append(c.levels, lb)
		y += lb.height + cfg.LevelSpacing
	}
	c.height = y - cfg.LevelSpacing + cfg.CategoryPadding
	return c
}

// Draw renders the result cards into a new image. The outer padding is
// plain background, which is where exports hide their data.
func Draw(results []skills.ResultCategory, cfg Config) (*image.RGBA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fs, err := loadFaces(cfg)
	if err != nil {
		return nil, err
	}

	cards := make([]card, len(results))
	heights := make([]int, len(results))
	for i, rc := range results {
		cards[i] = layoutCard(rc, cfg, fs)
		heights[i] = cards[i].height
	}
	columns := DivideIntoColumns(heights, cfg.NumColumns, cfg.CategorySpacing)

	ncols := max(len(columns), 1)
	width := 2*cfg.OuterPadding + ncols*cfg.ColumnWidth + (ncols-1)*cfg.CategorySpacing
	tallest := 0
	for _, col := range columns {
		tallest = max(tallest, stackedHeight(heights, col, cfg.CategorySpacing))
	}
	height := 2*cfg.OuterPadding + tallest

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(cfg.Background))

	x := cfg.OuterPadding
	for _, col := range columns {
		y := cfg.OuterPadding
		for _, i := range col {
			if err := drawCard(dc, cards[i], float64(x), float64(y), cfg, fs); err != nil {
				return nil, err
			}
			y += cards[i].height + cfg.CategorySpacing
		}
		x += cfg.ColumnWidth + cfg.CategorySpacing
	}

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("render: flush: %w", err)
	}
	gg.Logger().Debug("render: drew result grid",
		"cards", len(cards), "columns", len(columns), "width", width, "height", height)
	return toRGBA(dc.Image()), nil
}

func drawCard(dc *gg.Context, c card, x, y float64, cfg Config, fs faces) error {
	pad := float64(cfg.CategoryPadding)
	colW := float64(cfg.ColumnWidth)

	dc.SetHexColor(cfg.Card)
	dc.DrawRoundedRectangle(x, y, colW, float64(c.height), 8)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("render: card %q: %w", c.title, err)
	}

	dc.SetHexColor(cfg.Text)
	dc.SetFont(fs.category)
	dc.DrawStringAnchored(c.title, x+colW/2, y+pad+fs.category.Metrics().Ascent, 0.5, 0)

	for _, l := range c.levels {
		ly := y + float64(l.y)
		dc.SetHexColor(cfg.Text)
		dc.SetFont(fs.level)
		dc.DrawString(l.title, x+pad, ly+fs.level.Metrics().Ascent)

		dc.SetFont(fs.skill)
		for _, ch := range l.chips {
			cx, cy := x+pad+float64(ch.x), ly+float64(ch.y)
			dc.SetHexColor(cfg.Text)
			dc.DrawString(ch.name, cx+6, cy+fs.skill.Metrics().Ascent+2)

			dc.SetHexColor(cfg.SkillBorder)
			dc.SetLineWidth(1)
			dc.DrawRoundedRectangle(cx+0.5, cy+0.5, float64(ch.w)-1.5, float64(ch.h)-1, 3)
			if err := dc.Stroke(); err != nil {
				return fmt.Errorf("render: skill %q: %w", ch.name, err)
			}
		}
	}
	return nil
}

// Reference paints a plain background image through the same path Draw
// uses, so its pixels match an export's untouched background exactly.
func Reference(width, height int, background string) (*image.RGBA, error) {
	if !ValidColor(background) {
		return nil, fmt.Errorf("render: background colour %q is not #rgb or #rrggbb", background)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render: reference size %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(background))
	return toRGBA(dc.Image()), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
