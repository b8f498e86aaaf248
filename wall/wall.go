// Package wall renders the color wall: a grid of solid, randomly colored blocks
// filling the drawable area.
package wall

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/color-wall/terminal"
)

// BlockRune fills every cell of a block; its foreground carries the color
const BlockRune = '█'

// Palette selects how block colors are drawn
type Palette uint8

const (
	PaletteRandom Palette = iota // uniform RGB
	PaletteHappy                 // saturated, bright
	PaletteWarm                  // muted, darker
	PalettePastel                // light, low chroma
)

var paletteNames = map[string]Palette{
	"random": PaletteRandom,
	"happy":  PaletteHappy,
	"warm":   PaletteWarm,
	"pastel": PalettePastel,
}

// ParsePalette resolves a --palette flag value
func ParsePalette(s string) (Palette, error) {
	if p, ok := paletteNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return PaletteRandom, fmt.Errorf("unknown palette %q (want random, happy, warm or pastel)", s)
}

func (p Palette) String() string {
	for name, v := range paletteNames {
		if v == p {
			return name
		}
	}
	return "random"
}

// Wall lays out Columns x Rows blocks. Not safe for concurrent use; the
// dispatcher is its only caller.
type Wall struct {
	Columns int
	Rows    int
	Palette Palette

	rng   *rand.Rand
	cells []terminal.Cell
}

// New creates a wall; a zero seed picks a random one
func New(columns, rows int, palette Palette, seed uint64) *Wall {
	if columns < 1 {
		columns = 1
	}
	if rows < 1 {
		rows = 1
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Wall{
		Columns: columns,
		Rows:    rows,
		Palette: palette,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Frame draws a fresh set of colors into a width x height row-major buffer.
// The returned slice is reused by the next call.
func (w *Wall) Frame(width, height int) []terminal.Cell {
	if width <= 0 || height <= 0 {
		return nil
	}
	size := width * height
	if cap(w.cells) < size {
		w.cells = make([]terminal.Cell, size)
	}
	cells := w.cells[:size]

	for col := 0; col < w.Columns; col++ {
		x0, x1 := Span(width, w.Columns, col)
		for row := 0; row < w.Rows; row++ {
			y0, y1 := Span(height, w.Rows, row)
			fill(cells, width, x0, y0, x1, y1, w.nextColor())
		}
	}
	return cells
}

// Span returns the [start, end) range of part i when total is split into n
// near-equal parts; remainders go to the later parts
func Span(total, n, i int) (int, int) {
	return i * total / n, (i + 1) * total / n
}

func fill(cells []terminal.Cell, width, x0, y0, x1, y1 int, c terminal.RGB) {
	cell := terminal.Cell{Rune: BlockRune, Fg: c, Bg: c}
	for y := y0; y < y1; y++ {
		row := cells[y*width : (y+1)*width]
		for x := x0; x < x1; x++ {
			row[x] = cell
		}
	}
}

func (w *Wall) nextColor() terminal.RGB {
	var c colorful.Color
	switch w.Palette {
	case PaletteHappy:
		c = colorful.Hsv(w.rng.Float64()*360, 0.7+w.rng.Float64()*0.3, 0.6+w.rng.Float64()*0.3)
	case PaletteWarm:
		c = colorful.Hsv(w.rng.Float64()*360, 0.5+w.rng.Float64()*0.3, 0.3+w.rng.Float64()*0.5)
	case PalettePastel:
		c = colorful.Hcl(w.rng.Float64()*360, 0.1+w.rng.Float64()*0.2, 0.8+w.rng.Float64()*0.15).Clamped()
	default:
		return terminal.RGB{
			R: uint8(w.rng.IntN(255)),
			G: uint8(w.rng.IntN(255)),
			B: uint8(w.rng.IntN(255)),
		}
	}
	r, g, b := c.RGB255()
	return terminal.RGB{R: r, G: g, B: b}
}
