package wall

import (
	"testing"

	"github.com/lixenwraith/color-wall/terminal"
)

func TestSpanCoversTotal(t *testing.T) {
	for _, total := range []int{0, 1, 3, 7, 80, 81} {
		for _, n := range []int{1, 2, 4} {
			prev := 0
			for i := 0; i < n; i++ {
				start, end := Span(total, n, i)
				if start != prev {
					t.Errorf("Span(%d,%d,%d) starts at %d, want %d", total, n, i, start, prev)
				}
				if end < start {
					t.Errorf("Span(%d,%d,%d) = [%d,%d) is negative", total, n, i, start, end)
				}
				prev = end
			}
			if prev != total {
				t.Errorf("Span(%d,%d,*) ends at %d, want %d", total, n, prev, total)
			}
		}
	}
}

func TestFrameBlocksAreSolid(t *testing.T) {
	w := New(4, 2, PaletteRandom, 42)
	width, height := 81, 25
	cells := w.Frame(width, height)
	if len(cells) != width*height {
		t.Fatalf("frame has %d cells, want %d", len(cells), width*height)
	}

	for col := 0; col < 4; col++ {
		x0, x1 := Span(width, 4, col)
		for row := 0; row < 2; row++ {
			y0, y1 := Span(height, 2, row)
			want := cells[y0*width+x0]
			if want.Rune != BlockRune {
				t.Fatalf("block (%d,%d) rune = %q", col, row, want.Rune)
			}
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					if cells[y*width+x] != want {
						t.Fatalf("block (%d,%d) not uniform at (%d,%d)", col, row, x, y)
					}
				}
			}
		}
	}
}

func TestFrameChangesColors(t *testing.T) {
	w := New(4, 2, PaletteHappy, 7)
	first := append([]terminal.Cell(nil), w.Frame(8, 4)...)
	second := w.Frame(8, 4)

	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("consecutive frames have identical colors")
	}
}

func TestFrameNarrowerThanGrid(t *testing.T) {
	w := New(4, 2, PalettePastel, 1)
	cells := w.Frame(3, 1)
	if len(cells) != 3 {
		t.Fatalf("got %d cells, want 3", len(cells))
	}
	for i, c := range cells {
		if c.Rune != BlockRune {
			t.Errorf("cell %d not filled: %+v", i, c)
		}
	}

	if w.Frame(0, 10) != nil {
		t.Error("expected nil frame for zero width")
	}
}

func TestParsePalette(t *testing.T) {
	for name, want := range paletteNames {
		got, err := ParsePalette(name)
		if err != nil || got != want {
			t.Errorf("ParsePalette(%q) = %v, %v", name, got, err)
		}
		if got.String() != name {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), name)
		}
	}
	if _, err := ParsePalette("neon"); err == nil {
		t.Error("expected error for unknown palette")
	}
}
