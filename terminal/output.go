package terminal

import (
	"bufio"
	"io"
)

// outputBuffer diffs each frame against the last one written to the terminal
type outputBuffer struct {
	front     []Cell
	width     int
	height    int
	colorMode ColorMode
	writer    *bufio.Writer

	cursorX     int
	cursorY     int
	cursorValid bool

	lastFg    RGB
	lastBg    RGB
	lastValid bool
}

func newOutputBuffer(w io.Writer, colorMode ColorMode) *outputBuffer {
	return &outputBuffer{
		writer:    bufio.NewWriterSize(w, 64*1024),
		colorMode: colorMode,
	}
}

// resize drops the front buffer so the next flush repaints everything
func (o *outputBuffer) resize(width, height int) {
	size := width * height
	if cap(o.front) < size {
		o.front = make([]Cell, size)
	} else {
		o.front = o.front[:size]
		clear(o.front)
	}
	o.width = width
	o.height = height
	o.lastValid = false
	o.cursorValid = false
}

// flush writes the cells that differ from the front buffer
func (o *outputBuffer) flush(cells []Cell, width, height int) {
	if width != o.width || height != o.height {
		o.resize(width, height)
	}
	if len(cells) < width*height {
		return
	}

	w := o.writer
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			c := cells[row+x]
			if c == o.front[row+x] {
				continue
			}

			if !o.cursorValid || x != o.cursorX || y != o.cursorY {
				writeCursorPos(w, x, y)
				o.cursorX, o.cursorY = x, y
				o.cursorValid = true
			}

			o.writeStyle(w, c.Fg, c.Bg)
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			if r < 0x80 {
				w.WriteByte(byte(r))
			} else {
				w.WriteRune(r)
			}

			o.front[row+x] = c
			o.cursorX++
		}
	}

	w.Write(csiSGR0)
	o.lastValid = false
	w.Flush()
}

// writeStyle emits color changes only
func (o *outputBuffer) writeStyle(w *bufio.Writer, fg, bg RGB) {
	if !o.lastValid || fg != o.lastFg {
		o.writeColor(w, csiFgRGB, csiFg256, fg)
		o.lastFg = fg
	}
	if !o.lastValid || bg != o.lastBg {
		o.writeColor(w, csiBgRGB, csiBg256, bg)
		o.lastBg = bg
	}
	o.lastValid = true
}

func (o *outputBuffer) writeColor(w *bufio.Writer, rgbPrefix, palettePrefix []byte, c RGB) {
	if o.colorMode == ColorModeTrueColor {
		w.Write(rgbPrefix)
		writeInt(w, int(c.R))
		w.WriteByte(';')
		writeInt(w, int(c.G))
		w.WriteByte(';')
		writeInt(w, int(c.B))
		w.WriteByte('m')
		return
	}
	w.Write(palettePrefix)
	writeInt(w, int(RGBTo256(c)))
	w.WriteByte('m')
}

// clear blanks the screen and forces a full repaint on the next flush
func (o *outputBuffer) clear() {
	o.writer.Write(csiSGR0)
	o.writer.Write(csiClear)
	o.writer.Flush()
	o.resize(o.width, o.height)
}
