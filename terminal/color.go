package terminal

import (
	"fmt"
	"strings"
)

// ColorMode indicates terminal color capability
type ColorMode uint8

const (
	ColorMode256       ColorMode = iota // xterm-256 palette
	ColorModeTrueColor                  // 24-bit RGB
)

func (m ColorMode) String() string {
	if m == ColorModeTrueColor {
		return "truecolor"
	}
	return "256"
}

// ParseColorMode resolves a --color flag value; "auto" and "" use DetectColorMode
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DetectColorMode(), nil
	case "256":
		return ColorMode256, nil
	case "truecolor", "true", "24bit":
		return ColorModeTrueColor, nil
	}
	return ColorMode256, fmt.Errorf("unknown color mode %q (want auto, 256 or truecolor)", s)
}

// RGB represents a 24-bit color
type RGB struct {
	R, G, B uint8
}

// RGBBlack is the zero value black color
var RGBBlack = RGB{0, 0, 0}

// Levels of the 6x6x6 cube occupying palette indices 16-231
var cubeValues = [6]int{0, 95, 135, 175, 215, 255}

func nearestCube(v uint8) int {
	best, bestDist := 0, 256
	for i, c := range cubeValues {
		if d := abs(int(v) - c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RGBTo256 converts RGB to the nearest 256-color palette index,
// preferring the grayscale ramp (232-255) for near-neutral colors
func RGBTo256(c RGB) uint8 {
	ri, gi, bi := nearestCube(c.R), nearestCube(c.G), nearestCube(c.B)
	cubeIdx := uint8(16 + 36*ri + 6*gi + bi)
	cubeDist := abs(int(c.R)-cubeValues[ri]) + abs(int(c.G)-cubeValues[gi]) + abs(int(c.B)-cubeValues[bi])

	gray := (int(c.R) + int(c.G) + int(c.B)) / 3
	if gray < 4 || gray > 243 {
		return cubeIdx
	}
	step := (gray - 8 + 5) / 10
	if step < 0 {
		step = 0
	}
	if step > 23 {
		step = 23
	}
	level := 8 + step*10
	grayDist := abs(int(c.R)-level) + abs(int(c.G)-level) + abs(int(c.B)-level)
	if grayDist < cubeDist {
		return uint8(232 + step)
	}
	return cubeIdx
}
