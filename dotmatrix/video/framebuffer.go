package video

import "fmt"

const (
	// FrameWidth is the number of pixels in an LCD scanline.
	FrameWidth = 160
	// FrameHeight is the number of visible scanlines.
	FrameHeight = 144
)

// DisplayLine is a packed representation of one 160-pixel scanline.
// Each byte holds 4 pixels at 2 bits per pixel; byte 0 covers the 4 leftmost
// pixels and within a byte the two highest-order bits are the leftmost pixel.
type DisplayLine struct {
	Packed [FrameWidth / 4]uint8
}

// PixelAt returns the color of the pixel at the given column (0-159).
func (l *DisplayLine) PixelAt(idx int) Color {
	if idx < 0 || idx >= FrameWidth {
		panic(fmt.Sprintf("display line index out of range: %d", idx))
	}
	shift := 2 * (3 - uint(idx%4))
	return Color((l.Packed[idx/4] >> shift) & 0x03)
}

// SetPixel sets the color of the pixel at the given column (0-159).
func (l *DisplayLine) SetPixel(idx int, color Color) {
	if idx < 0 || idx >= FrameWidth {
		panic(fmt.Sprintf("display line index out of range: %d", idx))
	}
	shift := 2 * (3 - uint(idx%4))
	b := &l.Packed[idx/4]
	*b &^= 0x03 << shift
	*b |= uint8(color&0x03) << shift
}

// Colors unpacks the line into one color per column.
func (l *DisplayLine) Colors() [FrameWidth]Color {
	var colors [FrameWidth]Color
	for idx := range colors {
		colors[idx] = l.PixelAt(idx)
	}
	return colors
}

func solidLine(color Color) DisplayLine {
	var line DisplayLine
	packed := uint8(color&0x03) * 0b01010101
	for i := range line.Packed {
		line.Packed[i] = packed
	}
	return line
}

// Frame is a full 144-line LCD image.
type Frame [FrameHeight]DisplayLine

// Colors unpacks the frame into a row-major color grid.
func (f *Frame) Colors() [FrameHeight][FrameWidth]Color {
	var grid [FrameHeight][FrameWidth]Color
	for y := range f {
		grid[y] = f[y].Colors()
	}
	return grid
}
