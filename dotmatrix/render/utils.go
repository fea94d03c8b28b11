package render

import "github.com/valerio/go-dotmatrix/dotmatrix/video"

// shadeChars maps the four LCD colors to shading characters, lightest first.
var shadeChars = [4]rune{' ', '░', '▒', '█'}

// ShadeChar returns the text representation of a single LCD color.
func ShadeChar(color video.Color) rune {
	return shadeChars[color&0x03]
}

// FrameToText converts a color grid into one string per pixel row, for frame
// snapshots and logs.
func FrameToText(frame [video.FrameHeight][video.FrameWidth]video.Color) []string {
	lines := make([]string, video.FrameHeight)
	for y, row := range frame {
		line := make([]rune, video.FrameWidth)
		for x, color := range row {
			line[x] = ShadeChar(color)
		}
		lines[y] = string(line)
	}
	return lines
}

// HalfBlockCell holds the two vertically stacked pixels a half-block
// renderer packs into one terminal cell: the top pixel becomes the
// foreground of a '▀' glyph, the bottom its background.
type HalfBlockCell struct {
	Top    video.Color
	Bottom video.Color
}

// FrameToHalfBlockCells pairs up pixel rows for a half-block renderer,
// yielding 72 text rows for the 144-line LCD.
func FrameToHalfBlockCells(frame [video.FrameHeight][video.FrameWidth]video.Color) [video.FrameHeight / 2][video.FrameWidth]HalfBlockCell {
	var cells [video.FrameHeight / 2][video.FrameWidth]HalfBlockCell
	for y := range cells {
		for x := 0; x < video.FrameWidth; x++ {
			cells[y][x] = HalfBlockCell{
				Top:    frame[y*2][x],
				Bottom: frame[y*2+1][x],
			}
		}
	}
	return cells
}
