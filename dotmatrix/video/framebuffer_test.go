package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayLinePixelRoundTrip(t *testing.T) {
	colors := []Color{White, LightGray, DarkGray, Black}
	for idx := 0; idx < FrameWidth; idx++ {
		for _, color := range colors {
			line := solidLine(Black)
			line.SetPixel(idx, color)
			assert.Equal(t, color, line.PixelAt(idx), "pixel %d", idx)

			// other pixels unchanged
			for other := 0; other < FrameWidth; other++ {
				if other == idx {
					continue
				}
				if line.PixelAt(other) != Black {
					t.Fatalf("pixel %d changed while setting pixel %d", other, idx)
				}
			}
		}
	}
}

func TestSolidLine(t *testing.T) {
	line := solidLine(LightGray)
	for _, c := range line.Colors() {
		assert.Equal(t, LightGray, c)
	}
}

func TestDisplayLineOutOfRangePanics(t *testing.T) {
	var line DisplayLine
	assert.Panics(t, func() { line.PixelAt(160) })
	assert.Panics(t, func() { line.SetPixel(-1, White) })
}
