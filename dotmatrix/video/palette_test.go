package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteByteRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		p := PaletteFromByte(uint8(b))
		assert.Equal(t, uint8(b), p.ToByte(), "palette byte 0x%02X", b)
	}
}

func TestPaletteLookup(t *testing.T) {
	// 0b11100100: ID0 -> White, ID1 -> LightGray, ID2 -> DarkGray, ID3 -> Black
	p := PaletteFromByte(0xE4)
	assert.Equal(t, White, p.Lookup(ID0))
	assert.Equal(t, LightGray, p.Lookup(ID1))
	assert.Equal(t, DarkGray, p.Lookup(ID2))
	assert.Equal(t, Black, p.Lookup(ID3))

	// inverted palette
	inv := PaletteFromByte(0x1B)
	assert.Equal(t, Black, inv.Lookup(ID0))
	assert.Equal(t, DarkGray, inv.Lookup(ID1))
	assert.Equal(t, LightGray, inv.Lookup(ID2))
	assert.Equal(t, White, inv.Lookup(ID3))
}
