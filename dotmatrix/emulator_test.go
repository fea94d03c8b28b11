package dotmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dotmatrix/dotmatrix/memory"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

// testROM builds a minimal NoMBC image whose entry point spins in place.
func testROM() []uint8 {
	rom := make([]uint8, 0x8000)
	// header: NoMBC, 2 banks, no RAM
	rom[0x0147] = 0x00
	rom[0x0148] = 0x00
	rom[0x0149] = 0x00
	// entry point: JR -2 (spin)
	rom[0x0100] = 0x18
	rom[0x0101] = 0xFE
	return rom
}

func TestNewStartsInBootROM(t *testing.T) {
	boot := make([]uint8, 0x100)
	e, err := New(testROM(), boot)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0000), e.CPU().Regs.PC)
	assert.True(t, e.MMU().InBootROM)
}

func TestNewPostBoot(t *testing.T) {
	e, err := NewPostBoot(testROM())
	require.NoError(t, err)
	regs := e.CPU().Regs
	assert.Equal(t, uint16(0x0100), regs.PC)
	assert.Equal(t, uint8(0x01), regs.A)
	assert.Equal(t, uint8(0xB0), regs.F)
	assert.Equal(t, uint16(0xFFFE), regs.SP)
	assert.False(t, e.MMU().InBootROM)
}

func TestStepReturnsCycles(t *testing.T) {
	e, err := NewPostBoot(testROM())
	require.NoError(t, err)
	cycles := e.Step() // JR -2 taken
	assert.Equal(t, 12, cycles)
	assert.Equal(t, uint16(0x0100), e.CPU().Regs.PC)
}

func TestRunFrameProducesAFrame(t *testing.T) {
	e, err := NewPostBoot(testROM())
	require.NoError(t, err)
	// turn the LCD on with background enabled, everything at defaults
	e.MMU().Write(0xFF40, 0x91)
	e.MMU().Write(0xFF47, 0xE4)

	e.RunFrame()
	e.RunFrame()

	display := e.ResolveDisplay()
	// tile data is all zeroes, so every BG pixel resolves to color ID 0
	for y := 0; y < video.FrameHeight; y += 16 {
		for x := 0; x < video.FrameWidth; x += 16 {
			assert.Equal(t, video.White, display[y][x], "pixel (%d,%d)", x, y)
		}
	}
}

func TestSetPressedButtonsReachesJoypad(t *testing.T) {
	e, err := NewPostBoot(testROM())
	require.NoError(t, err)
	e.SetPressedButtons(memory.ButtonSet(0).Add(memory.ButtonStart))
	e.MMU().Write(0xFF00, 0x10) // select buttons
	got := e.MMU().Read(0xFF00)
	assert.Equal(t, uint8(0xC0|0x10|0b0111), got)
}

func TestDebugResolvers(t *testing.T) {
	e, err := NewPostBoot(testROM())
	require.NoError(t, err)
	mmu := e.MMU()
	mmu.Write(0xFF47, 0xE4)
	// paint tile 1 solid color 3 and put it at map position (0,0)
	mmu.Write(0xFF40, 0x91) // LCD on, BG on, 0x8000 addressing
	for line := uint16(0); line < 8; line++ {
		mmu.Write(0x8010+line*2, 0xFF)
		mmu.Write(0x8011+line*2, 0xFF)
	}
	mmu.Write(0x9800, 0x01)

	bg := e.ResolveBackground()
	// interior of the first tile is black; (0,0) itself is on the viewport
	// outline, which is black too
	assert.Equal(t, video.Black, bg[2][2])
	// far corner tile is color 0 through an empty map entry
	assert.Equal(t, video.White, bg[200][200])

	window := e.ResolveWindow()
	assert.Equal(t, video.Black, window[2][2])

	objects := e.ResolveObjects()
	// LCD bounds overlay
	assert.Equal(t, video.Black, objects[16][8])
	assert.Equal(t, video.Black, objects[160][168])
}
