package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

func testMMU(t *testing.T) *MMU {
	t.Helper()
	cart, err := NewCartridge(fakeROM(2))
	require.NoError(t, err)
	return New(cart, nil)
}

func TestBootROMOverlay(t *testing.T) {
	boot := make([]uint8, 0x100)
	for i := range boot {
		boot[i] = 0xAA
	}
	cart, err := NewCartridge(fakeROM(2))
	require.NoError(t, err)
	m := New(cart, boot)

	assert.True(t, m.InBootROM)
	assert.Equal(t, uint8(0xAA), m.Read(0x0000))
	assert.Equal(t, uint8(0xAA), m.Read(0x00FF))
	// past the overlay the cartridge shows through
	assert.Equal(t, uint8(0x00), m.Read(0x0100))

	// zero writes do not unmap
	m.Write(addr.BootROMDisable, 0)
	assert.True(t, m.InBootROM)

	m.Write(addr.BootROMDisable, 1)
	assert.False(t, m.InBootROM)
	assert.Equal(t, uint8(0x00), m.Read(0x0000))
}

func TestWRAMAndEcho(t *testing.T) {
	m := testMMU(t)
	m.Write(0xC123, 0x42)
	assert.Equal(t, uint8(0x42), m.Read(0xC123))
	// echo RAM shares storage
	assert.Equal(t, uint8(0x42), m.Read(0xE123))
	m.Write(0xE123, 0x24)
	assert.Equal(t, uint8(0x24), m.Read(0xC123))
}

func TestHRAM(t *testing.T) {
	m := testMMU(t)
	m.Write(0xFF80, 0x11)
	m.Write(0xFFFE, 0x22)
	assert.Equal(t, uint8(0x11), m.Read(0xFF80))
	assert.Equal(t, uint8(0x22), m.Read(0xFFFE))
}

func TestVRAMDelegation(t *testing.T) {
	m := testMMU(t)
	m.Write(0x8000, 0x3C)
	m.Write(0x8001, 0x7E)
	assert.Equal(t, uint8(0x3C), m.Read(0x8000))
	assert.Equal(t, uint8(0x7E), m.Read(0x8001))
	assert.Equal(t, video.TileLine{Low: 0x3C, High: 0x7E}, m.PPU.TileData.Blocks[0][0].Lines[0])

	m.Write(0x9800, 0x05)
	assert.Equal(t, uint8(0x05), m.PPU.LoTileMap.Indices[0][0])
	m.Write(0x9C21, 0x07)
	assert.Equal(t, uint8(0x07), m.PPU.HiTileMap.Indices[1][1])
}

func TestOAMDecoding(t *testing.T) {
	m := testMMU(t)
	m.Write(0xFE04, 5)            // entry 1 y
	m.Write(0xFE05, 10)           // entry 1 x
	m.Write(0xFE06, 20)           // tile
	m.Write(0xFE07, 0b1010_0000)  // priority + x flip
	obj := m.PPU.OAM[1]
	assert.Equal(t, uint8(5), obj.YPos)
	assert.Equal(t, uint8(10), obj.XPos)
	assert.Equal(t, uint8(20), obj.TileIndex)
	assert.True(t, obj.BGOverOBJ)
	assert.True(t, obj.XFlip)
	assert.False(t, obj.YFlip)
	assert.Equal(t, uint8(0b1010_0000), m.Read(0xFE07))
}

func TestProhibitedRegionPanicsOnRead(t *testing.T) {
	m := testMMU(t)
	assert.Panics(t, func() { m.Read(0xFEA0) })
	// writes are dropped silently
	assert.NotPanics(t, func() { m.Write(0xFEA0, 0x42) })
}

func TestInterruptRegisters(t *testing.T) {
	m := testMMU(t)
	m.Write(addr.IE, 0xFF)
	// only 5 bits stick, upper bits read back as 0
	assert.Equal(t, uint8(0x1F), m.Read(addr.IE))
	m.Write(addr.IF, 0x05)
	assert.Equal(t, uint8(0x05), m.Read(addr.IF))

	m.RequestInterrupt(addr.JoypadInterrupt)
	assert.True(t, m.IF.Contains(addr.JoypadInterrupt))
	m.ClearRequestedInterrupt(addr.JoypadInterrupt)
	assert.False(t, m.IF.Contains(addr.JoypadInterrupt))
}

func TestTimerRegisters(t *testing.T) {
	m := testMMU(t)

	// control: enable + 256 KiHz
	m.Write(addr.TAC, 0b101)
	assert.True(t, m.Timer.Enabled)
	assert.Equal(t, Freq256KiHz, m.Timer.Frequency)
	assert.Equal(t, uint8(0xF8|0b101), m.Read(addr.TAC))

	m.Write(addr.TMA, 0x10)
	assert.Equal(t, uint8(0x10), m.Read(addr.TMA))

	m.Write(addr.TIMA, 0xFF)
	m.Step(16)
	assert.Equal(t, uint8(0x10), m.Read(addr.TIMA), "TIMA reloads from TMA on overflow")
	assert.True(t, m.IF.Contains(addr.TimerInterrupt), "overflow requests the timer interrupt")
}

func TestDividerRegister(t *testing.T) {
	m := testMMU(t)
	m.Step(256)
	assert.Equal(t, uint8(1), m.Read(addr.DIV))
	m.Write(addr.DIV, 0x55)
	assert.Equal(t, uint8(0), m.Read(addr.DIV), "any write clears DIV")
}

func TestStepForwardsPPUInterrupts(t *testing.T) {
	m := testMMU(t)
	m.PPU.LCDEnabled = true
	// run a whole frame's worth of visible lines
	for line := 0; line < 144; line++ {
		m.Step(456)
	}
	assert.True(t, m.IF.Contains(addr.VBlankInterrupt))
}

func TestJoypadRegister(t *testing.T) {
	m := testMMU(t)

	// neither group selected: low nibble floats high
	m.Write(addr.P1, 0x30)
	assert.Equal(t, uint8(0xFF), m.Read(addr.P1))

	// select buttons (bit 5 low), press A and Start
	m.SetPressedButtons(ButtonSet(0).Add(ButtonA).Add(ButtonStart))
	m.Write(addr.P1, 0x10)
	assert.Equal(t, uint8(0xC0|0x10|0b0110), m.Read(addr.P1))

	// select d-pad (bit 4 low), press Up
	m.SetPressedButtons(ButtonSet(0).Add(ButtonUp))
	m.Write(addr.P1, 0x20)
	assert.Equal(t, uint8(0xC0|0x20|0b1011), m.Read(addr.P1))

	// both groups: nibbles AND together
	m.SetPressedButtons(ButtonSet(0).Add(ButtonA).Add(ButtonUp))
	m.Write(addr.P1, 0x00)
	assert.Equal(t, uint8(0xC0|0b1010), m.Read(addr.P1))
}

func TestJoypadInterruptOnPress(t *testing.T) {
	m := testMMU(t)
	m.SetPressedButtons(ButtonSet(0).Add(ButtonB))
	assert.True(t, m.IF.Contains(addr.JoypadInterrupt))

	m.ClearRequestedInterrupt(addr.JoypadInterrupt)
	// releasing does not request
	m.SetPressedButtons(0)
	assert.False(t, m.IF.Contains(addr.JoypadInterrupt))
}

func TestOAMDMA(t *testing.T) {
	m := testMMU(t)
	for i := uint16(0); i < 0xA0; i++ {
		m.Write(0xC000+i, uint8(i))
	}
	m.Write(addr.DMA, 0xC0)
	for i := uint16(0); i < 0xA0; i++ {
		// attribute bytes drop their low (CGB-only) bits on write
		if i%4 == 3 {
			continue
		}
		entry := m.PPU.OAM[i/4]
		assert.Equal(t, uint8(i), entry.ReadByte(i%4), "OAM byte %d", i)
	}
	// a copied attribute byte keeps only the flag bits (source byte 43 = 0x2B)
	assert.Equal(t, uint8(0x2B&0xF0), m.PPU.OAM[10].ReadByte(3))
}

func TestUnmappedIORegion(t *testing.T) {
	m := testMMU(t)
	// audio registers are stubbed out
	assert.Equal(t, uint8(0xFF), m.Read(0xFF26))
	assert.NotPanics(t, func() { m.Write(0xFF26, 0x80) })
	// serial too
	assert.Equal(t, uint8(0xFF), m.Read(addr.SB))
}

func TestLYWriteIgnored(t *testing.T) {
	m := testMMU(t)
	m.PPU.Line = 42
	m.Write(addr.LY, 0)
	assert.Equal(t, uint8(42), m.Read(addr.LY))
}

func TestPaletteRegisters(t *testing.T) {
	m := testMMU(t)
	m.Write(addr.BGP, 0xE4)
	assert.Equal(t, uint8(0xE4), m.Read(addr.BGP))
	assert.Equal(t, video.Black, m.PPU.BGPalette.Lookup(video.ID3))

	m.Write(addr.OBP1, 0x1B)
	assert.Equal(t, uint8(0x1B), m.Read(addr.OBP1))
}

func TestWordAccess(t *testing.T) {
	m := testMMU(t)
	m.WriteWord(0xC000, 0xBEEF)
	assert.Equal(t, uint8(0xEF), m.Read(0xC000), "little-endian low byte first")
	assert.Equal(t, uint8(0xBE), m.Read(0xC001))
	assert.Equal(t, uint16(0xBEEF), m.ReadWord(0xC000))
}
