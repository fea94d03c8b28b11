package dotmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dotmatrix/dotmatrix/cpu"
	"github.com/valerio/go-dotmatrix/dotmatrix/memory"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

func mbc1ROM() []uint8 {
	rom := make([]uint8, 4*0x4000)
	for i := range rom {
		rom[i] = uint8(i / 0x4000)
	}
	rom[0x0147] = 0x03 // MBC1 + RAM + battery
	rom[0x0148] = 0x01 // 4 banks
	rom[0x0149] = 0x03 // 4 RAM banks
	return rom
}

func TestSaveStateRoundTrip(t *testing.T) {
	rom := mbc1ROM()
	e, err := NewPostBoot(rom)
	require.NoError(t, err)

	// scramble some state
	mmu := e.MMU()
	mmu.Write(0xC123, 0x42)
	mmu.Write(0xFF80, 0x24)
	mmu.Write(0xFF40, 0x91)
	mmu.Write(0xFF42, 0x13) // SCY
	mmu.Write(0xFF45, 0x07) // LYC
	mmu.Write(0xFF47, 0x1B)
	mmu.Write(0x8000, 0x3C)
	mmu.Write(0x8001, 0x7E)
	mmu.Write(0xFE00, 0x50)
	// cartridge: enable RAM, switch banks, store a byte
	mmu.Write(0x0000, 0x0A)
	mmu.Write(0x2000, 0x02)
	mmu.Write(0x4000, 0x01)
	mmu.Write(0xA000, 0x99)
	e.CPU().Regs.SetR16(cpu.RegAF, 0x55F0)
	e.CPU().Regs.PC = 0x1234

	for i := 0; i < 100; i++ {
		e.Step()
	}

	save, err := e.DumpSaveState()
	require.NoError(t, err)

	restored, err := LoadSaveState(rom, save)
	require.NoError(t, err)

	assert.Equal(t, e.CPU().Regs, restored.CPU().Regs)
	assert.Equal(t, e.CPU().IME, restored.CPU().IME)
	assert.Equal(t, e.CPU().Halted, restored.CPU().Halted)

	rm := restored.MMU()
	assert.Equal(t, uint8(0x42), rm.Read(0xC123))
	assert.Equal(t, uint8(0x24), rm.Read(0xFF80))
	assert.Equal(t, uint8(0x13), rm.Read(0xFF42))
	assert.Equal(t, uint8(0x07), rm.Read(0xFF45))
	assert.Equal(t, uint8(0x1B), rm.Read(0xFF47))
	assert.Equal(t, uint8(0x3C), rm.Read(0x8000))
	assert.Equal(t, uint8(0x7E), rm.Read(0x8001))
	assert.Equal(t, uint8(0x50), rm.Read(0xFE00))

	assert.Equal(t, mmu.PPU.Line, rm.PPU.Line)
	assert.Equal(t, mmu.PPU.Mode, rm.PPU.Mode)
	assert.Equal(t, mmu.PPU.CyclesInMode, rm.PPU.CyclesInMode)

	// cartridge state: selected banks and RAM contents survived
	cart := rm.Cart.(*memory.MBC1)
	assert.Equal(t, uint8(0x02), cart.ROMBank)
	assert.Equal(t, uint8(0x01), cart.RAMBank)
	assert.True(t, cart.RAMEnabled)
	assert.Equal(t, uint8(0x99), rm.Read(0xA000))

	// ROM is re-attached, not serialized
	assert.Equal(t, uint8(0x02), rm.Read(0x4000))
}

func TestLoadSaveStateRejectsWrongROM(t *testing.T) {
	rom := mbc1ROM()
	e, err := NewPostBoot(rom)
	require.NoError(t, err)
	save, err := e.DumpSaveState()
	require.NoError(t, err)

	other := mbc1ROM()
	other[0x2000] = 0xAB // different content, same header
	_, err = LoadSaveState(other, save)
	assert.ErrorContains(t, err, "hash mismatch")
}

func TestLoadSaveStateRejectsGarbage(t *testing.T) {
	_, err := LoadSaveState(mbc1ROM(), []byte("not a save state"))
	assert.Error(t, err)
}

func TestSaveStateSkipsDisplayBuffers(t *testing.T) {
	rom := mbc1ROM()
	e, err := NewPostBoot(rom)
	require.NoError(t, err)
	mmu := e.MMU()
	mmu.Write(0xFF40, 0x91)
	mmu.Write(0xFF47, 0xE4)
	e.RunFrame()
	e.RunFrame()

	save, err := e.DumpSaveState()
	require.NoError(t, err)
	restored, err := LoadSaveState(rom, save)
	require.NoError(t, err)

	// the last frame is blank right after load, and redraws within a frame
	blank := restored.ResolveDisplay()
	assert.Equal(t, video.White, blank[0][0])
	restored.RunFrame()
	restored.RunFrame()
	assert.Equal(t, e.ResolveDisplay(), restored.ResolveDisplay())
}

func TestMBC3RTCSurvivesSaveState(t *testing.T) {
	rom := mbc1ROM()
	rom[0x0147] = 0x10 // MBC3 + timer + RAM + battery
	e, err := NewPostBoot(rom)
	require.NoError(t, err)
	mmu := e.MMU()

	mmu.Write(0x0000, 0x0A)
	mmu.Write(0x4000, 0x08) // map RTC seconds
	mmu.Write(0xA000, 42)

	save, err := e.DumpSaveState()
	require.NoError(t, err)
	restored, err := LoadSaveState(rom, save)
	require.NoError(t, err)

	cart := restored.MMU().Cart.(*memory.MBC3)
	assert.Equal(t, uint8(42), cart.Clock.Seconds)
	assert.True(t, cart.RAMAndRTCEnabled)
	assert.Equal(t, uint8(0x08), cart.Mapped)
	assert.Equal(t, uint8(42), restored.MMU().Read(0xA000))
}
