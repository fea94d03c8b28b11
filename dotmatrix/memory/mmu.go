package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

const (
	wramSize    = 0x2000
	hramSize    = 0x80
	bootROMSize = 0x100
)

// MMU decodes the 16-bit address space across the boot ROM, the cartridge,
// the PPU's VRAM and OAM, work RAM, high RAM and the memory-mapped I/O
// registers. It also owns the interrupt latches and advances the clocked
// subsystems (timer, PPU, divider) by the T-cycles the CPU reports.
type MMU struct {
	Cart Cartridge `msgpack:"-"`

	WRAM []uint8
	HRAM []uint8
	// BootROM is the host-provided 256-byte boot ROM, overlaying addresses
	// 0x0000-0x00FF until a non-zero write to 0xFF50.
	BootROM   []uint8
	InBootROM bool

	// IE gates interrupt sources individually; IF latches requests. A source
	// fires only when IME and both of its bits are set.
	IE addr.InterruptSet
	IF addr.InterruptSet

	JoypadSelect JoypadSelect
	Pressed      ButtonSet

	Timer   Counter
	Divider Counter

	PPU *video.PPU

	// DMAValue is the last byte written to the DMA register; ROMs are not
	// supposed to read it back, but some do.
	DMAValue uint8

	warnedIO map[uint16]bool
}

// New builds an MMU around a cartridge and an optional 256-byte boot ROM.
// With no boot ROM the machine starts with the cartridge mapped from address
// zero.
func New(cart Cartridge, bootROM []uint8) *MMU {
	m := &MMU{
		Cart:     cart,
		WRAM:     make([]uint8, wramSize),
		HRAM:     make([]uint8, hramSize),
		BootROM:  make([]uint8, bootROMSize),
		Timer:    NewTimer(),
		Divider:  NewDivider(),
		PPU:      video.New(),
		warnedIO: make(map[uint16]bool),
	}
	if len(bootROM) > 0 {
		if len(bootROM) != bootROMSize {
			slog.Warn("boot ROM has unexpected size, truncating/padding", "size", len(bootROM))
		}
		copy(m.BootROM, bootROM)
		m.InBootROM = true
	}
	return m
}

// Step advances the clocked subsystems, in the fixed order timer, PPU,
// divider, by the T-cycles one CPU instruction consumed. Interrupts they
// raise are latched into IF and observed on the next CPU step.
func (m *MMU) Step(tCycles int) {
	if m.Timer.Update(tCycles) {
		m.IF = m.IF.Add(addr.TimerInterrupt)
	}
	m.IF = m.IF.Union(m.PPU.Step(tCycles))
	m.Divider.Update(tCycles)
}

// RequestInterrupt latches an interrupt request.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.IF = m.IF.Add(interrupt)
}

// InterruptsEnabled returns the IE latch.
func (m *MMU) InterruptsEnabled() addr.InterruptSet {
	return m.IE
}

// InterruptsRequested returns the IF latch.
func (m *MMU) InterruptsRequested() addr.InterruptSet {
	return m.IF
}

// ClearRequestedInterrupt removes a source from IF, done by the CPU when it
// services the interrupt.
func (m *MMU) ClearRequestedInterrupt(interrupt addr.Interrupt) {
	m.IF = m.IF.Remove(interrupt)
}

// SetPressedButtons replaces the pressed-button set. Newly pressed buttons
// request the Joypad interrupt.
func (m *MMU) SetPressedButtons(pressed ButtonSet) {
	newlyPressed := pressed &^ m.Pressed
	m.Pressed = pressed
	if newlyPressed != 0 {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// Read returns the byte visible at an address.
func (m *MMU) Read(address uint16) uint8 {
	switch {
	case address < 0x0100 && m.InBootROM:
		return m.BootROM[address]
	case address <= 0x7FFF:
		return m.Cart.Read(address)
	case address <= 0x9FFF:
		return m.PPU.ReadVRAM(address)
	case address <= 0xBFFF:
		return m.Cart.Read(address)
	case address <= 0xDFFF:
		return m.WRAM[address&0x1FFF]
	case address <= 0xFDFF:
		// echo RAM mirrors work RAM
		return m.WRAM[address&0x1FFF]
	case address <= addr.OAMEnd:
		return m.PPU.ReadOAM(address)
	case address <= 0xFEFF:
		panic(fmt.Sprintf("read from prohibited memory: 0x%04X", address))
	case address <= 0xFF7F:
		return m.readIO(address)
	case address <= 0xFFFE:
		return m.HRAM[address-0xFF80]
	default: // 0xFFFF
		return m.IE.ToByte()
	}
}

// Write updates the byte at an address.
func (m *MMU) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		// never a memory store: these are MBC control commands
		m.Cart.Write(address, value)
	case address <= 0x9FFF:
		m.PPU.WriteVRAM(address, value)
	case address <= 0xBFFF:
		m.Cart.Write(address, value)
	case address <= 0xDFFF:
		m.WRAM[address&0x1FFF] = value
	case address <= 0xFDFF:
		m.WRAM[address&0x1FFF] = value
	case address <= addr.OAMEnd:
		m.PPU.WriteOAM(address, value)
	case address <= 0xFEFF:
		// prohibited area, writes are dropped
	case address <= 0xFF7F:
		m.writeIO(address, value)
	case address <= 0xFFFE:
		m.HRAM[address-0xFF80] = value
	default: // 0xFFFF
		m.IE = addr.InterruptSetFromByte(value)
	}
}

// ReadWord reads a little-endian word.
func (m *MMU) ReadWord(address uint16) uint16 {
	return bit.Combine(m.Read(address+1), m.Read(address))
}

// WriteWord writes a little-endian word.
func (m *MMU) WriteWord(address uint16, value uint16) {
	m.Write(address, bit.Low(value))
	m.Write(address+1, bit.High(value))
}

func (m *MMU) readIO(address uint16) uint8 {
	switch address {
	case addr.P1:
		return joypadRead(m.JoypadSelect, m.Pressed)
	case addr.DIV:
		return m.Divider.Value
	case addr.TIMA:
		return m.Timer.Value
	case addr.TMA:
		return m.Timer.Reload
	case addr.TAC:
		value := uint8(0xF8) | m.Timer.Frequency.ToTACBits()
		return bit.SetTo(2, value, m.Timer.Enabled)
	case addr.IF:
		return m.IF.ToByte()
	case addr.LCDC:
		return m.PPU.ReadLCDC()
	case addr.STAT:
		return m.PPU.ReadSTAT()
	case addr.SCY:
		return m.PPU.ScrollY
	case addr.SCX:
		return m.PPU.ScrollX
	case addr.LY:
		return m.PPU.Line
	case addr.LYC:
		return m.PPU.LYC
	case addr.DMA:
		slog.Warn("read from the OAM DMA register")
		return m.DMAValue
	case addr.BGP:
		return m.PPU.BGPalette.ToByte()
	case addr.OBP0:
		return m.PPU.ObjPalettes[0].ToByte()
	case addr.OBP1:
		return m.PPU.ObjPalettes[1].ToByte()
	case addr.WY:
		return m.PPU.WindowY
	case addr.WX:
		return m.PPU.WindowX
	default:
		// audio, serial, CGB-only and unused registers read as open bus
		m.warnUnmapped(address, "read")
		return 0xFF
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch address {
	case addr.P1:
		m.JoypadSelect = joypadSelectFromByte(value)
	case addr.DIV:
		// any write clears the divider
		m.Divider.Reset()
	case addr.TIMA:
		m.Timer.Value = value
	case addr.TMA:
		m.Timer.Reload = value
	case addr.TAC:
		m.Timer.Enabled = bit.IsSet(2, value)
		m.Timer.Frequency = FrequencyFromTAC(value)
	case addr.IF:
		m.IF = addr.InterruptSetFromByte(value)
	case addr.LCDC:
		m.PPU.WriteLCDC(value)
	case addr.STAT:
		m.PPU.WriteSTAT(value)
	case addr.SCY:
		m.PPU.ScrollY = value
	case addr.SCX:
		m.PPU.ScrollX = value
	case addr.LY:
		slog.Warn("ignoring write to the read-only LY register", "value", value)
	case addr.LYC:
		m.PPU.LYC = value
	case addr.DMA:
		m.DMAValue = value
		m.dmaTransfer(value)
	case addr.BGP:
		m.PPU.BGPalette = video.PaletteFromByte(value)
	case addr.OBP0:
		m.PPU.ObjPalettes[0] = video.PaletteFromByte(value)
	case addr.OBP1:
		m.PPU.ObjPalettes[1] = video.PaletteFromByte(value)
	case addr.WY:
		m.PPU.WindowY = value
	case addr.WX:
		m.PPU.WindowX = value
	case addr.BootROMDisable:
		if value != 0 {
			m.InBootROM = false
			slog.Debug("boot ROM unmapped")
		}
	default:
		m.warnUnmapped(address, "write")
	}
}

// dmaTransfer copies 160 bytes from value*0x100 into OAM. Real hardware
// takes 160 us; the copy here is instant.
func (m *MMU) dmaTransfer(value uint8) {
	source := uint16(value) << 8
	for offset := uint16(0); offset < 0xA0; offset++ {
		m.Write(addr.OAMStart+offset, m.Read(source+offset))
	}
}

func (m *MMU) warnUnmapped(address uint16, op string) {
	if m.warnedIO == nil {
		m.warnedIO = make(map[uint16]bool)
	}
	if m.warnedIO[address] {
		return
	}
	m.warnedIO[address] = true
	slog.Debug("unmapped I/O register", "op", op, "addr", fmt.Sprintf("0x%04X", address))
}
