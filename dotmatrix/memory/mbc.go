package memory

import (
	"fmt"
	"log/slog"
	"time"
)

// Cartridge is the surface the MMU consumes: byte access over the ROM range
// (0x0000-0x7FFF, where writes are bank-control commands, never stores) and
// the external RAM range (0xA000-0xBFFF), plus re-attaching ROM bytes after a
// save-state load.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// SetROM re-attaches the ROM contents. Save states do not carry ROM
	// bytes, so the host supplies them again on load.
	SetROM(rom []uint8)
}

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// NoMBC is a cartridge without a bank controller: 32 KiB of ROM mapped
// directly, plus an optional 8 KiB of RAM.
type NoMBC struct {
	ROM []uint8 `msgpack:"-"`
	RAM []uint8
}

// NewNoMBC builds a bankless cartridge from the full ROM image.
func NewNoMBC(rom []uint8, ramBanks int) *NoMBC {
	cart := &NoMBC{ROM: make([]uint8, 2*romBankSize)}
	copy(cart.ROM, rom)
	if ramBanks > 0 {
		cart.RAM = make([]uint8, ramBankSize)
	}
	return cart
}

func (m *NoMBC) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		return m.ROM[address]
	case address >= 0xA000 && address <= 0xBFFF:
		if m.RAM == nil {
			return 0xFF
		}
		return m.RAM[address-0xA000]
	default:
		panic(fmt.Sprintf("invalid cartridge read: 0x%04X", address))
	}
}

func (m *NoMBC) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		slog.Debug("ignoring write to ROM on cartridge without MBC",
			"addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	case address >= 0xA000 && address <= 0xBFFF:
		if m.RAM != nil {
			m.RAM[address-0xA000] = value
		}
	default:
		panic(fmt.Sprintf("invalid cartridge write: 0x%04X", address))
	}
}

func (m *NoMBC) SetROM(rom []uint8) {
	m.ROM = make([]uint8, 2*romBankSize)
	copy(m.ROM, rom)
}

// MBC1 supports up to 32 ROM banks of 16 KiB and up to 4 RAM banks of 8 KiB,
// gated by a RAM-enable latch.
//
// The bank-mode select (writes to 0x6000-0x7FFF) is not implemented; large
// ROM/RAM carts that rely on it will misbehave.
type MBC1 struct {
	ROM []uint8 `msgpack:"-"`
	RAM []uint8

	ROMBank    uint8
	RAMBank    uint8
	RAMEnabled bool

	warnedBankMode bool
}

// NewMBC1 builds an MBC1 cartridge from the full ROM image.
func NewMBC1(rom []uint8, ramBanks int) *MBC1 {
	return &MBC1{
		ROM:     rom,
		RAM:     make([]uint8, ramBanks*ramBankSize),
		ROMBank: 1,
	}
}

func (m *MBC1) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		// bank 0 is always mapped here
		return m.ROM[address]
	case address <= 0x7FFF:
		offset := int(m.ROMBank) * romBankSize
		if offset >= len(m.ROM) {
			offset %= len(m.ROM)
		}
		return m.ROM[offset+int(address-0x4000)]
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.RAMEnabled || len(m.RAM) == 0 {
			return 0xFF
		}
		offset := int(m.RAMBank) * ramBankSize
		if offset >= len(m.RAM) {
			offset %= len(m.RAM)
		}
		return m.RAM[offset+int(address-0xA000)]
	default:
		panic(fmt.Sprintf("invalid cartridge read: 0x%04X", address))
	}
}

func (m *MBC1) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.RAMEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.ROMBank = bank
	case address <= 0x5FFF:
		m.RAMBank = value & 0x03
	case address <= 0x7FFF:
		if !m.warnedBankMode {
			slog.Warn("MBC1 banking mode select is not implemented", "value", value)
			m.warnedBankMode = true
		}
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.RAMEnabled || len(m.RAM) == 0 {
			return
		}
		offset := int(m.RAMBank) * ramBankSize
		if offset >= len(m.RAM) {
			offset %= len(m.RAM)
		}
		m.RAM[offset+int(address-0xA000)] = value
	default:
		panic(fmt.Sprintf("invalid cartridge write: 0x%04X", address))
	}
}

func (m *MBC1) SetROM(rom []uint8) {
	m.ROM = rom
}

// RTC register selectors for MBC3's 0x4000-0x5FFF writes. Values 0x00-0x03
// map a RAM bank instead.
const (
	rtcSeconds = 0x08
	rtcMinutes = 0x09
	rtcHours   = 0x0A
	rtcDaysLow = 0x0B
	rtcDaysHi  = 0x0C
)

// RTC is MBC3's battery-backed real-time clock. The register fields hold the
// values latched by the 0x6000 latch sequence; LastUpdate anchors the
// wall-clock delta applied on the next latch.
type RTC struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	DaysLow uint8
	DaysHi  bool
	// Halted mirrors bit 6 of the DaysHi register. It is stored and read
	// back but does not stop the clock.
	Halted bool
	// Carry is set, and stays set, once the day counter passes 511.
	Carry bool

	LastUpdate time.Time
}

// Update rolls the wall-clock time elapsed since the last update into the
// clock registers, wrapping the day counter at 512 days with a sticky carry.
func (r *RTC) Update() {
	now := time.Now()
	elapsed := int64(now.Sub(r.LastUpdate).Seconds())
	if elapsed <= 0 {
		return
	}
	r.LastUpdate = now

	totalSeconds := int64(r.Seconds) + elapsed
	r.Seconds = uint8(totalSeconds % 60)

	totalMinutes := int64(r.Minutes) + totalSeconds/60
	r.Minutes = uint8(totalMinutes % 60)

	totalHours := int64(r.Hours) + totalMinutes/60
	r.Hours = uint8(totalHours % 24)

	days := int64(r.DaysLow) + totalHours/24
	if r.DaysHi {
		days += 256
	}
	if days > 511 {
		r.Carry = true
	}
	r.DaysLow = uint8(days % 256)
	r.DaysHi = days%512 >= 256
}

func (r *RTC) readDaysHi() uint8 {
	var value uint8
	if r.DaysHi {
		value |= 0x01
	}
	if r.Halted {
		value |= 0x40
	}
	if r.Carry {
		value |= 0x80
	}
	return value
}

// MBC3 supports up to 128 ROM banks, 4 RAM banks and the RTC. The external
// RAM window at 0xA000-0xBFFF maps either a RAM bank or one of the five clock
// registers, chosen by writes to 0x4000-0x5FFF.
type MBC3 struct {
	ROM []uint8 `msgpack:"-"`
	RAM []uint8

	ROMBank uint8
	// Mapped holds the raw 0x4000-0x5FFF select: 0x00-0x03 for a RAM bank,
	// 0x08-0x0C for an RTC register.
	Mapped           uint8
	RAMAndRTCEnabled bool
	Clock            RTC
	// LatchStaged is the first half of the 0->1 latch sequence.
	LatchStaged bool
}

// NewMBC3 builds an MBC3 cartridge from the full ROM image.
func NewMBC3(rom []uint8, ramBanks int) *MBC3 {
	return &MBC3{
		ROM:     rom,
		RAM:     make([]uint8, ramBanks*ramBankSize),
		ROMBank: 1,
		Clock:   RTC{LastUpdate: time.Now()},
	}
}

func (m *MBC3) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return m.ROM[address]
	case address <= 0x7FFF:
		offset := int(m.ROMBank) * romBankSize
		if offset >= len(m.ROM) {
			offset %= len(m.ROM)
		}
		return m.ROM[offset+int(address-0x4000)]
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.RAMAndRTCEnabled {
			return 0xFF
		}
		switch m.Mapped {
		case rtcSeconds:
			return m.Clock.Seconds
		case rtcMinutes:
			return m.Clock.Minutes
		case rtcHours:
			return m.Clock.Hours
		case rtcDaysLow:
			return m.Clock.DaysLow
		case rtcDaysHi:
			return m.Clock.readDaysHi()
		default:
			if len(m.RAM) == 0 {
				return 0xFF
			}
			offset := int(m.Mapped) * ramBankSize
			if offset >= len(m.RAM) {
				offset %= len(m.RAM)
			}
			return m.RAM[offset+int(address-0xA000)]
		}
	default:
		panic(fmt.Sprintf("invalid cartridge read: 0x%04X", address))
	}
}

func (m *MBC3) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		switch value & 0x0F {
		case 0x0A:
			m.RAMAndRTCEnabled = true
		case 0x00:
			m.RAMAndRTCEnabled = false
		}
	case address <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.ROMBank = bank
	case address <= 0x5FFF:
		if value <= 0x03 || (value >= rtcSeconds && value <= rtcDaysHi) {
			m.Mapped = value
		}
	case address <= 0x7FFF:
		// two-step latch: 0 stages, a following 1 latches and refreshes the
		// clock registers from the wall clock
		switch value {
		case 0x00:
			m.LatchStaged = true
		case 0x01:
			if m.LatchStaged {
				m.Clock.Update()
				m.LatchStaged = false
			}
		}
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.RAMAndRTCEnabled {
			return
		}
		switch m.Mapped {
		case rtcSeconds:
			m.Clock.Seconds = value % 60
		case rtcMinutes:
			m.Clock.Minutes = value % 60
		case rtcHours:
			m.Clock.Hours = value % 24
		case rtcDaysLow:
			m.Clock.DaysLow = value
		case rtcDaysHi:
			m.Clock.DaysHi = value&0x01 != 0
			m.Clock.Halted = value&0x40 != 0
			m.Clock.Carry = value&0x80 != 0
		default:
			if len(m.RAM) == 0 {
				return
			}
			offset := int(m.Mapped) * ramBankSize
			if offset >= len(m.RAM) {
				offset %= len(m.RAM)
			}
			m.RAM[offset+int(address-0xA000)] = value
		}
	default:
		panic(fmt.Sprintf("invalid cartridge write: 0x%04X", address))
	}
}

func (m *MBC3) SetROM(rom []uint8) {
	m.ROM = rom
}
