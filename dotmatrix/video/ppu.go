package video

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// Mode is the PPU's current rendering stage.
// The values match the STAT register bits 1-0.
type Mode uint8

const (
	// HBlankMode (mode 0): horizontal blank at the end of a visible line.
	HBlankMode Mode = 0
	// VBlankMode (mode 1): vertical blank, lines 144-153.
	VBlankMode Mode = 1
	// OAMScanMode (mode 2): the PPU is scanning OAM for objects on the line.
	OAMScanMode Mode = 2
	// PixelTransferMode (mode 3): pixels are pushed to the LCD.
	PixelTransferMode Mode = 3
)

// Mode durations in T-cycles. A full scanline is 456 cycles.
const (
	oamScanCycles       = 80
	pixelTransferCycles = 172
	hblankCycles        = 204
	vblankLineCycles    = 456
)

const lastVBlankLine = 153

// PPU owns VRAM (as structured tile data and maps), OAM, the palettes and the
// LCD control/status state, and runs the four-mode scanline state machine.
//
// Completed scanlines are written into LCD; at the HBlank->VBlank transition
// the working image is snapshotted into LastFrame, which is the only buffer
// external readers should touch.
type PPU struct {
	TileData  TileData
	LoTileMap TileMap // at 0x9800
	HiTileMap TileMap // at 0x9C00
	OAM       [ObjectCount]ObjectAttributes

	// Line is the LCD y coordinate (LY), 0-153.
	Line uint8
	// CyclesInMode counts T-cycles spent in the current mode. Residues are
	// carried over when a mode threshold is crossed.
	CyclesInMode int
	Mode         Mode

	// LCDC fields, bit 7 down to bit 0.
	LCDEnabled        bool
	WindowTileMapHigh bool // window fetches indices from 0x9C00 instead of 0x9800
	WindowEnabled     bool
	TileData8000      bool // BG/window use unsigned 0x8000 addressing
	BGTileMapHigh     bool // BG fetches indices from 0x9C00 instead of 0x9800
	ObjSize8x16       bool
	ObjEnabled        bool
	BGEnabled         bool

	BGPalette   Palette
	ObjPalettes [2]Palette

	// Viewport offset of the LCD within the 256x256 background map (SCX/SCY).
	ScrollX uint8
	ScrollY uint8
	// Window origin (WX/WY). The window's on-screen x is WindowX-7.
	WindowX uint8
	WindowY uint8

	LYC uint8
	// STAT interrupt selects, bits 6 down to 3.
	LYCSelect    bool
	OAMSelect    bool
	VBlankSelect bool
	HBlankSelect bool

	LCD       Frame
	LastFrame Frame
}

// New returns a PPU in its power-on state: LCD off, OAM scan, line 0.
func New() *PPU {
	return &PPU{Mode: OAMScanMode}
}

// Step advances the mode state machine by the given number of T-cycles and
// returns the interrupts the PPU raised. When the LCD is disabled nothing
// advances.
func (p *PPU) Step(tCycles int) addr.InterruptSet {
	var raised addr.InterruptSet
	if !p.LCDEnabled {
		return raised
	}
	p.CyclesInMode += tCycles
	for p.advanceMode(&raised) {
	}
	return raised
}

// advanceMode performs a single mode transition if the accumulated cycles
// cross the current mode's threshold, keeping the residue. It reports whether
// a transition happened; instruction-sized steps cross at most one threshold,
// but larger steps drain through the loop in Step.
func (p *PPU) advanceMode(raised *addr.InterruptSet) bool {
	switch p.Mode {
	case OAMScanMode:
		if p.CyclesInMode < oamScanCycles {
			return false
		}
		p.CyclesInMode -= oamScanCycles
		p.Mode = PixelTransferMode
	case PixelTransferMode:
		if p.CyclesInMode < pixelTransferCycles {
			return false
		}
		p.CyclesInMode -= pixelTransferCycles
		p.Mode = HBlankMode
		if p.HBlankSelect {
			*raised = raised.Add(addr.LCDSTATInterrupt)
		}
		if p.Line < FrameHeight {
			p.LCD[p.Line] = p.drawScanline()
		}
	case HBlankMode:
		if p.CyclesInMode < hblankCycles {
			return false
		}
		p.CyclesInMode -= hblankCycles
		p.Line++
		if p.lycMatchRaises() {
			*raised = raised.Add(addr.LCDSTATInterrupt)
		}
		if p.Line == FrameHeight {
			p.Mode = VBlankMode
			p.LastFrame = p.LCD
			*raised = raised.Add(addr.VBlankInterrupt)
			if p.VBlankSelect {
				*raised = raised.Add(addr.LCDSTATInterrupt)
			}
		} else {
			p.Mode = OAMScanMode
			if p.OAMSelect {
				*raised = raised.Add(addr.LCDSTATInterrupt)
			}
		}
	case VBlankMode:
		if p.CyclesInMode < vblankLineCycles {
			return false
		}
		p.CyclesInMode -= vblankLineCycles
		p.Line++
		if p.Line > lastVBlankLine {
			p.Line = 0
			p.Mode = OAMScanMode
			if p.OAMSelect {
				*raised = raised.Add(addr.LCDSTATInterrupt)
			}
		}
		if p.lycMatchRaises() {
			*raised = raised.Add(addr.LCDSTATInterrupt)
		}
	}
	return true
}

// lycMatchRaises must be checked every time Line changes.
func (p *PPU) lycMatchRaises() bool {
	return p.LYCSelect && p.LYC == p.Line
}

// ReadVRAM returns the byte visible at a VRAM address (0x8000-0x9FFF).
func (p *PPU) ReadVRAM(address uint16) uint8 {
	switch {
	case address >= 0x8000 && address <= 0x97FF:
		return p.TileData.ReadByte(address)
	case address >= 0x9800 && address <= 0x9BFF:
		return p.LoTileMap.ReadByte(address)
	case address >= 0x9C00 && address <= 0x9FFF:
		return p.HiTileMap.ReadByte(address)
	default:
		panic(fmt.Sprintf("invalid VRAM address: 0x%04X", address))
	}
}

// WriteVRAM updates the byte at a VRAM address (0x8000-0x9FFF).
func (p *PPU) WriteVRAM(address uint16, value uint8) {
	switch {
	case address >= 0x8000 && address <= 0x97FF:
		p.TileData.WriteByte(address, value)
	case address >= 0x9800 && address <= 0x9BFF:
		p.LoTileMap.WriteByte(address, value)
	case address >= 0x9C00 && address <= 0x9FFF:
		p.HiTileMap.WriteByte(address, value)
	default:
		panic(fmt.Sprintf("invalid VRAM address: 0x%04X", address))
	}
}

// ReadOAM returns the byte visible at an OAM address (0xFE00-0xFE9F).
func (p *PPU) ReadOAM(address uint16) uint8 {
	entry := (address - addr.OAMStart) >> 2
	return p.OAM[entry].ReadByte(address % 4)
}

// WriteOAM updates the byte at an OAM address (0xFE00-0xFE9F).
func (p *PPU) WriteOAM(address uint16, value uint8) {
	entry := (address - addr.OAMStart) >> 2
	p.OAM[entry].WriteByte(address%4, value)
}

// ReadLCDC assembles the LCDC register byte from the control fields.
func (p *PPU) ReadLCDC() uint8 {
	var value uint8
	value = bit.SetTo(7, value, p.LCDEnabled)
	value = bit.SetTo(6, value, p.WindowTileMapHigh)
	value = bit.SetTo(5, value, p.WindowEnabled)
	value = bit.SetTo(4, value, p.TileData8000)
	value = bit.SetTo(3, value, p.BGTileMapHigh)
	value = bit.SetTo(2, value, p.ObjSize8x16)
	value = bit.SetTo(1, value, p.ObjEnabled)
	value = bit.SetTo(0, value, p.BGEnabled)
	return value
}

// WriteLCDC updates the control fields from an LCDC register write. Turning
// the LCD off resets the state machine to line 0, HBlank, empty accumulator.
func (p *PPU) WriteLCDC(value uint8) {
	enabled := bit.IsSet(7, value)
	if !enabled && p.LCDEnabled {
		slog.Debug("LCD disabled, resetting PPU state machine")
	}
	if !enabled {
		p.Line = 0
		p.Mode = HBlankMode
		p.CyclesInMode = 0
	}
	p.LCDEnabled = enabled
	p.WindowTileMapHigh = bit.IsSet(6, value)
	p.WindowEnabled = bit.IsSet(5, value)
	p.TileData8000 = bit.IsSet(4, value)
	p.BGTileMapHigh = bit.IsSet(3, value)
	p.ObjSize8x16 = bit.IsSet(2, value)
	p.ObjEnabled = bit.IsSet(1, value)
	p.BGEnabled = bit.IsSet(0, value)
}

// ReadSTAT assembles the STAT register byte. Bit 7 is unused and reads as 1.
func (p *PPU) ReadSTAT() uint8 {
	value := uint8(0x80)
	value = bit.SetTo(6, value, p.LYCSelect)
	value = bit.SetTo(5, value, p.OAMSelect)
	value = bit.SetTo(4, value, p.VBlankSelect)
	value = bit.SetTo(3, value, p.HBlankSelect)
	value = bit.SetTo(2, value, p.LYC == p.Line)
	return value | uint8(p.Mode)
}

// WriteSTAT updates the interrupt selects. The mode and match bits are
// read-only.
func (p *PPU) WriteSTAT(value uint8) {
	p.LYCSelect = bit.IsSet(6, value)
	p.OAMSelect = bit.IsSet(5, value)
	p.VBlankSelect = bit.IsSet(4, value)
	p.HBlankSelect = bit.IsSet(3, value)
}

// bgTileMap returns the tile map selected for the background.
func (p *PPU) bgTileMap() *TileMap {
	if p.BGTileMapHigh {
		return &p.HiTileMap
	}
	return &p.LoTileMap
}

// windowTileMap returns the tile map selected for the window.
func (p *PPU) windowTileMap() *TileMap {
	if p.WindowTileMapHigh {
		return &p.HiTileMap
	}
	return &p.LoTileMap
}

// bgWindowTile fetches a BG/window tile through the active addressing mode.
func (p *PPU) bgWindowTile(idx uint8) Tile {
	if p.TileData8000 {
		return p.TileData.TileAt8000(idx)
	}
	return p.TileData.TileAt8800(idx)
}

// objHeight returns the object height for the current object size.
func (p *PPU) objHeight() int {
	if p.ObjSize8x16 {
		return 16
	}
	return 8
}
