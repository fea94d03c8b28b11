// Package dotmatrix is the core of a Game Boy (DMG) emulator: a cycle-timed
// SM83 CPU, a scanline-based PPU and a memory-mapped bus with cartridge
// banking, exposed behind a single Emulator handle.
package dotmatrix

import (
	"log/slog"
	"os"

	"github.com/valerio/go-dotmatrix/dotmatrix/cpu"
	"github.com/valerio/go-dotmatrix/dotmatrix/memory"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

// CyclesPerFrame is the number of T-cycles of the 4.194304 MiHz system clock
// in one ~60 Hz frame.
const CyclesPerFrame = 70224

// Emulator owns the whole machine. All mutable state lives under this
// handle; the core is single-threaded and every method must be called from
// one goroutine.
type Emulator struct {
	cpu *cpu.CPU
	mmu *memory.MMU

	rom []uint8
}

// New builds an emulator for a ROM image, mapping the host-provided 256-byte
// boot ROM over addresses 0x0000-0x00FF. Execution starts at 0x0000, inside
// the boot ROM. With an empty bootROM nothing is mapped there and 0x0000
// reads the cartridge.
func New(rom []uint8, bootROM []uint8) (*Emulator, error) {
	cart, err := memory.NewCartridge(rom)
	if err != nil {
		return nil, err
	}
	mmu := memory.New(cart, bootROM)
	e := &Emulator{
		cpu: cpu.New(mmu),
		mmu: mmu,
		rom: rom,
	}
	slog.Debug("emulator created", "rom_size", len(rom), "boot_rom", len(bootROM) > 0)
	return e, nil
}

// NewPostBoot builds an emulator without a boot ROM, seeding the registers to
// the DMG post-boot state so the cartridge entry point runs directly.
func NewPostBoot(rom []uint8) (*Emulator, error) {
	e, err := New(rom, nil)
	if err != nil {
		return nil, err
	}
	regs := &e.cpu.Regs
	regs.A, regs.F = 0x01, 0xB0
	regs.B, regs.C = 0x00, 0x13
	regs.D, regs.E = 0x00, 0xD8
	regs.H, regs.L = 0x01, 0x4D
	regs.SP = 0xFFFE
	regs.PC = 0x0100
	return e, nil
}

// NewFromFile loads a ROM from disk. An empty bootROMPath starts the machine
// in the post-boot state.
func NewFromFile(romPath, bootROMPath string) (*Emulator, error) {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, err
	}
	if bootROMPath == "" {
		return NewPostBoot(rom)
	}
	bootROM, err := os.ReadFile(bootROMPath)
	if err != nil {
		return nil, err
	}
	return New(rom, bootROM)
}

// Step executes one CPU step (at most one interrupt dispatch plus one
// instruction) and returns the T-cycles consumed. The bus advances the PPU,
// timer and divider by the same amount before Step returns.
func (e *Emulator) Step() int {
	return e.cpu.Step()
}

// RunFrame steps the machine until a frame's worth of T-cycles has elapsed.
func (e *Emulator) RunFrame() {
	total := 0
	for total < CyclesPerFrame {
		total += e.Step()
	}
}

// SetPressedButtons replaces the set of held buttons.
func (e *Emulator) SetPressedButtons(pressed memory.ButtonSet) {
	e.mmu.SetPressedButtons(pressed)
}

// ResolveDisplay returns the last complete frame as a 144x160 color grid.
// Front-ends must read the display only through this snapshot.
func (e *Emulator) ResolveDisplay() [video.FrameHeight][video.FrameWidth]video.Color {
	return e.mmu.PPU.LastFrame.Colors()
}

// ResolveBackground renders the full 256x256 background layer with the
// viewport outlined, for debugging.
func (e *Emulator) ResolveBackground() [video.DebugGridSize][video.DebugGridSize]video.Color {
	return e.mmu.PPU.ResolveBackground()
}

// ResolveWindow renders the full 256x256 window layer, for debugging.
func (e *Emulator) ResolveWindow() [video.DebugGridSize][video.DebugGridSize]video.Color {
	return e.mmu.PPU.ResolveWindow()
}

// ResolveObjects renders the object layer on its own 176x176 grid with the
// LCD bounds overlaid, for debugging.
func (e *Emulator) ResolveObjects() [video.DebugObjectGridSize][video.DebugObjectGridSize]video.Color {
	return e.mmu.PPU.ResolveObjects()
}

// CPU exposes the processor for debuggers and tests.
func (e *Emulator) CPU() *cpu.CPU {
	return e.cpu
}

// MMU exposes the bus for debuggers and tests.
func (e *Emulator) MMU() *memory.MMU {
	return e.mmu
}
