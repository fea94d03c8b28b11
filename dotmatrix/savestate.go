package dotmatrix

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/cpu"
	"github.com/valerio/go-dotmatrix/dotmatrix/memory"
	"github.com/valerio/go-dotmatrix/dotmatrix/video"
)

// Save states are MessagePack-encoded and zstd-compressed. The raw ROM bytes
// are never stored: the state carries a 64-bit hash of them instead, and the
// host supplies the same ROM again on load. Display buffers are also skipped;
// the PPU redraws them within a frame.
const saveStateVersion = 1

type saveState struct {
	Version uint32
	ROMHash uint64

	CPU  cpuSnapshot
	MMU  mmuSnapshot
	PPU  ppuSnapshot
	Cart cartSnapshot
}

type cpuSnapshot struct {
	Regs   cpu.Registers
	IME    uint8
	Halted bool
}

type counterSnapshot struct {
	Frequency   uint8
	Enabled     bool
	Value       uint8
	Reload      uint8
	Accumulator int
}

type mmuSnapshot struct {
	WRAM      []byte
	HRAM      []byte
	BootROM   []byte
	InBootROM bool

	IE uint8
	IF uint8

	JoypadSelect uint8
	Pressed      uint8
	DMAValue     uint8

	Timer   counterSnapshot
	Divider counterSnapshot
}

type ppuSnapshot struct {
	// Large VRAM structures travel as flat byte blobs.
	TileData  []byte
	LoTileMap []byte
	HiTileMap []byte
	OAM       []byte

	Line         uint8
	CyclesInMode int
	Mode         uint8

	LCDC uint8
	STAT uint8

	BGP  uint8
	OBP0 uint8
	OBP1 uint8

	SCX uint8
	SCY uint8
	WX  uint8
	WY  uint8
	LYC uint8
}

// Cartridge kinds in save states.
const (
	cartKindNoMBC uint8 = iota
	cartKindMBC1
	cartKindMBC3
)

type rtcSnapshot struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	DaysLow uint8
	DaysHi  bool
	Halted  bool
	Carry   bool
	// LastUpdate is kept as Unix seconds so states survive host clock
	// representation changes.
	LastUpdate int64
}

type cartSnapshot struct {
	Kind uint8
	RAM  []byte

	ROMBank    uint8
	RAMBank    uint8
	RAMEnabled bool

	// MBC3 only
	Mapped      uint8
	LatchStaged bool
	Clock       rtcSnapshot
}

// DumpSaveState serializes the full emulator state minus ROM bytes.
func (e *Emulator) DumpSaveState() ([]byte, error) {
	state := saveState{
		Version: saveStateVersion,
		ROMHash: xxhash.Sum64(e.rom),
		CPU: cpuSnapshot{
			Regs:   e.cpu.Regs,
			IME:    uint8(e.cpu.IME),
			Halted: e.cpu.Halted,
		},
		MMU:  snapshotMMU(e.mmu),
		PPU:  snapshotPPU(e.mmu.PPU),
		Cart: snapshotCart(e.mmu.Cart),
	}

	packed, err := msgpack.Marshal(&state)
	if err != nil {
		return nil, fmt.Errorf("encoding save state: %w", err)
	}

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(packed); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadSaveState rebuilds an emulator from a save state and the original ROM
// bytes. A hash mismatch between the supplied ROM and the one the state was
// taken from is refused.
func LoadSaveState(rom []uint8, save []byte) (*Emulator, error) {
	r, err := zstd.NewReader(bytes.NewReader(save))
	if err != nil {
		return nil, fmt.Errorf("decompressing save state: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("decompressing save state: %w", err)
	}

	var state saveState
	if err := msgpack.Unmarshal(buf.Bytes(), &state); err != nil {
		return nil, fmt.Errorf("decoding save state: %w", err)
	}
	if state.Version != saveStateVersion {
		return nil, fmt.Errorf("unsupported save state version: %d", state.Version)
	}
	if hash := xxhash.Sum64(rom); hash != state.ROMHash {
		return nil, fmt.Errorf("ROM hash mismatch: state was taken from a different ROM")
	}

	e, err := New(rom, nil)
	if err != nil {
		return nil, err
	}

	e.cpu.Regs = state.CPU.Regs
	e.cpu.IME = cpu.IMEState(state.CPU.IME)
	e.cpu.Halted = state.CPU.Halted

	restoreMMU(e.mmu, state.MMU)
	restorePPU(e.mmu.PPU, state.PPU)
	if err := restoreCart(e.mmu.Cart, state.Cart); err != nil {
		return nil, err
	}
	// the state never carried ROM bytes; re-attach the host's copy
	e.mmu.Cart.SetROM(rom)
	return e, nil
}

func snapshotCounter(c memory.Counter) counterSnapshot {
	return counterSnapshot{
		Frequency:   uint8(c.Frequency),
		Enabled:     c.Enabled,
		Value:       c.Value,
		Reload:      c.Reload,
		Accumulator: c.Accumulator,
	}
}

func restoreCounter(c *memory.Counter, s counterSnapshot) {
	c.Frequency = memory.Frequency(s.Frequency)
	c.Enabled = s.Enabled
	c.Value = s.Value
	c.Reload = s.Reload
	c.Accumulator = s.Accumulator
}

func snapshotMMU(m *memory.MMU) mmuSnapshot {
	return mmuSnapshot{
		WRAM:         append([]byte(nil), m.WRAM...),
		HRAM:         append([]byte(nil), m.HRAM...),
		BootROM:      append([]byte(nil), m.BootROM...),
		InBootROM:    m.InBootROM,
		IE:           m.IE.ToByte(),
		IF:           m.IF.ToByte(),
		JoypadSelect: uint8(m.JoypadSelect),
		Pressed:      uint8(m.Pressed),
		DMAValue:     m.DMAValue,
		Timer:        snapshotCounter(m.Timer),
		Divider:      snapshotCounter(m.Divider),
	}
}

func restoreMMU(m *memory.MMU, s mmuSnapshot) {
	copy(m.WRAM, s.WRAM)
	copy(m.HRAM, s.HRAM)
	copy(m.BootROM, s.BootROM)
	m.InBootROM = s.InBootROM
	m.IE = addr.InterruptSetFromByte(s.IE)
	m.IF = addr.InterruptSetFromByte(s.IF)
	m.JoypadSelect = memory.JoypadSelect(s.JoypadSelect)
	m.Pressed = memory.ButtonSet(s.Pressed)
	m.DMAValue = s.DMAValue
	restoreCounter(&m.Timer, s.Timer)
	restoreCounter(&m.Divider, s.Divider)
}

func snapshotPPU(p *video.PPU) ppuSnapshot {
	s := ppuSnapshot{
		TileData:     make([]byte, 0, 3*video.TilesPerBlock*video.TileSize),
		LoTileMap:    make([]byte, 0, 32*32),
		HiTileMap:    make([]byte, 0, 32*32),
		OAM:          make([]byte, 0, video.ObjectCount*4),
		Line:         p.Line,
		CyclesInMode: p.CyclesInMode,
		Mode:         uint8(p.Mode),
		LCDC:         p.ReadLCDC(),
		STAT:         p.ReadSTAT(),
		BGP:          p.BGPalette.ToByte(),
		OBP0:         p.ObjPalettes[0].ToByte(),
		OBP1:         p.ObjPalettes[1].ToByte(),
		SCX:          p.ScrollX,
		SCY:          p.ScrollY,
		WX:           p.WindowX,
		WY:           p.WindowY,
		LYC:          p.LYC,
	}
	for block := range p.TileData.Blocks {
		for tile := range p.TileData.Blocks[block] {
			for _, line := range p.TileData.Blocks[block][tile].Lines {
				s.TileData = append(s.TileData, line.Low, line.High)
			}
		}
	}
	for row := 0; row < 32; row++ {
		s.LoTileMap = append(s.LoTileMap, p.LoTileMap.Indices[row][:]...)
		s.HiTileMap = append(s.HiTileMap, p.HiTileMap.Indices[row][:]...)
	}
	for i := range p.OAM {
		for offset := uint16(0); offset < 4; offset++ {
			s.OAM = append(s.OAM, p.OAM[i].ReadByte(offset))
		}
	}
	return s
}

func restorePPU(p *video.PPU, s ppuSnapshot) {
	p.WriteLCDC(s.LCDC)
	p.WriteSTAT(s.STAT)
	p.Line = s.Line
	p.CyclesInMode = s.CyclesInMode
	p.Mode = video.Mode(s.Mode)
	p.BGPalette = video.PaletteFromByte(s.BGP)
	p.ObjPalettes[0] = video.PaletteFromByte(s.OBP0)
	p.ObjPalettes[1] = video.PaletteFromByte(s.OBP1)
	p.ScrollX = s.SCX
	p.ScrollY = s.SCY
	p.WindowX = s.WX
	p.WindowY = s.WY
	p.LYC = s.LYC

	idx := 0
	for block := range p.TileData.Blocks {
		for tile := range p.TileData.Blocks[block] {
			for line := range p.TileData.Blocks[block][tile].Lines {
				p.TileData.Blocks[block][tile].Lines[line] = video.TileLine{
					Low:  s.TileData[idx],
					High: s.TileData[idx+1],
				}
				idx += 2
			}
		}
	}
	for row := 0; row < 32; row++ {
		copy(p.LoTileMap.Indices[row][:], s.LoTileMap[row*32:(row+1)*32])
		copy(p.HiTileMap.Indices[row][:], s.HiTileMap[row*32:(row+1)*32])
	}
	for i := range p.OAM {
		for offset := uint16(0); offset < 4; offset++ {
			p.OAM[i].WriteByte(offset, s.OAM[i*4+int(offset)])
		}
	}
}

func snapshotCart(cart memory.Cartridge) cartSnapshot {
	switch c := cart.(type) {
	case *memory.NoMBC:
		return cartSnapshot{Kind: cartKindNoMBC, RAM: append([]byte(nil), c.RAM...)}
	case *memory.MBC1:
		return cartSnapshot{
			Kind:       cartKindMBC1,
			RAM:        append([]byte(nil), c.RAM...),
			ROMBank:    c.ROMBank,
			RAMBank:    c.RAMBank,
			RAMEnabled: c.RAMEnabled,
		}
	case *memory.MBC3:
		return cartSnapshot{
			Kind:        cartKindMBC3,
			RAM:         append([]byte(nil), c.RAM...),
			ROMBank:     c.ROMBank,
			RAMEnabled:  c.RAMAndRTCEnabled,
			Mapped:      c.Mapped,
			LatchStaged: c.LatchStaged,
			Clock: rtcSnapshot{
				Seconds:    c.Clock.Seconds,
				Minutes:    c.Clock.Minutes,
				Hours:      c.Clock.Hours,
				DaysLow:    c.Clock.DaysLow,
				DaysHi:     c.Clock.DaysHi,
				Halted:     c.Clock.Halted,
				Carry:      c.Clock.Carry,
				LastUpdate: c.Clock.LastUpdate.Unix(),
			},
		}
	default:
		return cartSnapshot{Kind: cartKindNoMBC}
	}
}

func restoreCart(cart memory.Cartridge, s cartSnapshot) error {
	switch c := cart.(type) {
	case *memory.NoMBC:
		if s.Kind != cartKindNoMBC {
			return fmt.Errorf("save state cartridge kind %d does not match ROM header", s.Kind)
		}
		copy(c.RAM, s.RAM)
	case *memory.MBC1:
		if s.Kind != cartKindMBC1 {
			return fmt.Errorf("save state cartridge kind %d does not match ROM header", s.Kind)
		}
		copy(c.RAM, s.RAM)
		c.ROMBank = s.ROMBank
		c.RAMBank = s.RAMBank
		c.RAMEnabled = s.RAMEnabled
	case *memory.MBC3:
		if s.Kind != cartKindMBC3 {
			return fmt.Errorf("save state cartridge kind %d does not match ROM header", s.Kind)
		}
		copy(c.RAM, s.RAM)
		c.ROMBank = s.ROMBank
		c.RAMAndRTCEnabled = s.RAMEnabled
		c.Mapped = s.Mapped
		c.LatchStaged = s.LatchStaged
		c.Clock = memory.RTC{
			Seconds:    s.Clock.Seconds,
			Minutes:    s.Clock.Minutes,
			Hours:      s.Clock.Hours,
			DaysLow:    s.Clock.DaysLow,
			DaysHi:     s.Clock.DaysHi,
			Halted:     s.Clock.Halted,
			Carry:      s.Clock.Carry,
			LastUpdate: time.Unix(s.Clock.LastUpdate, 0),
		}
	default:
		return fmt.Errorf("cartridge type %T cannot be restored", cart)
	}
	return nil
}
