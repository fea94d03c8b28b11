package memory

import (
	"fmt"
	"log/slog"
)

// Cartridge header offsets.
const (
	cartTypeAddress = 0x0147
	romSizeAddress  = 0x0148
	ramSizeAddress  = 0x0149
)

// headerSize is the minimum ROM length that still contains a full header.
const headerSize = 0x0150

// NewCartridge decodes the header of a ROM image and builds the matching
// cartridge variant.
//
// The MBC type byte at 0x0147 selects the controller: 0x00/0x08/0x09 have no
// MBC, 0x01-0x03 are MBC1, 0x0F-0x13 are MBC3. Other types are unsupported;
// they load as a stub that reads 0xFF and drops writes so the host can still
// poke at the machine.
func NewCartridge(rom []uint8) (Cartridge, error) {
	if len(rom) < headerSize {
		return nil, fmt.Errorf("ROM too small to contain a header: %d bytes", len(rom))
	}

	cartType := rom[cartTypeAddress]
	ramBanks := ramBankCount(rom[ramSizeAddress])
	slog.Debug("decoded cartridge header",
		"type", fmt.Sprintf("0x%02X", cartType),
		"rom_banks", romBankCount(rom[romSizeAddress]),
		"ram_banks", ramBanks)

	switch {
	case cartType == 0x00 || cartType == 0x08 || cartType == 0x09:
		return NewNoMBC(rom, ramBanks), nil
	case cartType >= 0x01 && cartType <= 0x03:
		return NewMBC1(rom, ramBanks), nil
	case cartType >= 0x0F && cartType <= 0x13:
		return NewMBC3(rom, ramBanks), nil
	default:
		slog.Warn("unsupported cartridge type, using open-bus stub",
			"type", fmt.Sprintf("0x%02X", cartType))
		return &stubCartridge{}, nil
	}
}

// romBankCount decodes the ROM size byte: the image holds 2 * (1 << byte)
// banks of 16 KiB.
func romBankCount(sizeByte uint8) int {
	return 2 << sizeByte
}

// ramBankCount decodes the RAM size byte: 0 and 1 mean no RAM, 2 means one
// 8 KiB bank, 3 means four.
func ramBankCount(sizeByte uint8) int {
	switch sizeByte {
	case 0x02:
		return 1
	case 0x03:
		return 4
	default:
		return 0
	}
}

// stubCartridge stands in for unsupported MBC types: open-bus reads, writes
// ignored.
type stubCartridge struct{}

func (s *stubCartridge) Read(address uint16) uint8    { return 0xFF }
func (s *stubCartridge) Write(address uint16, v uint8) {}
func (s *stubCartridge) SetROM(rom []uint8)            {}
