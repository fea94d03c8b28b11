package video

import (
	"fmt"

	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// TileLine is one row of a tile pattern (8 pixels).
//
// Game Boy tiles are 8x8 pixels, with 2 bits per pixel allowing 4 colors.
// Each tile row uses 2 bytes in a bit-plane format:
//
//	Low:  bit plane 0 - provides bit 0 of each pixel's color ID
//	High: bit plane 1 - provides bit 1 of each pixel's color ID
//
// In both planes bit 7 represents the leftmost pixel, bit 0 the rightmost.
//
// Example: bytes $3C and $7E represent a row:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	IDs:         0 2 3 3 3 3 2 0
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileLine struct {
	Low  uint8
	High uint8
}

// ColorIDs expands the two planes into the 8 per-pixel color IDs.
// Index 0 is the leftmost pixel.
func (l TileLine) ColorIDs() [8]ColorID {
	var ids [8]ColorID
	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		id := bit.GetBitValue(bitIdx, l.Low) | bit.GetBitValue(bitIdx, l.High)<<1
		ids[7-bitIdx] = ColorID(id)
	}
	return ids
}

// TileLineFromColorIDs packs 8 per-pixel color IDs back into the two planes.
// Index 0 is the leftmost pixel.
func TileLineFromColorIDs(ids [8]ColorID) TileLine {
	var line TileLine
	for idx, id := range ids {
		bitIdx := uint8(7 - idx)
		line.Low = bit.SetTo(bitIdx, line.Low, id&0x01 != 0)
		line.High = bit.SetTo(bitIdx, line.High, id&0x02 != 0)
	}
	return line
}

// Tile is a complete 8x8 tile pattern. Lines[0] is the top row.
type Tile struct {
	Lines [8]TileLine
}

const (
	// TilesPerBlock is the number of tiles in each of the three VRAM blocks.
	TilesPerBlock = 128
	// TileSize is the number of bytes a tile occupies in VRAM.
	TileSize = 16
)

// TileData holds the three 128-tile blocks of VRAM tile data
// (0x8000-0x87FF, 0x8800-0x8FFF, 0x9000-0x97FF).
type TileData struct {
	Blocks [3][TilesPerBlock]Tile
}

// TileAt8000 reads a tile using unsigned (0x8000) addressing: indices 0-127
// select from block 0, 128-255 from block 1. Objects always use this mode.
func (d *TileData) TileAt8000(idx uint8) Tile {
	if idx < TilesPerBlock {
		return d.Blocks[0][idx]
	}
	return d.Blocks[1][idx%TilesPerBlock]
}

// TileAt8800 reads a tile using signed (0x8800) addressing: the index is
// interpreted as int8, 0..127 selects from block 2 and -128..-1 from block 1.
func (d *TileData) TileAt8800(idx uint8) Tile {
	signed := int8(idx)
	if signed >= 0 {
		return d.Blocks[2][signed]
	}
	return d.Blocks[1][int(signed)+TilesPerBlock]
}

// tileByteIdx locates one byte of tile data within the block/tile/line
// structure. Valid for addresses in 0x8000-0x97FF.
type tileByteIdx struct {
	block   int
	tile    int
	line    int
	isPlane bool // false selects the low plane, true the high plane
}

func tileByteIdxFromAddr(address uint16) tileByteIdx {
	if address < 0x8000 || address > 0x97FF {
		panic(fmt.Sprintf("invalid tile data address: 0x%04X", address))
	}
	offset := address & 0x1FFF
	return tileByteIdx{
		block:   int(offset >> 11),
		tile:    int(offset>>4) % TilesPerBlock,
		line:    int(offset&0x0F) >> 1,
		isPlane: offset&0x01 == 1,
	}
}

// ReadByte returns the raw VRAM byte at an address in 0x8000-0x97FF.
func (d *TileData) ReadByte(address uint16) uint8 {
	idx := tileByteIdxFromAddr(address)
	line := d.Blocks[idx.block][idx.tile].Lines[idx.line]
	if idx.isPlane {
		return line.High
	}
	return line.Low
}

// WriteByte updates one plane byte, preserving the other plane.
func (d *TileData) WriteByte(address uint16, value uint8) {
	idx := tileByteIdxFromAddr(address)
	line := &d.Blocks[idx.block][idx.tile].Lines[idx.line]
	if idx.isPlane {
		line.High = value
	} else {
		line.Low = value
	}
}

// TileMap is a 32x32 grid of tile indices. Two instances live in VRAM, at
// 0x9800 and 0x9C00.
type TileMap struct {
	Indices [32][32]uint8
}

// ReadByte returns the tile index stored at an address within the map.
func (m *TileMap) ReadByte(address uint16) uint8 {
	return m.Indices[(address/32)%32][address%32]
}

// WriteByte stores a tile index at an address within the map.
func (m *TileMap) WriteByte(address uint16, value uint8) {
	m.Indices[(address/32)%32][address%32] = value
}
