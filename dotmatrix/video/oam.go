package video

import "github.com/valerio/go-dotmatrix/dotmatrix/bit"

// ObjectCount is the number of entries in the object attribute memory.
const ObjectCount = 40

// ObjectAttributes is one 4-byte OAM entry.
//
// YPos is the object's vertical position on the screen + 16, so Y=0 hides an
// object and Y=16 places it at the top edge. XPos is the horizontal position
// + 8; X=0 or X>=168 hides the object.
type ObjectAttributes struct {
	YPos      uint8
	XPos      uint8
	TileIndex uint8

	// BGOverOBJ gives non-zero background/window pixels priority over the
	// object when set.
	BGOverOBJ bool
	YFlip     bool
	XFlip     bool
	// PaletteIndex selects OBP0 (0) or OBP1 (1).
	PaletteIndex uint8
}

// ReadByte returns the entry byte at the given offset (0-3).
func (o *ObjectAttributes) ReadByte(offset uint16) uint8 {
	switch offset {
	case 0:
		return o.YPos
	case 1:
		return o.XPos
	case 2:
		return o.TileIndex
	default:
		var flags uint8
		flags = bit.SetTo(7, flags, o.BGOverOBJ)
		flags = bit.SetTo(6, flags, o.YFlip)
		flags = bit.SetTo(5, flags, o.XFlip)
		flags = bit.SetTo(4, flags, o.PaletteIndex == 1)
		return flags
	}
}

// WriteByte updates the entry byte at the given offset (0-3). The low four
// bits of the attribute byte are CGB-only and dropped.
func (o *ObjectAttributes) WriteByte(offset uint16, value uint8) {
	switch offset {
	case 0:
		o.YPos = value
	case 1:
		o.XPos = value
	case 2:
		o.TileIndex = value
	default:
		o.BGOverOBJ = bit.IsSet(7, value)
		o.YFlip = bit.IsSet(6, value)
		o.XFlip = bit.IsSet(5, value)
		o.PaletteIndex = bit.GetBitValue(4, value)
	}
}
