package memory

import "github.com/valerio/go-dotmatrix/dotmatrix/bit"

// Button is one of the eight joypad inputs.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// ButtonSet is a set of currently pressed buttons.
type ButtonSet uint8

// Contains reports whether the button is pressed.
func (s ButtonSet) Contains(b Button) bool {
	return s&(1<<b) != 0
}

// Add returns the set with the button pressed.
func (s ButtonSet) Add(b Button) ButtonSet {
	return s | (1 << b)
}

// JoypadSelect is the button group selection written to P1 bits 5-4.
// Both bits low select both groups; both high select neither.
type JoypadSelect uint8

const (
	SelectBoth JoypadSelect = iota
	SelectButtons
	SelectDPad
	SelectNeither
)

// joypadSelectFromByte decodes a P1 write. The select bits are active low:
// bit 5 selects the action buttons, bit 4 the d-pad.
func joypadSelectFromByte(value uint8) JoypadSelect {
	buttons := !bit.IsSet(5, value)
	dpad := !bit.IsSet(4, value)
	switch {
	case buttons && dpad:
		return SelectBoth
	case buttons:
		return SelectButtons
	case dpad:
		return SelectDPad
	default:
		return SelectNeither
	}
}

// toByte re-encodes the select bits as they read back from P1.
func (s JoypadSelect) toByte() uint8 {
	switch s {
	case SelectBoth:
		return 0x00
	case SelectButtons:
		return 0x10
	case SelectDPad:
		return 0x20
	default:
		return 0x30
	}
}

// buttonsNibble maps A, B, Select, Start to bits 0-3, active low.
func buttonsNibble(pressed ButtonSet) uint8 {
	nibble := uint8(0x0F)
	for i, b := range []Button{ButtonA, ButtonB, ButtonSelect, ButtonStart} {
		if pressed.Contains(b) {
			nibble = bit.Reset(uint8(i), nibble)
		}
	}
	return nibble
}

// dpadNibble maps Right, Left, Up, Down to bits 0-3, active low.
func dpadNibble(pressed ButtonSet) uint8 {
	nibble := uint8(0x0F)
	for i, b := range []Button{ButtonRight, ButtonLeft, ButtonUp, ButtonDown} {
		if pressed.Contains(b) {
			nibble = bit.Reset(uint8(i), nibble)
		}
	}
	return nibble
}

// joypadRead synthesizes the P1 register byte: unused bits 7-6 high, the
// select bits as written, and the selected group's inverted state in the low
// nibble. With both groups selected the nibbles are ANDed; with neither the
// nibble floats high.
func joypadRead(sel JoypadSelect, pressed ButtonSet) uint8 {
	value := uint8(0xC0) | sel.toByte()
	switch sel {
	case SelectButtons:
		value |= buttonsNibble(pressed)
	case SelectDPad:
		value |= dpadNibble(pressed)
	case SelectBoth:
		value |= buttonsNibble(pressed) & dpadNibble(pressed)
	default:
		value |= 0x0F
	}
	return value
}
