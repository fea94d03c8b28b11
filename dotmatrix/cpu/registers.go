package cpu

import (
	"fmt"

	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// R8 identifies one of the named 8-bit registers. The flags register is not
// addressable here; it is only reachable through the flag accessors and AF.
type R8 uint8

const (
	RegA R8 = iota
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
)

// R16 identifies one of the 16-bit registers or register pairs.
type R16 uint8

const (
	RegAF R16 = iota
	RegBC
	RegDE
	RegHL
	RegSP
)

// Flag identifies one of the four flag bits in the F register.
type Flag uint8

const (
	// FlagZ is set when the result of an operation is 0.
	FlagZ Flag = 7
	// FlagN is set when the last operation was a subtraction.
	FlagN Flag = 6
	// FlagH is set on a carry out of the low nibble.
	FlagH Flag = 5
	// FlagC is set on a carry out of the full byte.
	FlagC Flag = 4
)

// Registers is the SM83 register file: eight 8-bit registers pairable into
// 16-bit views, plus SP and PC.
//
// The low nibble of F always reads as zero; every write path that can reach F
// masks it.
type Registers struct {
	A uint8
	F uint8
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8

	SP uint16
	PC uint16
}

// NewRegisters returns the power-on register file: SP at the top of HRAM and
// PC at the boot ROM entry point.
func NewRegisters() Registers {
	return Registers{SP: 0xFFFE, PC: 0x0000}
}

// R8 reads the value of an 8-bit register.
func (r *Registers) R8(reg R8) uint8 {
	switch reg {
	case RegA:
		return r.A
	case RegB:
		return r.B
	case RegC:
		return r.C
	case RegD:
		return r.D
	case RegE:
		return r.E
	case RegH:
		return r.H
	case RegL:
		return r.L
	default:
		panic(fmt.Sprintf("invalid 8-bit register: %d", reg))
	}
}

// SetR8 writes the value of an 8-bit register.
func (r *Registers) SetR8(reg R8, value uint8) {
	switch reg {
	case RegA:
		r.A = value
	case RegB:
		r.B = value
	case RegC:
		r.C = value
	case RegD:
		r.D = value
	case RegE:
		r.E = value
	case RegH:
		r.H = value
	case RegL:
		r.L = value
	default:
		panic(fmt.Sprintf("invalid 8-bit register: %d", reg))
	}
}

// R16 reads a 16-bit register or pair as (hi<<8)|lo.
func (r *Registers) R16(reg R16) uint16 {
	switch reg {
	case RegAF:
		return bit.Combine(r.A, r.F)
	case RegBC:
		return bit.Combine(r.B, r.C)
	case RegDE:
		return bit.Combine(r.D, r.E)
	case RegHL:
		return bit.Combine(r.H, r.L)
	case RegSP:
		return r.SP
	default:
		panic(fmt.Sprintf("invalid 16-bit register: %d", reg))
	}
}

// SetR16 writes a 16-bit register or pair. Writes that land in F mask its low
// nibble to zero.
func (r *Registers) SetR16(reg R16, value uint16) {
	hi, lo := bit.High(value), bit.Low(value)
	switch reg {
	case RegAF:
		r.A = hi
		r.F = lo & 0xF0
	case RegBC:
		r.B = hi
		r.C = lo
	case RegDE:
		r.D = hi
		r.E = lo
	case RegHL:
		r.H = hi
		r.L = lo
	case RegSP:
		r.SP = value
	default:
		panic(fmt.Sprintf("invalid 16-bit register: %d", reg))
	}
}

// HL is shorthand for R16(RegHL).
func (r *Registers) HL() uint16 {
	return bit.Combine(r.H, r.L)
}

// SetHL is shorthand for SetR16(RegHL, value).
func (r *Registers) SetHL(value uint16) {
	r.H = bit.High(value)
	r.L = bit.Low(value)
}

// Flag reads one of the four flag bits.
func (r *Registers) Flag(flag Flag) bool {
	return bit.IsSet(uint8(flag), r.F)
}

// SetFlag writes one of the four flag bits.
func (r *Registers) SetFlag(flag Flag, value bool) {
	r.F = bit.SetTo(uint8(flag), r.F, value)
}

// setFlags writes all four flags at once.
func (r *Registers) setFlags(z, n, h, c bool) {
	var f uint8
	f = bit.SetTo(uint8(FlagZ), f, z)
	f = bit.SetTo(uint8(FlagN), f, n)
	f = bit.SetTo(uint8(FlagH), f, h)
	f = bit.SetTo(uint8(FlagC), f, c)
	r.F = f
}
