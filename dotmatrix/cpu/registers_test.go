package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterPairs(t *testing.T) {
	var r Registers
	r.SetR16(RegBC, 0x1234)
	assert.Equal(t, uint8(0x12), r.B)
	assert.Equal(t, uint8(0x34), r.C)
	assert.Equal(t, uint16(0x1234), r.R16(RegBC))

	r.SetR16(RegDE, 0xABCD)
	assert.Equal(t, uint16(0xABCD), r.R16(RegDE))

	r.SetHL(0xFFEE)
	assert.Equal(t, uint16(0xFFEE), r.R16(RegHL))

	r.SetR16(RegSP, 0x8000)
	assert.Equal(t, uint16(0x8000), r.SP)
}

func TestAFWriteMasksFlagNibble(t *testing.T) {
	var r Registers
	for value := 0; value <= 0xFFFF; value++ {
		r.SetR16(RegAF, uint16(value))
		if r.F&0x0F != 0 {
			t.Fatalf("F low nibble non-zero after SetR16(AF, 0x%04X): F=0x%02X", value, r.F)
		}
	}
	r.SetR16(RegAF, 0x12FF)
	assert.Equal(t, uint16(0x12F0), r.R16(RegAF))
}

func TestFlags(t *testing.T) {
	var r Registers
	for _, flag := range []Flag{FlagZ, FlagN, FlagH, FlagC} {
		assert.False(t, r.Flag(flag))
		r.SetFlag(flag, true)
		assert.True(t, r.Flag(flag))
		r.SetFlag(flag, false)
		assert.False(t, r.Flag(flag))
	}

	r.setFlags(true, false, true, false)
	assert.Equal(t, uint8(0xA0), r.F)
	assert.Equal(t, uint8(0), r.F&0x0F)
}

func TestR8Access(t *testing.T) {
	var r Registers
	regs := []R8{RegA, RegB, RegC, RegD, RegE, RegH, RegL}
	for i, reg := range regs {
		r.SetR8(reg, uint8(i+1))
	}
	for i, reg := range regs {
		assert.Equal(t, uint8(i+1), r.R8(reg))
	}
}

func TestNewRegisters(t *testing.T) {
	r := NewRegisters()
	assert.Equal(t, uint16(0xFFFE), r.SP)
	assert.Equal(t, uint16(0x0000), r.PC, "execution starts in the boot ROM")
}
