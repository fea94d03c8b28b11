package cpu

import "github.com/valerio/go-dotmatrix/dotmatrix/bit"

// executeCB runs a CB-prefixed instruction and returns the total T-cycles,
// including the 4 spent fetching the prefix.
//
// The table is fully regular: bits 7-6 select the group (rotates/shifts, BIT,
// RES, SET), bits 5-3 the sub-operation or bit index, bits 2-0 the operand in
// the usual B,C,D,E,H,L,(HL),A order. Register forms cost 8 cycles; the (HL)
// forms cost 12 for BIT (read only) and 16 for everything else
// (read-modify-write).
func (c *CPU) executeCB(opcode uint8) int {
	operand := opcode & 0x07
	bitIdx := (opcode >> 3) & 0x07

	switch opcode >> 6 {
	case 0: // rotates and shifts
		value, readCycles := c.readOperand(operand)
		switch bitIdx {
		case 0:
			value = c.aluRLC(value)
		case 1:
			value = c.aluRRC(value)
		case 2:
			value = c.aluRL(value)
		case 3:
			value = c.aluRR(value)
		case 4:
			value = c.aluSLA(value)
		case 5:
			value = c.aluSRA(value)
		case 6:
			value = c.aluSwap(value)
		default:
			value = c.aluSRL(value)
		}
		writeCycles := c.writeOperand(operand, value)
		return 8 + readCycles + writeCycles

	case 1: // BIT u3
		value, readCycles := c.readOperand(operand)
		c.aluBit(bitIdx, value)
		return 8 + readCycles

	case 2: // RES u3
		value, readCycles := c.readOperand(operand)
		writeCycles := c.writeOperand(operand, bit.Reset(bitIdx, value))
		return 8 + readCycles + writeCycles

	default: // SET u3
		value, readCycles := c.readOperand(operand)
		writeCycles := c.writeOperand(operand, bit.Set(bitIdx, value))
		return 8 + readCycles + writeCycles
	}
}
