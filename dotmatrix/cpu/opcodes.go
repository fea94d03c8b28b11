package cpu

import "fmt"

// The regular opcode blocks (LD at 0x40-0x7F, ALU at 0x80-0xBF, and the
// whole CB table) share one operand order: B, C, D, E, H, L, (HL), A.
// Index 6 is the (HL) memory operand.
const memOperand = 6

// readOperand reads operand idx from the order above. Reading through (HL)
// costs one extra machine cycle.
func (c *CPU) readOperand(idx uint8) (value uint8, extraCycles int) {
	switch idx {
	case 0:
		return c.Regs.B, 0
	case 1:
		return c.Regs.C, 0
	case 2:
		return c.Regs.D, 0
	case 3:
		return c.Regs.E, 0
	case 4:
		return c.Regs.H, 0
	case 5:
		return c.Regs.L, 0
	case memOperand:
		return c.mmu.Read(c.Regs.HL()), 4
	case 7:
		return c.Regs.A, 0
	default:
		panic(fmt.Sprintf("invalid operand index: %d", idx))
	}
}

// writeOperand writes operand idx in the order above.
func (c *CPU) writeOperand(idx uint8, value uint8) (extraCycles int) {
	switch idx {
	case 0:
		c.Regs.B = value
	case 1:
		c.Regs.C = value
	case 2:
		c.Regs.D = value
	case 3:
		c.Regs.E = value
	case 4:
		c.Regs.H = value
	case 5:
		c.Regs.L = value
	case memOperand:
		c.mmu.Write(c.Regs.HL(), value)
		return 4
	case 7:
		c.Regs.A = value
	default:
		panic(fmt.Sprintf("invalid operand index: %d", idx))
	}
	return 0
}

// execute runs a single instruction and returns the T-cycles it consumed.
//
// Precondition: PC points at the byte after the opcode. Instructions with
// immediates advance PC further as they fetch.
// Reference: https://rgbds.gbdev.io/docs (CPU opcode reference)
func (c *CPU) execute(opcode uint8) int {
	// LD r,r' / LD r,(HL) / LD (HL),r occupy the whole 0x40-0x7F block,
	// except 0x76 which is HALT.
	if opcode >= 0x40 && opcode <= 0x7F && opcode != 0x76 {
		src := opcode & 0x07
		dst := (opcode >> 3) & 0x07
		value, readCycles := c.readOperand(src)
		writeCycles := c.writeOperand(dst, value)
		return 4 + readCycles + writeCycles
	}

	// The arithmetic/logic operations on A occupy the whole 0x80-0xBF block.
	if opcode >= 0x80 && opcode <= 0xBF {
		value, extraCycles := c.readOperand(opcode & 0x07)
		c.aluAccumulatorOp((opcode>>3)&0x07, value)
		return 4 + extraCycles
	}

	switch opcode {
	// --- misc / control ---
	case 0x00: // NOP
		return 4
	case 0x10: // STOP
		// STOP consumes a padding byte; entering stop mode is not supported.
		c.fetch8()
		panic("STOP instruction executed")
	case 0x27: // DAA
		c.daa()
		return 4
	case 0x37: // SCF
		c.Regs.SetFlag(FlagN, false)
		c.Regs.SetFlag(FlagH, false)
		c.Regs.SetFlag(FlagC, true)
		return 4
	case 0x2F: // CPL
		c.Regs.A = ^c.Regs.A
		c.Regs.SetFlag(FlagN, true)
		c.Regs.SetFlag(FlagH, true)
		return 4
	case 0x3F: // CCF
		c.Regs.SetFlag(FlagN, false)
		c.Regs.SetFlag(FlagH, false)
		c.Regs.SetFlag(FlagC, !c.Regs.Flag(FlagC))
		return 4
	case 0x76: // HALT
		c.Halted = true
		return 4
	case 0xF3: // DI
		c.IME = IMEDisabled
		return 4
	case 0xFB: // EI
		c.IME = IMEPendingEnable
		return 4
	case 0xCB:
		return c.executeCB(c.fetch8())

	// --- rotate accumulator (unprefixed variants force Z to 0) ---
	case 0x07: // RLCA
		c.Regs.A = c.aluRLC(c.Regs.A)
		c.Regs.SetFlag(FlagZ, false)
		return 4
	case 0x17: // RLA
		c.Regs.A = c.aluRL(c.Regs.A)
		c.Regs.SetFlag(FlagZ, false)
		return 4
	case 0x0F: // RRCA
		c.Regs.A = c.aluRRC(c.Regs.A)
		c.Regs.SetFlag(FlagZ, false)
		return 4
	case 0x1F: // RRA
		c.Regs.A = c.aluRR(c.Regs.A)
		c.Regs.SetFlag(FlagZ, false)
		return 4

	// --- relative jumps ---
	case 0x18: // JR e8
		offset := int8(c.fetch8())
		c.Regs.PC += uint16(int16(offset))
		return 12
	case 0x20:
		return c.jrCond(condNZ)
	case 0x28:
		return c.jrCond(condZ)
	case 0x30:
		return c.jrCond(condNC)
	case 0x38:
		return c.jrCond(condC)

	// --- absolute jumps ---
	case 0xC3: // JP n16
		c.Regs.PC = c.fetch16()
		return 16
	case 0xE9: // JP HL
		c.Regs.PC = c.Regs.HL()
		return 4
	case 0xC2:
		return c.jpCond(condNZ)
	case 0xCA:
		return c.jpCond(condZ)
	case 0xD2:
		return c.jpCond(condNC)
	case 0xDA:
		return c.jpCond(condC)

	// --- calls and returns ---
	case 0xCD: // CALL n16
		target := c.fetch16()
		c.pushStack(c.Regs.PC)
		c.Regs.PC = target
		return 24
	case 0xC4:
		return c.callCond(condNZ)
	case 0xCC:
		return c.callCond(condZ)
	case 0xD4:
		return c.callCond(condNC)
	case 0xDC:
		return c.callCond(condC)
	case 0xC9: // RET
		c.Regs.PC = c.popStack()
		return 16
	case 0xD9: // RETI
		c.Regs.PC = c.popStack()
		c.IME = IMEEnabled
		return 16
	case 0xC0:
		return c.retCond(condNZ)
	case 0xC8:
		return c.retCond(condZ)
	case 0xD0:
		return c.retCond(condNC)
	case 0xD8:
		return c.retCond(condC)

	// --- restarts ---
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST n
		c.pushStack(c.Regs.PC)
		c.Regs.PC = uint16(opcode & 0x38)
		return 16

	// --- 16-bit loads ---
	case 0x01: // LD BC,n16
		c.Regs.SetR16(RegBC, c.fetch16())
		return 12
	case 0x11: // LD DE,n16
		c.Regs.SetR16(RegDE, c.fetch16())
		return 12
	case 0x21: // LD HL,n16
		c.Regs.SetR16(RegHL, c.fetch16())
		return 12
	case 0x31: // LD SP,n16
		c.Regs.SP = c.fetch16()
		return 12
	case 0xC1: // POP BC
		c.Regs.SetR16(RegBC, c.popStack())
		return 12
	case 0xD1: // POP DE
		c.Regs.SetR16(RegDE, c.popStack())
		return 12
	case 0xE1: // POP HL
		c.Regs.SetR16(RegHL, c.popStack())
		return 12
	case 0xF1: // POP AF (the low nibble of F stays zero)
		c.Regs.SetR16(RegAF, c.popStack())
		return 12
	case 0xC5: // PUSH BC
		c.pushStack(c.Regs.R16(RegBC))
		return 16
	case 0xD5: // PUSH DE
		c.pushStack(c.Regs.R16(RegDE))
		return 16
	case 0xE5: // PUSH HL
		c.pushStack(c.Regs.R16(RegHL))
		return 16
	case 0xF5: // PUSH AF
		c.pushStack(c.Regs.R16(RegAF))
		return 16
	case 0x08: // LD (n16),SP
		target := c.fetch16()
		c.mmu.Write(target, uint8(c.Regs.SP))
		c.mmu.Write(target+1, uint8(c.Regs.SP>>8))
		return 20
	case 0xF8: // LD HL,SP+e8
		c.Regs.SetHL(c.aluAddSP(int8(c.fetch8())))
		return 12
	case 0xF9: // LD SP,HL
		c.Regs.SP = c.Regs.HL()
		return 8

	// --- 8-bit loads ---
	case 0x02: // LD (BC),A
		c.mmu.Write(c.Regs.R16(RegBC), c.Regs.A)
		return 8
	case 0x12: // LD (DE),A
		c.mmu.Write(c.Regs.R16(RegDE), c.Regs.A)
		return 8
	case 0x22: // LD (HL+),A
		c.mmu.Write(c.Regs.HL(), c.Regs.A)
		c.Regs.SetHL(c.Regs.HL() + 1)
		return 8
	case 0x32: // LD (HL-),A
		c.mmu.Write(c.Regs.HL(), c.Regs.A)
		c.Regs.SetHL(c.Regs.HL() - 1)
		return 8
	case 0x0A: // LD A,(BC)
		c.Regs.A = c.mmu.Read(c.Regs.R16(RegBC))
		return 8
	case 0x1A: // LD A,(DE)
		c.Regs.A = c.mmu.Read(c.Regs.R16(RegDE))
		return 8
	case 0x2A: // LD A,(HL+)
		c.Regs.A = c.mmu.Read(c.Regs.HL())
		c.Regs.SetHL(c.Regs.HL() + 1)
		return 8
	case 0x3A: // LD A,(HL-)
		c.Regs.A = c.mmu.Read(c.Regs.HL())
		c.Regs.SetHL(c.Regs.HL() - 1)
		return 8
	case 0x06: // LD B,n8
		c.Regs.B = c.fetch8()
		return 8
	case 0x0E: // LD C,n8
		c.Regs.C = c.fetch8()
		return 8
	case 0x16: // LD D,n8
		c.Regs.D = c.fetch8()
		return 8
	case 0x1E: // LD E,n8
		c.Regs.E = c.fetch8()
		return 8
	case 0x26: // LD H,n8
		c.Regs.H = c.fetch8()
		return 8
	case 0x2E: // LD L,n8
		c.Regs.L = c.fetch8()
		return 8
	case 0x3E: // LD A,n8
		c.Regs.A = c.fetch8()
		return 8
	case 0x36: // LD (HL),n8
		c.mmu.Write(c.Regs.HL(), c.fetch8())
		return 12
	case 0xE0: // LDH (n8),A
		c.mmu.Write(0xFF00+uint16(c.fetch8()), c.Regs.A)
		return 12
	case 0xF0: // LDH A,(n8)
		c.Regs.A = c.mmu.Read(0xFF00 + uint16(c.fetch8()))
		return 12
	case 0xE2: // LDH (C),A
		c.mmu.Write(0xFF00+uint16(c.Regs.C), c.Regs.A)
		return 8
	case 0xF2: // LDH A,(C)
		c.Regs.A = c.mmu.Read(0xFF00 + uint16(c.Regs.C))
		return 8
	case 0xEA: // LD (n16),A
		c.mmu.Write(c.fetch16(), c.Regs.A)
		return 16
	case 0xFA: // LD A,(n16)
		c.Regs.A = c.mmu.Read(c.fetch16())
		return 16

	// --- 16-bit arithmetic (INC/DEC touch no flags) ---
	case 0x03: // INC BC
		c.Regs.SetR16(RegBC, c.Regs.R16(RegBC)+1)
		return 8
	case 0x13: // INC DE
		c.Regs.SetR16(RegDE, c.Regs.R16(RegDE)+1)
		return 8
	case 0x23: // INC HL
		c.Regs.SetHL(c.Regs.HL() + 1)
		return 8
	case 0x33: // INC SP
		c.Regs.SP++
		return 8
	case 0x0B: // DEC BC
		c.Regs.SetR16(RegBC, c.Regs.R16(RegBC)-1)
		return 8
	case 0x1B: // DEC DE
		c.Regs.SetR16(RegDE, c.Regs.R16(RegDE)-1)
		return 8
	case 0x2B: // DEC HL
		c.Regs.SetHL(c.Regs.HL() - 1)
		return 8
	case 0x3B: // DEC SP
		c.Regs.SP--
		return 8
	case 0x09: // ADD HL,BC
		c.aluAddHL(c.Regs.R16(RegBC))
		return 8
	case 0x19: // ADD HL,DE
		c.aluAddHL(c.Regs.R16(RegDE))
		return 8
	case 0x29: // ADD HL,HL
		c.aluAddHL(c.Regs.HL())
		return 8
	case 0x39: // ADD HL,SP
		c.aluAddHL(c.Regs.SP)
		return 8
	case 0xE8: // ADD SP,e8
		c.Regs.SP = c.aluAddSP(int8(c.fetch8()))
		return 16

	// --- 8-bit increment/decrement ---
	case 0x04: // INC B
		c.Regs.B = c.aluInc(c.Regs.B)
		return 4
	case 0x0C: // INC C
		c.Regs.C = c.aluInc(c.Regs.C)
		return 4
	case 0x14: // INC D
		c.Regs.D = c.aluInc(c.Regs.D)
		return 4
	case 0x1C: // INC E
		c.Regs.E = c.aluInc(c.Regs.E)
		return 4
	case 0x24: // INC H
		c.Regs.H = c.aluInc(c.Regs.H)
		return 4
	case 0x2C: // INC L
		c.Regs.L = c.aluInc(c.Regs.L)
		return 4
	case 0x3C: // INC A
		c.Regs.A = c.aluInc(c.Regs.A)
		return 4
	case 0x34: // INC (HL)
		c.mmu.Write(c.Regs.HL(), c.aluInc(c.mmu.Read(c.Regs.HL())))
		return 12
	case 0x05: // DEC B
		c.Regs.B = c.aluDec(c.Regs.B)
		return 4
	case 0x0D: // DEC C
		c.Regs.C = c.aluDec(c.Regs.C)
		return 4
	case 0x15: // DEC D
		c.Regs.D = c.aluDec(c.Regs.D)
		return 4
	case 0x1D: // DEC E
		c.Regs.E = c.aluDec(c.Regs.E)
		return 4
	case 0x25: // DEC H
		c.Regs.H = c.aluDec(c.Regs.H)
		return 4
	case 0x2D: // DEC L
		c.Regs.L = c.aluDec(c.Regs.L)
		return 4
	case 0x3D: // DEC A
		c.Regs.A = c.aluDec(c.Regs.A)
		return 4
	case 0x35: // DEC (HL)
		c.mmu.Write(c.Regs.HL(), c.aluDec(c.mmu.Read(c.Regs.HL())))
		return 12

	// --- ALU with immediate operand ---
	case 0xC6: // ADD A,n8
		c.aluAdd(c.fetch8(), false)
		return 8
	case 0xCE: // ADC A,n8
		c.aluAdd(c.fetch8(), c.Regs.Flag(FlagC))
		return 8
	case 0xD6: // SUB A,n8
		c.aluSub(c.fetch8(), false)
		return 8
	case 0xDE: // SBC A,n8
		c.aluSub(c.fetch8(), c.Regs.Flag(FlagC))
		return 8
	case 0xE6: // AND A,n8
		c.aluAnd(c.fetch8())
		return 8
	case 0xEE: // XOR A,n8
		c.aluXor(c.fetch8())
		return 8
	case 0xF6: // OR A,n8
		c.aluOr(c.fetch8())
		return 8
	case 0xFE: // CP A,n8
		c.aluCp(c.fetch8())
		return 8

	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		panic(fmt.Sprintf("illegal opcode 0x%02X at PC 0x%04X", opcode, c.Regs.PC-1))
	default:
		panic(fmt.Sprintf("unhandled opcode 0x%02X at PC 0x%04X", opcode, c.Regs.PC-1))
	}
}

// aluAccumulatorOp dispatches one of the eight A-register ALU operations in
// opcode-row order: ADD, ADC, SUB, SBC, AND, XOR, OR, CP.
func (c *CPU) aluAccumulatorOp(op, value uint8) {
	switch op {
	case 0:
		c.aluAdd(value, false)
	case 1:
		c.aluAdd(value, c.Regs.Flag(FlagC))
	case 2:
		c.aluSub(value, false)
	case 3:
		c.aluSub(value, c.Regs.Flag(FlagC))
	case 4:
		c.aluAnd(value)
	case 5:
		c.aluXor(value)
	case 6:
		c.aluOr(value)
	default:
		c.aluCp(value)
	}
}

func (c *CPU) jrCond(cond condition) int {
	offset := int8(c.fetch8())
	if !c.checkCond(cond) {
		return 8
	}
	c.Regs.PC += uint16(int16(offset))
	return 12
}

func (c *CPU) jpCond(cond condition) int {
	target := c.fetch16()
	if !c.checkCond(cond) {
		return 12
	}
	c.Regs.PC = target
	return 16
}

func (c *CPU) callCond(cond condition) int {
	target := c.fetch16()
	if !c.checkCond(cond) {
		return 12
	}
	c.pushStack(c.Regs.PC)
	c.Regs.PC = target
	return 24
}

func (c *CPU) retCond(cond condition) int {
	if !c.checkCond(cond) {
		return 8
	}
	c.Regs.PC = c.popStack()
	return 20
}
