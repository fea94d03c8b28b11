package cpu

import (
	"fmt"

	"github.com/valerio/go-dotmatrix/dotmatrix/addr"
	"github.com/valerio/go-dotmatrix/dotmatrix/bit"
)

// IMEState is the state of the interrupt master enable switch.
//
// EI does not enable interrupts immediately: it moves the switch to
// IMEPendingEnable, and the transition to IMEEnabled happens when the
// instruction after EI is dispatched.
type IMEState uint8

const (
	IMEDisabled IMEState = iota
	IMEEnabled
	IMEPendingEnable
)

// Memory is the bus surface the CPU drives. Besides byte access it exposes
// the interrupt latches and accepts the T-cycles each instruction consumed,
// which advance the rest of the machine.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Step(tCycles int)
	InterruptsEnabled() addr.InterruptSet
	InterruptsRequested() addr.InterruptSet
	ClearRequestedInterrupt(interrupt addr.Interrupt)
}

// CPU is the SM83 core: the register file, the IME machine and the
// fetch/decode/execute loop.
type CPU struct {
	Regs   Registers
	IME    IMEState
	Halted bool

	mmu Memory
}

// New returns a CPU in its power-on state attached to the given bus.
func New(mmu Memory) *CPU {
	return &CPU{
		Regs: NewRegisters(),
		IME:  IMEDisabled,
		mmu:  mmu,
	}
}

// Memory exposes the bus the CPU was built with.
func (c *CPU) Memory() Memory {
	return c.mmu
}

// Step services at most one pending interrupt, then fetches and executes a
// single instruction, advancing the rest of the machine by the T-cycles it
// consumed. It returns that T-cycle count.
func (c *CPU) Step() int {
	interruptCycles := 0
	if c.IME == IMEEnabled {
		pending := c.mmu.InterruptsRequested().Intersect(c.mmu.InterruptsEnabled())
		for _, kind := range addr.InterruptPriority {
			if !pending.Contains(kind) {
				continue
			}
			c.IME = IMEDisabled
			c.Halted = false
			c.mmu.ClearRequestedInterrupt(kind)
			c.pushStack(c.Regs.PC)
			c.Regs.PC = kind.Handler()
			c.mmu.Step(20)
			interruptCycles = 20
			break
		}
	} else if c.Halted && !c.mmu.InterruptsRequested().Intersect(c.mmu.InterruptsEnabled()).Empty() {
		// HALT wakes on a pending interrupt even with IME off, without
		// servicing it. The halt bug's PC anomaly is not emulated.
		c.Halted = false
	}

	if c.IME == IMEPendingEnable {
		c.IME = IMEEnabled
	}

	if c.Halted {
		c.mmu.Step(4)
		return 4
	}

	opcode := c.mmu.Read(c.Regs.PC)
	c.Regs.PC++
	tCycles := c.execute(opcode)
	if tCycles%4 != 0 || tCycles < 4 || tCycles > 24 {
		panic(fmt.Sprintf("opcode 0x%02X consumed an invalid cycle count: %d", opcode, tCycles))
	}
	c.mmu.Step(tCycles)

	return tCycles + interruptCycles
}

// fetch8 reads the 8-bit immediate that follows the opcode and advances PC.
func (c *CPU) fetch8() uint8 {
	value := c.mmu.Read(c.Regs.PC)
	c.Regs.PC++
	return value
}

// fetch16 reads the little-endian 16-bit immediate that follows the opcode
// and advances PC.
func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return bit.Combine(hi, lo)
}

// pushStack pushes a word, high byte first, leaving it little-endian in
// memory. SP points at the top element.
func (c *CPU) pushStack(value uint16) {
	c.Regs.SP--
	c.mmu.Write(c.Regs.SP, bit.High(value))
	c.Regs.SP--
	c.mmu.Write(c.Regs.SP, bit.Low(value))
}

// popStack pops a word, reading the low byte first.
func (c *CPU) popStack() uint16 {
	lo := c.mmu.Read(c.Regs.SP)
	c.Regs.SP++
	hi := c.mmu.Read(c.Regs.SP)
	c.Regs.SP++
	return bit.Combine(hi, lo)
}
