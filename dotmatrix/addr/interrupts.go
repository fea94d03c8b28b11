package addr

// Interrupt identifies one of the five interrupt sources. The value is the
// bit index of the source in the IE and IF registers.
type Interrupt uint8

const (
	// VBlankInterrupt is raised when the PPU enters vertical blank.
	VBlankInterrupt Interrupt = 0
	// LCDSTATInterrupt is raised based on one of the selects in the STAT register.
	LCDSTATInterrupt Interrupt = 1
	// TimerInterrupt is raised when the timer counter (TIMA) overflows.
	TimerInterrupt Interrupt = 2
	// SerialInterrupt is raised when a serial transfer completes.
	SerialInterrupt Interrupt = 3
	// JoypadInterrupt is raised when a joypad input goes from high to low.
	JoypadInterrupt Interrupt = 4
)

// InterruptPriority lists the sources in the fixed order the CPU services them.
var InterruptPriority = [5]Interrupt{
	VBlankInterrupt,
	LCDSTATInterrupt,
	TimerInterrupt,
	SerialInterrupt,
	JoypadInterrupt,
}

// Handler returns the fixed address of the source's interrupt handler.
func (i Interrupt) Handler() uint16 {
	return 0x40 + uint16(i)*8
}

// InterruptSet is a set of interrupt sources, packed the same way the IE and
// IF registers pack them. Only the low 5 bits are ever populated.
type InterruptSet uint8

const interruptMask = 0x1F

// InterruptSetFromByte truncates a register byte down to the five valid bits.
func InterruptSetFromByte(b uint8) InterruptSet {
	return InterruptSet(b & interruptMask)
}

// ToByte returns the memory representation of the set. The unused high bits
// read back as 0.
func (s InterruptSet) ToByte() uint8 {
	return uint8(s) & interruptMask
}

// Contains reports whether the source is in the set.
func (s InterruptSet) Contains(i Interrupt) bool {
	return s&(1<<i) != 0
}

// Add returns the set with the source included.
func (s InterruptSet) Add(i Interrupt) InterruptSet {
	return s | (1 << i)
}

// Remove returns the set with the source excluded.
func (s InterruptSet) Remove(i Interrupt) InterruptSet {
	return s &^ (1 << i)
}

// Union returns the sources present in either set.
func (s InterruptSet) Union(other InterruptSet) InterruptSet {
	return s | other
}

// Intersect returns the sources present in both sets.
func (s InterruptSet) Intersect(other InterruptSet) InterruptSet {
	return s & other
}

// Empty reports whether no source is present.
func (s InterruptSet) Empty() bool {
	return s == 0
}
