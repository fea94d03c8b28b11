package memory

// Frequency is one of the four tick rates the timer can run at.
type Frequency uint8

const (
	Freq4KiHz Frequency = iota
	Freq16KiHz
	Freq64KiHz
	Freq256KiHz
)

// CyclesPerTick expresses the frequency as T-cycles of the 4 MiHz system
// clock per counter increment.
func (f Frequency) CyclesPerTick() int {
	switch f {
	case Freq4KiHz:
		return 1024
	case Freq16KiHz:
		return 256
	case Freq64KiHz:
		return 64
	default: // Freq256KiHz
		return 16
	}
}

// FrequencyFromTAC decodes the low two bits of the TAC register.
func FrequencyFromTAC(bits uint8) Frequency {
	switch bits & 0x03 {
	case 0x00:
		return Freq4KiHz
	case 0x01:
		return Freq256KiHz
	case 0x02:
		return Freq64KiHz
	default:
		return Freq16KiHz
	}
}

// ToTACBits encodes the frequency back into the TAC representation.
func (f Frequency) ToTACBits() uint8 {
	switch f {
	case Freq4KiHz:
		return 0x00
	case Freq256KiHz:
		return 0x01
	case Freq64KiHz:
		return 0x02
	default: // Freq16KiHz
		return 0x03
	}
}

// Counter is a free-running 8-bit counter clocked off the system clock. Both
// the timer (TIMA) and the divider (DIV) are instances; the divider is always
// enabled at 16 KiHz and keeps its reload value at zero.
type Counter struct {
	Frequency Frequency
	Enabled   bool
	Value     uint8
	// Reload is copied into Value when the counter overflows (TMA for the
	// timer, always zero for the divider).
	Reload uint8
	// Accumulator counts T-cycles toward the next tick. Residues carry over.
	Accumulator int
}

// NewTimer returns the disabled 4 KiHz timer the machine powers on with.
func NewTimer() Counter {
	return Counter{Frequency: Freq4KiHz}
}

// NewDivider returns the always-running divider.
func NewDivider() Counter {
	return Counter{Frequency: Freq16KiHz, Enabled: true}
}

// Update advances the counter by the given T-cycles and reports whether it
// overflowed (wrapped 0xFF -> 0x00). On overflow the value restarts from
// Reload.
func (c *Counter) Update(tCycles int) bool {
	if !c.Enabled {
		return false
	}
	overflowed := false
	c.Accumulator += tCycles
	for c.Accumulator >= c.Frequency.CyclesPerTick() {
		c.Accumulator -= c.Frequency.CyclesPerTick()
		c.Value++
		if c.Value == 0 {
			c.Value = c.Reload
			overflowed = true
		}
	}
	return overflowed
}

// Reset clears the counter value and its cycle accumulator. Writing any byte
// to the divider's address does this.
func (c *Counter) Reset() {
	c.Value = 0
	c.Accumulator = 0
}
