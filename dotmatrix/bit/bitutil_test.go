package bit

import "testing"

func TestCombine(t *testing.T) {
	if got := Combine(0x12, 0x34); got != 0x1234 {
		t.Errorf("Combine(0x12, 0x34) = 0x%04X; want 0x1234", got)
	}
}

func TestSetResetIsSet(t *testing.T) {
	var b uint8
	for i := uint8(0); i < 8; i++ {
		b = Set(i, b)
		if !IsSet(i, b) {
			t.Errorf("bit %d not set after Set", i)
		}
		b = Reset(i, b)
		if IsSet(i, b) {
			t.Errorf("bit %d still set after Reset", i)
		}
	}
}

func TestSetTo(t *testing.T) {
	if got := SetTo(3, 0x00, true); got != 0x08 {
		t.Errorf("SetTo(3, 0, true) = 0x%02X; want 0x08", got)
	}
	if got := SetTo(3, 0xFF, false); got != 0xF7 {
		t.Errorf("SetTo(3, 0xFF, false) = 0x%02X; want 0xF7", got)
	}
}

func TestHighLow(t *testing.T) {
	if High(0xABCD) != 0xAB || Low(0xABCD) != 0xCD {
		t.Errorf("High/Low of 0xABCD = 0x%02X/0x%02X", High(0xABCD), Low(0xABCD))
	}
	// round trip
	for _, v := range []uint16{0x0000, 0x0001, 0x8000, 0xFFFF, 0x1234} {
		if Combine(High(v), Low(v)) != v {
			t.Errorf("Combine(High, Low) round trip failed for 0x%04X", v)
		}
	}
}
