package cpu

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// sm83State mirrors the CPU + RAM state encoding of the SingleStepTests
// "sm83/v1" fixtures.
type sm83State struct {
	A   uint8       `json:"a"`
	B   uint8       `json:"b"`
	C   uint8       `json:"c"`
	D   uint8       `json:"d"`
	E   uint8       `json:"e"`
	F   uint8       `json:"f"`
	H   uint8       `json:"h"`
	L   uint8       `json:"l"`
	PC  uint16      `json:"pc"`
	SP  uint16      `json:"sp"`
	RAM [][2]uint16 `json:"ram"`
}

type sm83Case struct {
	Name    string    `json:"name"`
	Initial sm83State `json:"initial"`
	Final   sm83State `json:"final"`
}

const sm83FixtureDir = "testdata/sm83/v1"

// TestSM83Conformance runs every SingleStepTests fixture found under
// testdata/sm83/v1 (one JSON file per opcode): load the initial CPU and RAM
// state, step once, compare everything. The STOP (10.json) and HALT
// (76.json) files are exempt.
//
// The fixtures are not vendored; the test skips when the directory is
// missing. Fetch them from https://github.com/SingleStepTests/sm83.
func TestSM83Conformance(t *testing.T) {
	entries, err := os.ReadDir(sm83FixtureDir)
	if os.IsNotExist(err) {
		t.Skipf("sm83 fixtures not present under %s", sm83FixtureDir)
	}
	require.NoError(t, err)

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if name == "10.json" || name == "76.json" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(sm83FixtureDir, name))
			require.NoError(t, err)

			var cases []sm83Case
			require.NoError(t, json.Unmarshal(data, &cases))

			for _, tc := range cases {
				c, mem := cpuFromState(tc.Initial)
				c.Step()
				if err := verifyState(c, mem, tc.Final); err != nil {
					t.Fatalf("case %q: %v", tc.Name, err)
				}
			}
		})
	}
}

func cpuFromState(state sm83State) (*CPU, *flatMemory) {
	mem := &flatMemory{}
	c := New(mem)
	c.Regs.A = state.A
	c.Regs.F = state.F
	c.Regs.B = state.B
	c.Regs.C = state.C
	c.Regs.D = state.D
	c.Regs.E = state.E
	c.Regs.H = state.H
	c.Regs.L = state.L
	c.Regs.PC = state.PC
	c.Regs.SP = state.SP
	for _, cell := range state.RAM {
		mem.memory[cell[0]] = uint8(cell[1])
	}
	return c, mem
}

func verifyState(c *CPU, mem *flatMemory, want sm83State) error {
	regs := []struct {
		name string
		got  uint16
		want uint16
	}{
		{"A", uint16(c.Regs.A), uint16(want.A)},
		{"F", uint16(c.Regs.F), uint16(want.F)},
		{"B", uint16(c.Regs.B), uint16(want.B)},
		{"C", uint16(c.Regs.C), uint16(want.C)},
		{"D", uint16(c.Regs.D), uint16(want.D)},
		{"E", uint16(c.Regs.E), uint16(want.E)},
		{"H", uint16(c.Regs.H), uint16(want.H)},
		{"L", uint16(c.Regs.L), uint16(want.L)},
		{"PC", c.Regs.PC, want.PC},
		{"SP", c.Regs.SP, want.SP},
	}
	for _, reg := range regs {
		if reg.got != reg.want {
			return fmt.Errorf("register %s = 0x%04X; want 0x%04X", reg.name, reg.got, reg.want)
		}
	}
	for _, cell := range want.RAM {
		if got := mem.memory[cell[0]]; got != uint8(cell[1]) {
			return fmt.Errorf("RAM[0x%04X] = 0x%02X; want 0x%02X", cell[0], got, cell[1])
		}
	}
	return nil
}
