// Package opcode provides a complete 6502 instruction length and addressing
// mode table for the relocation scanner.
package opcode

import (
	"github.com/retroenv/retrogolib/arch/cpu/m6502"
)

// Descriptor describes one instruction byte: its total encoded length
// including the opcode byte and its operand addressing mode.
type Descriptor struct {
	Size int
	Mode m6502.AddressingMode
}

// table covers all 256 opcode byte values. The scanner has no other way to
// know how many bytes to skip, so there are no gaps: the instruction set
// defines every byte value, undocumented instructions with their NMOS 6510
// decode and jam opcodes as 1-byte implied entries.
var table = buildTable()

// Size returns the total encoded length of the instruction, 1 to 3 bytes.
func Size(op byte) int {
	return table[op].Size
}

// Mode returns the addressing mode of the instruction.
func Mode(op byte) m6502.AddressingMode {
	return table[op].Mode
}

// TouchesAbsolute returns whether the mode embeds a 2-byte absolute address
// in the instruction stream.
func TouchesAbsolute(mode m6502.AddressingMode) bool {
	switch mode {
	case m6502.AbsoluteAddressing, m6502.AbsoluteXAddressing,
		m6502.AbsoluteYAddressing, m6502.IndirectAddressing:
		return true
	default:
		return false
	}
}

// TouchesZeroPage returns whether the mode embeds a 1-byte zero page
// variable reference in the instruction stream.
func TouchesZeroPage(mode m6502.AddressingMode) bool {
	switch mode {
	case m6502.ZeroPageAddressing, m6502.ZeroPageXAddressing,
		m6502.ZeroPageYAddressing, m6502.IndirectXAddressing,
		m6502.IndirectYAddressing:
		return true
	default:
		return false
	}
}

func buildTable() [256]Descriptor {
	var t [256]Descriptor
	for i := range t {
		info := m6502.Opcodes[i]
		t[i] = Descriptor{
			Size: 1 + operandSize(info.Addressing),
			Mode: info.Addressing,
		}
	}
	return t
}

func operandSize(mode m6502.AddressingMode) int {
	switch mode {
	case m6502.AbsoluteAddressing, m6502.AbsoluteXAddressing,
		m6502.AbsoluteYAddressing, m6502.IndirectAddressing:
		return 2
	case m6502.ImmediateAddressing, m6502.RelativeAddressing,
		m6502.ZeroPageAddressing, m6502.ZeroPageXAddressing,
		m6502.ZeroPageYAddressing, m6502.IndirectXAddressing,
		m6502.IndirectYAddressing:
		return 1
	default:
		return 0
	}
}
