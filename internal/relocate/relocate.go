// Package relocate rewrites absolute addresses and zero page references in
// a 6502 code region that moves to a new base address.
package relocate

import (
	"fmt"

	"github.com/retroenv/sidgoreloc/internal/memory"
	"github.com/retroenv/sidgoreloc/internal/opcode"
)

// Protected window of hardware registers and memory mapped I/O, $D000-$DFFF.
// Absolute operands in this window keep their physical address regardless of
// where the code moves, relocating them would break sound generation.
const (
	ProtectedStart = 0xD000
	ProtectedEnd   = 0xDFFF
)

// DecodeError indicates that scanning the declared code window did not land
// exactly on its end boundary. The window does not align with a real
// instruction boundary and the job must abort instead of guessing.
type DecodeError struct {
	Address uint16 // address of the instruction that crossed the boundary
	End     int
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("instruction at $%04X crosses the region end $%04X", e.Address, e.End)
}

// Region describes one contiguous code window to scan. The exclusive end is
// an int so a window reaching the top of the address space can be described.
type Region struct {
	Start uint16
	End   int // exclusive, must fall on an instruction boundary

	ZeroPageBase       byte // zero page window the code currently uses
	TargetZeroPageBase byte // zero page window it is rebased to

	Delta int // signed offset added to every non-protected absolute address
}

// Counts reports the rewrites performed in one region.
type Counts struct {
	Absolute int
	ZeroPage int
}

// Run scans the region instruction by instruction and rewrites operands in
// place. Absolute operands inside the protected window are left untouched.
func Run(img *memory.Image, region Region) (Counts, error) {
	var counts Counts

	if int(region.Start) >= region.End || region.End > memory.Size {
		return counts, fmt.Errorf("invalid region $%04X-$%04X", region.Start, region.End)
	}

	pc := int(region.Start)
	end := region.End

	for pc < end {
		op := img.Byte(uint16(pc))
		size := opcode.Size(op)
		mode := opcode.Mode(op)

		if pc+size > end {
			return counts, DecodeError{Address: uint16(pc), End: region.End}
		}

		switch {
		case opcode.TouchesAbsolute(mode):
			operand, err := img.Word(uint16(pc + 1))
			if err != nil {
				return counts, fmt.Errorf("reading operand at $%04X: %w", pc+1, err)
			}
			if operand < ProtectedStart || operand > ProtectedEnd {
				relocated := uint16(int(operand) + region.Delta)
				if err := img.SetWord(uint16(pc+1), relocated); err != nil {
					return counts, fmt.Errorf("writing operand at $%04X: %w", pc+1, err)
				}
				counts.Absolute++
			}

		case opcode.TouchesZeroPage(mode):
			operand := img.Byte(uint16(pc + 1))
			offset := operand - region.ZeroPageBase
			img.SetByte(uint16(pc+1), region.TargetZeroPageBase+offset)
			counts.ZeroPage++
		}

		pc += size
	}

	return counts, nil
}
