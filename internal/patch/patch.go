// Package patch applies verified byte level fixups for pointers that the
// generic code scan cannot safely classify, like a pointer embedded inside
// a data table.
package patch

import (
	"fmt"

	"github.com/retroenv/sidgoreloc/internal/memory"
)

// VerificationError indicates that the bytes found in memory do not match
// the expected old bytes of a patch. The patch table was derived for a
// different binary layout than the one present, continuing would silently
// corrupt unrelated data.
type VerificationError struct {
	Offset         uint16
	WantLo, WantHi byte
	GotLo, GotHi   byte
}

func (e VerificationError) Error() string {
	return fmt.Sprintf("patch at $%04X expects bytes $%02X $%02X but found $%02X $%02X",
		e.Offset, e.WantLo, e.WantHi, e.GotLo, e.GotHi)
}

// Pointer is a single verified 2-byte overwrite. The write only occurs if
// both old bytes match memory exactly.
type Pointer struct {
	Offset uint16
	OldLo  byte
	OldHi  byte
	NewLo  byte
	NewHi  byte
}

// Apply applies the patches in order. On the first verification mismatch it
// stops, leaves the offending bytes unchanged and applies no further
// patches. It returns the number of patches applied.
func Apply(img *memory.Image, patches []Pointer) (int, error) {
	for i, p := range patches {
		gotLo := img.Byte(p.Offset)
		gotHi := img.Byte(p.Offset + 1)
		if gotLo != p.OldLo || gotHi != p.OldHi {
			return i, VerificationError{
				Offset: p.Offset,
				WantLo: p.OldLo, WantHi: p.OldHi,
				GotLo: gotLo, GotHi: gotHi,
			}
		}

		img.SetByte(p.Offset, p.NewLo)
		img.SetByte(p.Offset+1, p.NewHi)
	}
	return len(patches), nil
}
