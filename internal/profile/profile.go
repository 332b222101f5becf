// Package profile describes driver profiles: the per player constants that
// parameterize the relocation engine. The engine itself carries no compiled
// in target constants, every layout is a profile value constructed per job.
package profile

import (
	"fmt"
	"sort"

	"github.com/retroenv/sidgoreloc/internal/memory"
	"github.com/retroenv/sidgoreloc/internal/patch"
	"github.com/retroenv/sidgoreloc/internal/relocate"
	"github.com/retroenv/sidgoreloc/internal/table"
)

// Conversion describes one table reshaping of a profile. All addresses are
// offsets relative to the load address of the player.
//
// A SplitArrays target occupies stride + run length bytes, more than the
// source table when the stride carries padding. The extra bytes behind the
// table must be a free (zero) window in the player binary, the reshaping
// claims them for the second field run.
type Conversion struct {
	Table      table.Descriptor // Address holds the offset from the load address
	Target     table.Layout
	DestOffset uint16
	Stride     int
}

// PointerFixup is a patch template for a pointer the generic scan cannot
// classify. Offsets and pointer values are relative to the load address and
// resolved against the actual base addresses when the job is built.
type PointerFixup struct {
	Offset   uint16 // location of the 2-byte pointer, relative to load
	OldValue uint16 // expected pointer value, relative to load
	NewValue uint16 // replacement value, relative to the destination base
}

// Profile bundles the constants of one player implementation, derived from
// static analysis of that player binary.
type Profile struct {
	Name        string
	Description string

	// code window, offsets relative to the load address
	CodeStart uint16
	CodeEnd   uint16

	ZeroPageBase byte // zero page window the player uses as shipped

	InitOffset uint16 // init entry point, relative to the base address
	PlayOffset uint16 // play entry point, relative to the base address

	Conversions []Conversion
	Fixups      []PointerFixup

	// reposition scan limit: how far past the declared regions trailing
	// non-zero bytes are considered part of the occupied span
	SafetyLimit int
}

// Plan is the fully resolved engine entry configuration for one job.
type Plan struct {
	Region      relocate.Region
	Tables      []Conversion // Table.Address and DestOffset resolved to absolute
	Patches     []patch.Pointer
	Destination uint16
	InitAddress uint16 // destination based
	PlayAddress uint16
	SafetyLimit int
}

// Build resolves the profile against the actual load address and payload
// end, the requested destination address and the requested target zero page
// base. Profiles without a declared code window end treat the whole payload
// as the code window.
func (p *Profile) Build(loadAddress uint16, payloadEnd int, destination uint16, targetZeroPage byte) (*Plan, error) {
	codeEnd := int(loadAddress) + int(p.CodeEnd)
	if p.CodeEnd == 0 {
		codeEnd = payloadEnd
	}
	if codeEnd > memory.Size {
		return nil, fmt.Errorf("profile %s: code window end $%X outside the address space", p.Name, codeEnd)
	}
	if int(loadAddress)+int(p.CodeStart) >= codeEnd {
		return nil, fmt.Errorf("profile %s declares an empty code window", p.Name)
	}

	delta := int(destination) - int(loadAddress)

	plan := &Plan{
		Region: relocate.Region{
			Start:              loadAddress + p.CodeStart,
			End:                codeEnd,
			ZeroPageBase:       p.ZeroPageBase,
			TargetZeroPageBase: targetZeroPage,
			Delta:              delta,
		},
		Destination: destination,
		InitAddress: destination + p.InitOffset,
		PlayAddress: destination + p.PlayOffset,
		SafetyLimit: p.SafetyLimit,
	}

	for _, conv := range p.Conversions {
		resolved := conv
		resolved.Table.Address = loadAddress + conv.Table.Address
		resolved.DestOffset = loadAddress + conv.DestOffset
		plan.Tables = append(plan.Tables, resolved)
	}

	for _, fix := range p.Fixups {
		oldValue := loadAddress + fix.OldValue
		newValue := destination + fix.NewValue
		plan.Patches = append(plan.Patches, patch.Pointer{
			Offset: loadAddress + fix.Offset,
			OldLo:  byte(oldValue),
			OldHi:  byte(oldValue >> 8),
			NewLo:  byte(newValue),
			NewHi:  byte(newValue >> 8),
		})
	}

	return plan, nil
}

// registry of the built in player profiles. Table dimensions, patch offsets
// and entry points come from static analysis of the respective player
// binaries.
var registry = map[string]*Profile{
	"generic": {
		Name:         "generic",
		Description:  "whole payload is one code window, no table reshaping",
		CodeStart:    0x0000,
		CodeEnd:      0x0000, // filled per job from the payload size
		ZeroPageBase: 0x02,
		InitOffset:   0x0000,
		PlayOffset:   0x0003,
		SafetyLimit:  0x0100,
	},
	"gt2": {
		Name:         "gt2",
		Description:  "GoatTracker v2 player, wave/note table split into parallel runs",
		CodeStart:    0x0000,
		CodeEnd:      0x0900,
		ZeroPageBase: 0x02,
		InitOffset:   0x0000,
		PlayOffset:   0x0003,
		Conversions: []Conversion{
			{
				Table:      table.Descriptor{Address: 0x0900, Rows: 32, Cols: 2, EntryWidth: 1, Layout: table.InterleavedPairs},
				Target:     table.SplitArrays,
				DestOffset: 0x0900,
				Stride:     50,
			},
		},
		Fixups: []PointerFixup{
			// song data pointer stored behind the reshaped table
			{Offset: 0x0960, OldValue: 0x0980, NewValue: 0x0980},
		},
		SafetyLimit: 0x0200,
	},
	"jch20": {
		Name:         "jch20",
		Description:  "JCH NewPlayer v20, instrument matrix stored column-major",
		CodeStart:    0x0000,
		CodeEnd:      0x0A00,
		ZeroPageBase: 0xFB,
		InitOffset:   0x0000,
		PlayOffset:   0x0006,
		Conversions: []Conversion{
			{
				Table:      table.Descriptor{Address: 0x0A00, Rows: 16, Cols: 8, EntryWidth: 1, Layout: table.ColumnMajor},
				Target:     table.RowMajor,
				DestOffset: 0x0A00,
			},
		},
		SafetyLimit: 0x0200,
	},
}

// Lookup returns the named profile.
func Lookup(name string) (*Profile, error) {
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile '%s'", name)
	}
	return p, nil
}

// Names returns the names of all registered profiles, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
