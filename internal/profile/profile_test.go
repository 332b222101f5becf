package profile

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/sidgoreloc/internal/table"
)

func TestLookup(t *testing.T) {
	p, err := Lookup("gt2")
	assert.NoError(t, err)
	assert.Equal(t, "gt2", p.Name)

	_, err = Lookup("nope")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"generic", "gt2", "jch20"}, names)
}

func TestBuildResolvesAddresses(t *testing.T) {
	p, err := Lookup("gt2")
	assert.NoError(t, err)

	plan, err := p.Build(0x1000, 0x1C00, 0x0E00, 0xFC)
	assert.NoError(t, err)

	assert.Equal(t, uint16(0x1000), plan.Region.Start)
	assert.Equal(t, 0x1900, plan.Region.End)
	assert.Equal(t, byte(0x02), plan.Region.ZeroPageBase)
	assert.Equal(t, byte(0xFC), plan.Region.TargetZeroPageBase)
	assert.Equal(t, -0x0200, plan.Region.Delta)

	assert.Equal(t, uint16(0x0E00), plan.Destination)
	assert.Equal(t, uint16(0x0E00), plan.InitAddress)
	assert.Equal(t, uint16(0x0E03), plan.PlayAddress)

	assert.Len(t, plan.Tables, 1)
	assert.Equal(t, uint16(0x1900), plan.Tables[0].Table.Address)
	assert.Equal(t, table.SplitArrays, plan.Tables[0].Target)

	assert.Len(t, plan.Patches, 1)
	assert.Equal(t, uint16(0x1960), plan.Patches[0].Offset)
	assert.Equal(t, byte(0x80), plan.Patches[0].OldLo)
	assert.Equal(t, byte(0x19), plan.Patches[0].OldHi)
	assert.Equal(t, byte(0x80), plan.Patches[0].NewLo)
	assert.Equal(t, byte(0x17), plan.Patches[0].NewHi)
}

func TestBuildGenericUsesPayloadEnd(t *testing.T) {
	p, err := Lookup("generic")
	assert.NoError(t, err)

	plan, err := p.Build(0x1000, 0x1234, 0x2000, 0x02)
	assert.NoError(t, err)
	assert.Equal(t, 0x1234, plan.Region.End)
}

func TestBuildWindowAtTopOfMemory(t *testing.T) {
	p, err := Lookup("generic")
	assert.NoError(t, err)

	plan, err := p.Build(0xF000, 0x10000, 0x1000, 0x02)
	assert.NoError(t, err)
	assert.Equal(t, 0x10000, plan.Region.End)
}

func TestBuildEmptyWindow(t *testing.T) {
	p := &Profile{Name: "empty", CodeStart: 0x100, CodeEnd: 0x100}

	_, err := p.Build(0x1000, 0x2000, 0x2000, 0x02)
	assert.Error(t, err)
}
