package pipeline

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sidgoreloc/internal/container"
	"github.com/retroenv/sidgoreloc/internal/options"
	"github.com/retroenv/sidgoreloc/internal/patch"
	"github.com/retroenv/sidgoreloc/internal/profile"
	"github.com/retroenv/sidgoreloc/internal/table"
)

// testProfile describes a minimal synthetic player: 6 bytes of code, an
// interleaved table of 4 two-field records and a 2-byte pointer into the
// code that the generic scan cannot see.
func testProfile() *profile.Profile {
	return &profile.Profile{
		Name:         "test",
		CodeStart:    0x0000,
		CodeEnd:      0x0006,
		ZeroPageBase: 0x02,
		InitOffset:   0x0000,
		PlayOffset:   0x0000,
		Conversions: []profile.Conversion{
			{
				Table:      table.Descriptor{Address: 0x0006, Rows: 4, Cols: 2, EntryWidth: 1, Layout: table.InterleavedPairs},
				Target:     table.SplitArrays,
				DestOffset: 0x0006,
				Stride:     4,
			},
		},
		Fixups: []profile.PointerFixup{
			{Offset: 0x000E, OldValue: 0x0006, NewValue: 0x0006},
		},
		SafetyLimit: 0x10,
	}
}

func testInput() *container.Container {
	return &container.Container{
		LoadAddress: 0x1000,
		Title:       "Input Title",
		Payload: []byte{
			0xA9, 0x00, // lda #$00
			0x8D, 0x10, 0x10, // sta $1010
			0x60,                   // rts
			1, 2, 3, 4, 5, 6, 7, 8, // interleaved table
			0x06, 0x10, // pointer to the table, invisible to the scan
		},
	}
}

func TestJobRun(t *testing.T) {
	logger := log.NewTestLogger(t)
	opts := options.Job{Destination: 0x2000, ZeroPage: 0xFC, Author: "New Author"}

	job, err := New(logger, testInput(), testProfile(), opts)
	assert.NoError(t, err)

	out, report, err := job.Run()
	assert.NoError(t, err)

	assert.Equal(t, uint16(0x2000), out.LoadAddress)
	assert.Equal(t, uint16(0x2000), out.InitAddress)
	assert.Equal(t, uint16(0x2000), out.PlayAddress)
	assert.Equal(t, "Input Title", out.Title)
	assert.Equal(t, "New Author", out.Author)

	assert.Equal(t, []byte{
		0xA9, 0x00,
		0x8D, 0x10, 0x20, // operand relocated to $2010
		0x60,
		1, 3, 5, 7, // split a values
		2, 4, 6, 8, // split b values
		0x06, 0x20, // patched pointer
	}, out.Payload)

	assert.Equal(t, 1, report.AbsoluteRewrites)
	assert.Equal(t, 0, report.ZeroPageRewrites)
	assert.Equal(t, 1, report.TablesTranscoded)
	assert.Equal(t, 1, report.PatchesApplied)
}

func TestJobRunKeepsProtectedAddresses(t *testing.T) {
	logger := log.NewTestLogger(t)
	input := testInput()
	input.Payload[3] = 0x18 // sta $D418
	input.Payload[4] = 0xD4
	input.Payload[14] = 0x06 // pointer unchanged
	input.Payload[15] = 0x10

	job, err := New(logger, input, testProfile(), options.Job{Destination: 0x2000, ZeroPage: 0x02})
	assert.NoError(t, err)

	out, report, err := job.Run()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x18), out.Payload[3])
	assert.Equal(t, byte(0xD4), out.Payload[4])
	assert.Equal(t, 0, report.AbsoluteRewrites)
}

func TestJobRunPatchMismatchAborts(t *testing.T) {
	logger := log.NewTestLogger(t)
	input := testInput()
	input.Payload[14] = 0x99 // pointer does not match the profile

	job, err := New(logger, input, testProfile(), options.Job{Destination: 0x2000, ZeroPage: 0x02})
	assert.NoError(t, err)

	_, _, err = job.Run()
	assert.Error(t, err)

	var stageErr StageError
	assert.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageTranscoded, stageErr.Stage)

	var verifyErr patch.VerificationError
	assert.True(t, errors.As(err, &verifyErr))
	assert.Equal(t, uint16(0x100E), verifyErr.Offset)
}

func TestJobRunBoundaryMismatchAborts(t *testing.T) {
	logger := log.NewTestLogger(t)
	prof := testProfile()
	prof.CodeEnd = 0x0004 // ends inside the sta instruction

	job, err := New(logger, testInput(), prof, options.Job{Destination: 0x2000, ZeroPage: 0x02})
	assert.NoError(t, err)

	_, _, err = job.Run()
	assert.Error(t, err)

	var stageErr StageError
	assert.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageLoaded, stageErr.Stage)
}

func TestJobRunSamePosition(t *testing.T) {
	logger := log.NewTestLogger(t)
	input := testInput()

	job, err := New(logger, input, testProfile(), options.Job{Destination: 0x1000, ZeroPage: 0x02})
	assert.NoError(t, err)

	out, _, err := job.Run()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1000), out.LoadAddress)
	assert.Equal(t, input.Payload[:6], out.Payload[:6])
}

func TestNewRejectsOversizedLoad(t *testing.T) {
	logger := log.NewTestLogger(t)
	input := &container.Container{
		LoadAddress: 0xFFF0,
		Payload:     make([]byte, 0x100),
	}

	_, err := New(logger, input, testProfile(), options.Job{Destination: 0x1000, ZeroPage: 0x02})
	assert.Error(t, err)
}
