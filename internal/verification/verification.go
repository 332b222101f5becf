// Package verification verifies a conversion by running the inverse
// transform on the output and comparing it against the input.
package verification

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sidgoreloc/internal/container"
	"github.com/retroenv/sidgoreloc/internal/options"
	"github.com/retroenv/sidgoreloc/internal/pipeline"
	"github.com/retroenv/sidgoreloc/internal/profile"
)

// VerifyOutput relocates the output container back to the input's load
// address and zero page window and checks that this recreates the exact
// input bytes. An operand that the forward conversion moved into the
// protected hardware window can not be shifted back and shows up here as a
// byte mismatch.
func VerifyOutput(logger *log.Logger, prof *profile.Profile, input, output *container.Container,
	opts options.Job) error {

	reversed := reverseProfile(prof, opts.ZeroPage)
	reverseOpts := options.Job{
		Destination: input.LoadAddress,
		ZeroPage:    prof.ZeroPageBase,
	}

	job, err := pipeline.New(logger, output, reversed, reverseOpts)
	if err != nil {
		return fmt.Errorf("creating reverse job: %w", err)
	}
	restored, _, err := job.Run()
	if err != nil {
		return fmt.Errorf("running reverse job: %w", err)
	}

	if err := checkBufferEqual(logger, input.Payload, restored.Payload); err != nil {
		return fmt.Errorf("comparing restored bytes: %w", err)
	}
	return nil
}

// reverseProfile builds the profile of the inverse transform: the same code
// window, each table conversion turned around and each pointer fixup with
// its old and new values swapped.
func reverseProfile(p *profile.Profile, targetZeroPage byte) *profile.Profile {
	reversed := &profile.Profile{
		Name:         p.Name + "-reverse",
		CodeStart:    p.CodeStart,
		CodeEnd:      p.CodeEnd,
		ZeroPageBase: targetZeroPage,
		InitOffset:   p.InitOffset,
		PlayOffset:   p.PlayOffset,
		SafetyLimit:  p.SafetyLimit,
	}

	for _, conv := range p.Conversions {
		desc := conv.Table
		desc.Address = conv.DestOffset
		desc.Layout = conv.Target
		reversed.Conversions = append(reversed.Conversions, profile.Conversion{
			Table:      desc,
			Target:     conv.Table.Layout,
			DestOffset: conv.Table.Address,
			Stride:     conv.Stride,
		})
	}

	for _, fix := range p.Fixups {
		reversed.Fixups = append(reversed.Fixups, profile.PointerFixup{
			Offset:   fix.Offset,
			OldValue: fix.NewValue,
			NewValue: fix.OldValue,
		})
	}
	return reversed
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs int
	firstDiff := -1
	for i := range input {
		if input[i] == output[i] {
			continue
		}
		diffs++
		if firstDiff == -1 {
			firstDiff = i
		}
		if diffs <= 8 {
			logger.Debug("Byte difference",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches, first at offset %d", diffs, firstDiff)
}
