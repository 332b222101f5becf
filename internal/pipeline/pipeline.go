// Package pipeline orchestrates one conversion job: load, relocate,
// transcode, patch, reposition and export.
package pipeline

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/sidgoreloc/internal/container"
	"github.com/retroenv/sidgoreloc/internal/memory"
	"github.com/retroenv/sidgoreloc/internal/options"
	"github.com/retroenv/sidgoreloc/internal/patch"
	"github.com/retroenv/sidgoreloc/internal/profile"
	"github.com/retroenv/sidgoreloc/internal/relocate"
	"github.com/retroenv/sidgoreloc/internal/table"
)

// Stage of the conversion pipeline. Transitions are one way, any component
// error aborts the job at its current stage.
type Stage string

const (
	StageLoaded       Stage = "loaded"
	StageRelocated    Stage = "relocated"
	StageTranscoded   Stage = "transcoded"
	StagePatched      Stage = "patched"
	StageRepositioned Stage = "repositioned"
	StageExported     Stage = "exported"
)

// StageError reports the stage at which a job failed and wraps the
// component error carrying the offending address or offset.
type StageError struct {
	Stage Stage
	Err   error
}

func (e StageError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Err)
}

func (e StageError) Unwrap() error {
	return e.Err
}

// Report summarizes the transforms performed by one job.
type Report struct {
	AbsoluteRewrites int
	ZeroPageRewrites int
	TablesTranscoded int
	PatchesApplied   int
	Warnings         []string
}

// Job converts one input container. It exclusively owns its memory image,
// jobs share no mutable state and can run in parallel across files.
type Job struct {
	logger *log.Logger
	img    *memory.Image
	input  *container.Container
	plan   *profile.Plan
	opts   options.Job

	stage  Stage
	end    int // address after the loaded payload
	report Report
}

// New creates a job for one input container, resolving the profile against
// the input's load address and the requested destination.
func New(logger *log.Logger, input *container.Container, prof *profile.Profile, opts options.Job) (*Job, error) {
	img := memory.New()
	end, err := img.Load(input.LoadAddress, input.Payload)
	if err != nil {
		return nil, StageError{Stage: StageLoaded, Err: err}
	}

	plan, err := prof.Build(input.LoadAddress, end, opts.Destination, opts.ZeroPage)
	if err != nil {
		return nil, StageError{Stage: StageLoaded, Err: err}
	}

	return &Job{
		logger: logger,
		img:    img,
		input:  input,
		plan:   plan,
		opts:   opts,
		stage:  StageLoaded,
		end:    end,
	}, nil
}

// Run drives the job through all stages and returns the exported container
// and the job report. On error the output must be treated as discarded.
func (j *Job) Run() (*container.Container, *Report, error) {
	if err := j.relocateCode(); err != nil {
		return nil, nil, err
	}
	if err := j.transcodeTables(); err != nil {
		return nil, nil, err
	}
	if err := j.applyPatches(); err != nil {
		return nil, nil, err
	}
	if err := j.reposition(); err != nil {
		return nil, nil, err
	}

	out, err := j.export()
	if err != nil {
		return nil, nil, err
	}
	return out, &j.report, nil
}

func (j *Job) relocateCode() error {
	counts, err := relocate.Run(j.img, j.plan.Region)
	if err != nil {
		return StageError{Stage: StageLoaded, Err: err}
	}
	j.report.AbsoluteRewrites = counts.Absolute
	j.report.ZeroPageRewrites = counts.ZeroPage
	j.stage = StageRelocated

	j.logger.Debug("relocated code window",
		log.Hex("start", j.plan.Region.Start),
		log.Hex("end", j.plan.Region.End),
		log.Int("absolute", counts.Absolute),
		log.Int("zeropage", counts.ZeroPage))
	return nil
}

func (j *Job) transcodeTables() error {
	for _, conv := range j.plan.Tables {
		err := table.Transcode(j.img, conv.Table, conv.Target, conv.DestOffset, conv.Stride)
		if err != nil {
			return StageError{Stage: j.stage, Err: err}
		}
		j.report.TablesTranscoded++

		j.logger.Debug("transcoded table",
			log.Hex("address", conv.Table.Address),
			log.Stringer("from", conv.Table.Layout),
			log.Stringer("to", conv.Target))
	}
	j.stage = StageTranscoded
	return nil
}

func (j *Job) applyPatches() error {
	applied, err := patch.Apply(j.img, j.plan.Patches)
	j.report.PatchesApplied = applied
	if err != nil {
		return StageError{Stage: j.stage, Err: err}
	}
	j.stage = StagePatched
	return nil
}

// reposition copies the occupied span to the destination address and
// zero-fills the vacated source span. The span covers the declared code and
// table regions, extended by trailing non-zero bytes up to the profile's
// safety limit.
func (j *Job) reposition() error {
	spanStart := j.input.LoadAddress
	if j.plan.Region.Start < spanStart {
		spanStart = j.plan.Region.Start
	}
	declaredEnd, spanEnd := j.occupiedEnd()
	if spanEnd > declaredEnd {
		j.report.Warnings = append(j.report.Warnings,
			fmt.Sprintf("trailing non-zero bytes extend the occupied span from $%04X to $%04X",
				declaredEnd, spanEnd))
	}

	length := spanEnd - int(spanStart)
	if j.plan.Destination != spanStart {
		if int(j.plan.Destination)+length > memory.Size {
			return StageError{Stage: j.stage, Err: memory.BoundsError{
				Start: j.plan.Destination,
				End:   int(j.plan.Destination) + length - 1,
			}}
		}
		if err := j.img.Move(spanStart, j.plan.Destination, length); err != nil {
			return StageError{Stage: j.stage, Err: err}
		}
	}
	j.end = int(j.plan.Destination) + length
	j.stage = StageRepositioned

	j.logger.Debug("repositioned span",
		log.Hex("from", spanStart),
		log.Hex("to", j.plan.Destination),
		log.Int("length", length))
	return nil
}

// occupiedEnd computes the end of the occupied span: the end of the
// declared regions and the end after extending it by trailing non-zero
// bytes within the safety limit.
func (j *Job) occupiedEnd() (int, int) {
	end := j.plan.Region.End
	if j.end > end {
		end = j.end
	}
	for _, conv := range j.plan.Tables {
		tableEnd := int(conv.DestOffset) + conv.Table.Size()
		if conv.Target == table.SplitArrays {
			tableEnd = int(conv.DestOffset) + conv.Stride + conv.Table.Size()/2
		}
		if tableEnd > end {
			end = tableEnd
		}
	}

	limit := end + j.plan.SafetyLimit
	if limit > memory.Size {
		limit = memory.Size
	}
	for i := limit - 1; i >= end; i-- {
		if j.img.Byte(uint16(i)) != 0 {
			return end, i + 1
		}
	}
	return end, end
}

// export builds a brand new container from the destination window. The
// output never aliases the image storage.
func (j *Job) export() (*container.Container, error) {
	payload, err := j.img.CopyRange(j.plan.Destination, j.end)
	if err != nil {
		return nil, StageError{Stage: j.stage, Err: err}
	}

	out := &container.Container{
		LoadAddress: j.plan.Destination,
		InitAddress: j.plan.InitAddress,
		PlayAddress: j.plan.PlayAddress,
		Songs:       j.input.Songs,
		StartSong:   j.input.StartSong,
		Speed:       j.input.Speed,
		Flags:       j.input.Flags,
		Title:       firstNonEmpty(j.opts.Title, j.input.Title),
		Author:      firstNonEmpty(j.opts.Author, j.input.Author),
		Released:    firstNonEmpty(j.opts.Released, j.input.Released),
		Payload:     payload,
	}
	j.stage = StageExported
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
