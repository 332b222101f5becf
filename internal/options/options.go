// Package options contains the program options.
package options

// Output container formats.
const (
	FormatPRG    = "prg"
	FormatSID    = "sid"
	FormatEditor = "editor"
)

// Program options of the converter.
type Program struct {
	Input     string
	Output    string
	OutputDir string
	Batch     string

	Profile string
	Format  string

	Destination uint16
	ZeroPage    byte

	Title    string
	Author   string
	Released string

	Debug   bool
	Quiet   bool
	Verbose bool
	Verify  bool
}

// Job defines the per job options consumed by the conversion pipeline.
type Job struct {
	Destination uint16
	ZeroPage    byte

	Title    string
	Author   string
	Released string
}
