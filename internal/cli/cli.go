// Package cli handles command line interface logic.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/sidgoreloc/internal/options"
	"github.com/retroenv/sidgoreloc/internal/profile"
	"github.com/xyproto/env/v2"
)

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: sidgoreloc [options] <file to convert>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// ParseFlags parses command line flags and returns the program options.
// Environment variables provide defaults for a few flags: SIDGORELOC_PROFILE,
// SIDGORELOC_OUTPUT_DIR and SIDGORELOC_QUIET.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	var address, zeroPage string
	readOptionFlags(flags, &opts, &address, &zeroPage)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	if opts.Batch == "" {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts, address, zeroPage); err != nil {
		return opts, err
	}
	return opts, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, address, zeroPage *string) {
	flags.StringVar(&opts.Output, "o", "", "name of the output file, derived from the input name if not given")
	flags.StringVar(&opts.OutputDir, "outdir", env.Str("SIDGORELOC_OUTPUT_DIR"), "directory to place derived output files in")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of files matching the given pattern, for example *.sid")
	flags.StringVar(&opts.Profile, "profile", env.Str("SIDGORELOC_PROFILE", "generic"),
		"player profile to use ("+strings.Join(profile.Names(), "/")+")")
	flags.StringVar(&opts.Format, "format", options.FormatSID, "output container format (prg/sid/editor)")
	flags.StringVar(address, "address", "$1000", "destination address to relocate to")
	flags.StringVar(zeroPage, "zp", "$fc", "destination zero page base")
	flags.StringVar(&opts.Title, "title", "", "title metadata string for the output container")
	flags.StringVar(&opts.Author, "author", "", "author metadata string for the output container")
	flags.StringVar(&opts.Released, "released", "", "release metadata string for the output container")
	flags.StringVar(&opts.Released, "copyright", "", "alias for -released")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", env.Bool("SIDGORELOC_QUIET"), "perform operations quietly")
	flags.BoolVar(&opts.Verbose, "verbose", false, "print the conversion report after each job")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the output by relocating it back and comparing to the input")
}

// validateArgs checks if arguments are in correct order.
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to convert, please pass the file to convert as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions validates option values and parses the address flags.
func normalizeOptions(opts *options.Program, address, zeroPage string) error {
	switch opts.Format {
	case options.FormatPRG, options.FormatSID, options.FormatEditor:
	default:
		return fmt.Errorf("unsupported output format: %s. Valid options: prg, sid, editor", opts.Format)
	}

	if _, err := profile.Lookup(opts.Profile); err != nil {
		return fmt.Errorf("%w. Valid options: %s", err, strings.Join(profile.Names(), ", "))
	}

	destination, err := parseAddress(address, 0xFFFF)
	if err != nil {
		return fmt.Errorf("parsing destination address: %w", err)
	}
	opts.Destination = uint16(destination)

	zp, err := parseAddress(zeroPage, 0xFF)
	if err != nil {
		return fmt.Errorf("parsing zero page base: %w", err)
	}
	opts.ZeroPage = byte(zp)
	return nil
}

// parseAddress parses a numeric flag value in $hex, 0xhex or decimal form.
func parseAddress(s string, limit uint64) (uint64, error) {
	value := strings.TrimSpace(strings.ToLower(s))
	base := 10
	switch {
	case strings.HasPrefix(value, "$"):
		value = value[1:]
		base = 16
	case strings.HasPrefix(value, "0x"):
		value = value[2:]
		base = 16
	}
	n, err := strconv.ParseUint(value, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value '%s'", s)
	}
	if n > limit {
		return 0, fmt.Errorf("value '%s' exceeds $%X", s, limit)
	}
	return n, nil
}
