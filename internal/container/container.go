// Package container reads and writes the binary container formats a music
// program travels in: raw programs, SID music files and editor containers.
package container

import (
	"fmt"
)

// StructuralError indicates a malformed container: too small, bad magic or
// broken block framing.
type StructuralError struct {
	Offset int
	Reason string
}

func (e StructuralError) Error() string {
	return fmt.Sprintf("malformed container at offset %d: %s", e.Offset, e.Reason)
}

// MetadataFieldWidth is the fixed width of the three metadata strings in the
// SID file header. Strings are padded or truncated to this width on export.
const MetadataFieldWidth = 32

// Container is the format independent description of a music program.
// A new instance is created when exporting, the payload never aliases the
// storage of the image or input it came from.
type Container struct {
	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16

	Songs     uint16
	StartSong uint16
	Speed     uint32
	Flags     uint16

	Title    string
	Author   string
	Released string

	Payload []byte
}

// padField pads or truncates a metadata string to the fixed field width.
func padField(s string) []byte {
	field := make([]byte, MetadataFieldWidth)
	copy(field, s)
	return field
}

// trimField cuts a fixed width field back to a string, dropping the zero
// padding.
func trimField(field []byte) string {
	for i, b := range field {
		if b == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}
