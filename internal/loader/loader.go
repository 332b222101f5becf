// Package loader handles container file loading operations.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/sidgoreloc/internal/container"
)

// Loader handles loading container files from disk.
type Loader struct{}

// New creates a new container loader.
func New() *Loader {
	return &Loader{}
}

// Load reads and parses a container file. SID files announce themselves by
// their magic bytes, editor containers by their file extension, everything
// else is read as a raw program.
func (l *Loader) Load(path string) (*container.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	switch {
	case len(data) >= 4 && (string(data[:4]) == "PSID" || string(data[:4]) == "RSID"):
		return container.ReadSID(data)

	case strings.EqualFold(filepath.Ext(path), ".swm"):
		return container.ReadEditor(data)

	default:
		return container.ReadPRG(data)
	}
}
