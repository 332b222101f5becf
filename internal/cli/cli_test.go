package cli

import (
	"os"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/sidgoreloc/internal/options"
)

func TestParseFlagsCopyrightAlias(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()
	os.Args = []string{"sidgoreloc", "-copyright", "2026 Vibrants", "tune.sid"}

	opts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, "2026 Vibrants", opts.Released)
	assert.Equal(t, "tune.sid", opts.Input)
}

func TestValidateArgs(t *testing.T) {
	assert.NoError(t, validateArgs([]string{"tune.sid"}))
	assert.Error(t, validateArgs([]string{"tune.sid", "-q"}))
}

func TestNormalizeOptions(t *testing.T) {
	opts := options.Program{Profile: "generic", Format: options.FormatSID}

	assert.NoError(t, normalizeOptions(&opts, "$1000", "$fc"))
	assert.Equal(t, uint16(0x1000), opts.Destination)
	assert.Equal(t, byte(0xFC), opts.ZeroPage)
}

func TestNormalizeOptionsBadFormat(t *testing.T) {
	opts := options.Program{Profile: "generic", Format: "wav"}

	assert.Error(t, normalizeOptions(&opts, "$1000", "$fc"))
}

func TestNormalizeOptionsBadProfile(t *testing.T) {
	opts := options.Program{Profile: "unknown", Format: options.FormatSID}

	assert.Error(t, normalizeOptions(&opts, "$1000", "$fc"))
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input   string
		limit   uint64
		want    uint64
		wantErr bool
	}{
		{input: "$1000", limit: 0xFFFF, want: 0x1000},
		{input: "0x0E00", limit: 0xFFFF, want: 0x0E00},
		{input: "4096", limit: 0xFFFF, want: 4096},
		{input: "$FC", limit: 0xFF, want: 0xFC},
		{input: "$100", limit: 0xFF, wantErr: true},
		{input: "$10000", limit: 0xFFFF, wantErr: true},
		{input: "nope", limit: 0xFFFF, wantErr: true},
		{input: "", limit: 0xFFFF, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAddress(tt.input, tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
